package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dogmatus07/lynkevo-insights/internal/service"
	"github.com/dogmatus07/lynkevo-insights/pkg/database"
	"github.com/dogmatus07/lynkevo-insights/pkg/logger"
	"github.com/dogmatus07/lynkevo-insights/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListUsers returns the user management listing: one page of users with
// their client counts, plus user base statistics. Staff only.
func ListUsers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("list")

	search := c.QueryParam("search")
	page, _ := strconv.Atoi(c.QueryParam("page"))

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	users, stats, total, err := service.ListUsers(database.GetDB(), search, page)
	if err != nil {
		log.Error("Failed to retrieve users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}

	if page <= 0 {
		page = 1
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":  users,
		"stats":  stats,
		"search": search,
		"pagination": echo.Map{
			"current_page": page,
			"total":        total,
		},
	})
}

// CreateUser creates a user account, optionally with the staff capability.
// Staff only.
func CreateUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("create")

	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		IsStaff   bool   `json:"is_staff"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("insert")(time.Now())

	user, err := service.CreateUser(database.GetDB(), service.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsStaff:   req.IsStaff,
	})
	if err != nil {
		log.Warn("User creation rejected", zap.String("email", req.Email), zap.Error(err))
		return serviceError(c, "user", err)
	}

	log.Info("User created",
		zap.Uint("id", user.ID),
		zap.String("email", user.Email),
		zap.Bool("is_staff", user.IsStaff))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user":    user,
	})
}
