package handler

import (
	"net/http"
	"time"

	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"github.com/dogmatus07/lynkevo-insights/internal/service"
	"github.com/dogmatus07/lynkevo-insights/pkg/database"
	"github.com/dogmatus07/lynkevo-insights/pkg/jwtutil"
	"github.com/dogmatus07/lynkevo-insights/pkg/logger"
	"github.com/dogmatus07/lynkevo-insights/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Login authenticates a user and issues a JWT carrying the capability flags
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	// Parse request
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !user.Active {
		log.Warn("Inactive user attempted login", zap.String("email", req.Email))
		prometheus.RecordAuthError("inactive_user")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Verify password
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password))
	if err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Generate JWT token with the capability flags baked in
	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.IsStaff, user.IsSuperuser)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	// Increment active tokens gauge
	prometheus.IncreaseActiveTokens()

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID),
		zap.Bool("is_staff", user.IsStaff))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":       user.ID,
			"email":    user.Email,
			"is_staff": user.IsStaff,
		},
	})
}

// Logout acknowledges a client-side token discard. Tokens are stateless, so
// there is nothing to revoke server-side; the active tokens gauge is
// decremented for observability.
func Logout(c echo.Context) error {
	log := logger.FromContext(c)

	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	prometheus.DecreaseActiveTokens()
	log.Info("User logged out", zap.String("email", claims.Email), zap.Uint("user_id", claims.UserID))

	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// Register creates a regular (non-staff) user account
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	// Parse request
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Save to database - track DB insert operation
	defer prometheus.TrackDBOperation("insert")(time.Now())
	user, err := service.CreateUser(database.GetDB(), service.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		// Staff accounts are only created through the staff user management
		// endpoint, never via self-registration.
		IsStaff: false,
	})
	if err != nil {
		log.Warn("User registration rejected", zap.String("email", req.Email), zap.Error(err))
		return serviceError(c, "user", err)
	}

	log.Info("User registered", zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}
