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

// ListClients returns the staff client listing: one page of clients with
// report/membership counts plus client base statistics.
func ListClients(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordClientOperation("list")

	search := c.QueryParam("search")
	page, _ := strconv.Atoi(c.QueryParam("page"))

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	clients, stats, total, err := service.ListClients(database.GetDB(), search, page)
	if err != nil {
		log.Error("Failed to retrieve clients", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve clients"})
	}

	prometheus.UpdateClientCount(stats.TotalClients)

	if page <= 0 {
		page = 1
	}
	return c.JSON(http.StatusOK, echo.Map{
		"clients": clients,
		"stats":   stats,
		"search":  search,
		"pagination": echo.Map{
			"current_page": page,
			"total":        total,
		},
	})
}

// CreateClient creates a new client; the slug is derived from the name once
func CreateClient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordClientOperation("create")

	var req struct {
		Name         string `json:"name"`
		ContactEmail string `json:"contact_email"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse client creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("insert")(time.Now())

	client, err := service.CreateClient(database.GetDB(), req.Name, req.ContactEmail)
	if err != nil {
		log.Warn("Client creation rejected", zap.String("name", req.Name), zap.Error(err))
		return serviceError(c, "client", err)
	}

	log.Info("Client created",
		zap.Uint("id", client.ID),
		zap.String("name", client.Name),
		zap.String("slug", client.Slug))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Client created successfully",
		"client":  client,
	})
}

// GetClientDetail returns a client with recent reports, memberships and
// derived metrics
func GetClientDetail(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordClientOperation("detail")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid client ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client ID"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	detail, err := service.GetClientDetail(database.GetDB(), uint(id))
	if err != nil {
		log.Warn("Client detail lookup failed", zap.Uint64("client_id", id), zap.Error(err))
		return serviceError(c, "client", err)
	}

	prometheus.UpdateReportsPerClient(detail.Client.Slug, detail.Metrics.TotalReports)

	return c.JSON(http.StatusOK, detail)
}

// UpdateClient updates a client's name and contact email; the slug never
// changes after creation
func UpdateClient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordClientOperation("update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid client ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client ID"})
	}

	var req struct {
		Name         string `json:"name"`
		ContactEmail string `json:"contact_email"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse client update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("update")(time.Now())

	client, err := service.UpdateClient(database.GetDB(), uint(id), req.Name, req.ContactEmail)
	if err != nil {
		log.Warn("Client update rejected", zap.Uint64("client_id", id), zap.Error(err))
		return serviceError(c, "client", err)
	}

	log.Info("Client updated", zap.Uint("id", client.ID), zap.String("name", client.Name))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Client updated successfully",
		"client":  client,
	})
}

// DeleteClient hard-deletes a client together with its memberships, reports
// and report children. There is no undo.
func DeleteClient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordClientOperation("delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid client ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client ID"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := service.DeleteClient(database.GetDB(), uint(id)); err != nil {
		log.Warn("Client delete failed", zap.Uint64("client_id", id), zap.Error(err))
		return serviceError(c, "client", err)
	}

	log.Info("Client deleted", zap.Uint64("client_id", id))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Client deleted successfully",
	})
}

// AddUserToClient attaches a user to a client with a role. If the user
// already holds a membership the role is updated in place; the response
// message distinguishes an added membership from an updated role.
func AddUserToClient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordClientOperation("add_user")

	clientID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid client ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client ID"})
	}

	var req struct {
		UserID uint   `json:"user_id"`
		Role   string `json:"role,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse membership request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": map[string]string{"user_id": "user_id is required"},
		})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("insert")(time.Now())

	membership, created, err := service.AssignMembership(database.GetDB(), uint(clientID), req.UserID, req.Role)
	if err != nil {
		log.Warn("Membership assignment rejected",
			zap.Uint64("client_id", clientID),
			zap.Uint("user_id", req.UserID),
			zap.Error(err))
		return serviceError(c, "membership", err)
	}

	var message string
	var status int
	if created {
		message = "User added to client successfully"
		status = http.StatusCreated
		log.Info("Added user to client",
			zap.Uint64("client_id", clientID),
			zap.Uint("user_id", req.UserID),
			zap.String("role", membership.Role))
	} else {
		message = "User role updated"
		status = http.StatusOK
		log.Info("Updated user role in client",
			zap.Uint64("client_id", clientID),
			zap.Uint("user_id", req.UserID),
			zap.String("role", membership.Role))
	}

	return c.JSON(status, echo.Map{
		"message":    message,
		"created":    created,
		"membership": membership,
	})
}
