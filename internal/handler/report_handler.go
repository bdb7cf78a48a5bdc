package handler

import (
	"net/http"
	"time"

	"github.com/dogmatus07/lynkevo-insights/internal/service"
	"github.com/dogmatus07/lynkevo-insights/pkg/database"
	"github.com/dogmatus07/lynkevo-insights/pkg/logger"
	"github.com/dogmatus07/lynkevo-insights/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ReportsOverview is the report browsing view: the caller's visible clients
// for the filter dropdown plus the filtered report list with its summary.
// The active client filter is echoed back so the view can highlight it.
func ReportsOverview(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportOperation("overview")

	claims, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	identity := identityOf(claims)

	activeClient := c.QueryParam("client")
	period := c.QueryParam("period")

	db := database.GetDB()

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	clients, err := service.VisibleClients(db, identity)
	if err != nil {
		log.Error("Failed to retrieve visible clients", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve reports"})
	}

	reports, summary, err := service.ListReports(db, identity, activeClient, period)
	if err != nil {
		log.Error("Failed to retrieve reports", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve reports"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"clients":       clients,
		"reports":       reports,
		"summary":       summary,
		"active_client": activeClient,
		"period":        period,
	})
}

// GenerateReport builds and returns a report document for one visible client
func GenerateReport(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportOperation("generate")

	claims, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		ClientID uint   `json:"client_id"`
		Period   string `json:"period,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse report generation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.ClientID == 0 {
		prometheus.RecordValidationError("report_document")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": map[string]string{"client_id": "client_id is required"},
		})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	doc, err := service.GenerateReportDocument(database.GetDB(), identityOf(claims), req.ClientID, req.Period)
	if err != nil {
		log.Warn("Report generation failed",
			zap.Uint("client_id", req.ClientID),
			zap.Uint("user_id", claims.UserID),
			zap.Error(err))
		return serviceError(c, "report_document", err)
	}

	log.Info("Report document generated",
		zap.String("client_slug", doc.ClientSlug),
		zap.Int("report_count", doc.ReportCount),
		zap.Uint("user_id", claims.UserID))

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Report generated successfully",
		"document": doc,
	})
}
