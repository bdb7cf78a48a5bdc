package handler

import (
	"net/http"
	"time"

	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"github.com/dogmatus07/lynkevo-insights/internal/service"
	"github.com/dogmatus07/lynkevo-insights/pkg/database"
	"github.com/dogmatus07/lynkevo-insights/pkg/logger"
	"github.com/dogmatus07/lynkevo-insights/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Dashboard is the landing view. Staff get base-wide statistics with the
// five most recent reports; everyone else gets the KPI overview scoped to
// their own clients.
func Dashboard(c echo.Context) error {
	log := logger.FromContext(c)

	claims, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	db := database.GetDB()

	if claims.IsStaffOrSuperuser() {
		var totalClients, totalReports, activeClients int64
		if err := db.Model(&model.Client{}).Count(&totalClients).Error; err != nil {
			log.Error("Failed to count clients", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
		}
		if err := db.Model(&model.KPIReport{}).Count(&totalReports).Error; err != nil {
			log.Error("Failed to count reports", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
		}
		err := db.Model(&model.Client{}).
			Where("id IN (SELECT DISTINCT client_id FROM kpi_reports)").
			Count(&activeClients).Error
		if err != nil {
			log.Error("Failed to count active clients", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
		}

		var recent []model.KPIReport
		err = db.Preload("Client").
			Order("created_at desc").
			Limit(5).
			Find(&recent).Error
		if err != nil {
			log.Error("Failed to load recent reports", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
		}

		prometheus.UpdateClientCount(totalClients)

		return c.JSON(http.StatusOK, echo.Map{
			"staff": true,
			"stats": echo.Map{
				"total_clients":  totalClients,
				"total_reports":  totalReports,
				"active_clients": activeClients,
			},
			"recent_reports": recent,
		})
	}

	// Regular users land on their own KPI overview
	identity := identityOf(claims)
	clients, err := service.VisibleClients(db, identity)
	if err != nil {
		log.Error("Failed to retrieve visible clients", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}
	reports, summary, err := service.ListReports(db, identity, "", "")
	if err != nil {
		log.Error("Failed to retrieve reports", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"staff":   false,
		"clients": clients,
		"reports": reports,
		"summary": summary,
	})
}
