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

// Analytics aggregates the caller's visible reports over a trailing window:
// per-month buckets, per-client sums and the top-5 resolution-rate ranking
func Analytics(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportOperation("analytics")

	claims, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	days, _ := strconv.Atoi(c.QueryParam("days"))

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	result, err := service.Aggregate(database.GetDB(), identityOf(claims), days)
	if err != nil {
		log.Error("Failed to aggregate analytics", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to aggregate analytics"})
	}

	return c.JSON(http.StatusOK, result)
}
