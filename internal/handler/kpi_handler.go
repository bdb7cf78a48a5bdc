package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"github.com/dogmatus07/lynkevo-insights/internal/service"
	"github.com/dogmatus07/lynkevo-insights/pkg/database"
	"github.com/dogmatus07/lynkevo-insights/pkg/logger"
	"github.com/dogmatus07/lynkevo-insights/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// KPIOverview lists the KPI reports of the caller's visible clients, newest
// first, optionally narrowed by client slug and period kind
func KPIOverview(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportOperation("list")

	claims, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	clientSlug := c.QueryParam("client")
	period := c.QueryParam("period")

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	reports, summary, err := service.ListReports(database.GetDB(), identityOf(claims), clientSlug, period)
	if err != nil {
		log.Error("Failed to retrieve KPI reports", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve reports"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"reports": reports,
		"summary": summary,
		"filters": echo.Map{
			"client": clientSlug,
			"period": period,
		},
	})
}

// CreateKPIReport creates a KPI report with inline categories and highlights.
// Average durations arrive as HH:MM:SS strings and dates as YYYY-MM-DD.
func CreateKPIReport(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportOperation("create")

	claims, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	// Parse request
	var req struct {
		ClientID    uint   `json:"client_id"`
		Period      string `json:"period"`
		PeriodStart string `json:"period_start"`
		PeriodEnd   string `json:"period_end"`

		ShopName     string `json:"shop_name"`
		SlackChannel string `json:"slack_channel"`

		TicketsReceived   int `json:"tickets_received"`
		TicketsResolved   int `json:"tickets_resolved"`
		TicketsReopened   int `json:"tickets_reopened"`
		TicketsUnresolved int `json:"tickets_unresolved"`
		TicketsStillOpen  int `json:"tickets_still_open"`

		FirstResponseTimeAvg       string  `json:"first_response_time_avg"`
		FirstResponseSLAPercentage float64 `json:"first_response_sla_percentage"`
		ResolutionTimeAvg          string  `json:"resolution_time_avg"`
		Resolution48hPercentage    float64 `json:"resolution_48h_percentage"`

		TotalRefundRequests  int `json:"total_refund_requests"`
		ChargebacksOpened    int `json:"chargebacks_opened"`
		ChargebacksProcessed int `json:"chargebacks_processed"`

		Notes           string `json:"notes"`
		ChallengesFaced string `json:"challenges_faced"`

		Categories []service.CategoryInput  `json:"categories"`
		Highlights []service.HighlightInput `json:"highlights"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse report creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	fields := map[string]string{}
	periodStart, err := parseDate(req.PeriodStart)
	if err != nil {
		fields["period_start"] = "expected a YYYY-MM-DD date"
	}
	periodEnd, err := parseDate(req.PeriodEnd)
	if err != nil {
		fields["period_end"] = "expected a YYYY-MM-DD date"
	}
	firstResponseSeconds, err := service.ParseHMS(req.FirstResponseTimeAvg)
	if err != nil {
		fields["first_response_time_avg"] = "expected a HH:MM:SS duration"
	}
	resolutionSeconds, err := service.ParseHMS(req.ResolutionTimeAvg)
	if err != nil {
		fields["resolution_time_avg"] = "expected a HH:MM:SS duration"
	}
	if len(fields) > 0 {
		prometheus.RecordValidationError("report")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": fields,
		})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("insert")(time.Now())

	report, err := service.CreateReport(database.GetDB(), identityOf(claims), service.CreateReportInput{
		ClientID:                    req.ClientID,
		Period:                      req.Period,
		PeriodStart:                 periodStart,
		PeriodEnd:                   periodEnd,
		ShopName:                    req.ShopName,
		SlackChannel:                req.SlackChannel,
		TicketsReceived:             req.TicketsReceived,
		TicketsResolved:             req.TicketsResolved,
		TicketsReopened:             req.TicketsReopened,
		TicketsUnresolved:           req.TicketsUnresolved,
		TicketsStillOpen:            req.TicketsStillOpen,
		FirstResponseTimeAvgSeconds: firstResponseSeconds,
		FirstResponseSLAPercentage:  req.FirstResponseSLAPercentage,
		ResolutionTimeAvgSeconds:    resolutionSeconds,
		Resolution48hPercentage:     req.Resolution48hPercentage,
		TotalRefundRequests:         req.TotalRefundRequests,
		ChargebacksOpened:           req.ChargebacksOpened,
		ChargebacksProcessed:        req.ChargebacksProcessed,
		Notes:                       req.Notes,
		ChallengesFaced:             req.ChallengesFaced,
		Categories:                  req.Categories,
		Highlights:                  req.Highlights,
	})
	if err != nil {
		log.Warn("Report creation rejected",
			zap.Uint("client_id", req.ClientID),
			zap.String("period", req.Period),
			zap.Error(err))
		return serviceError(c, "report", err)
	}

	log.Info("KPI report created",
		zap.Uint("id", report.ID),
		zap.Uint("client_id", report.ClientID),
		zap.String("period", report.Period),
		zap.Uint("user_id", claims.UserID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Report created successfully",
		"report":  report,
	})
}

// AddReportCategory appends a ticket category to one of the caller's visible
// reports. The sibling percentages are recomputed in the same transaction.
func AddReportCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportOperation("add_category")

	claims, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	reportID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid report ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report ID"})
	}

	var req service.CategoryInput
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse category request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	db := database.GetDB()

	// The report's client must be inside the caller's scope before anything
	// about the report is revealed.
	var report model.KPIReport
	if err := db.First(&report, uint(reportID)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	visible, err := service.ClientVisible(db, identityOf(claims), report.ClientID)
	if err != nil {
		log.Error("Visibility check failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if !visible {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("insert")(time.Now())

	category, err := service.AddCategory(db, uint(reportID), req)
	if err != nil {
		log.Warn("Category rejected", zap.Uint64("report_id", reportID), zap.Error(err))
		return serviceError(c, "category", err)
	}

	log.Info("Category added",
		zap.Uint64("report_id", reportID),
		zap.String("tag", category.Tag),
		zap.Int("cases_count", category.CasesCount))

	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Category added successfully",
		"category": category,
	})
}
