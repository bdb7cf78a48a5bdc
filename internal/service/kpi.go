package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"gorm.io/gorm"
)

// reportListCap bounds the overview listing
const reportListCap = 200

// ResolutionRate returns resolved/received as a percentage, exactly 0 when
// nothing was received. The result is always within [0, 100] for consistent
// inputs and never the product of a division by zero.
func ResolutionRate(resolved, received int) float64 {
	if received <= 0 {
		return 0
	}
	return float64(resolved) / float64(received) * 100
}

// RoundedResolutionRate is ResolutionRate rounded to the nearest integer
func RoundedResolutionRate(resolved, received int) int {
	return int(math.Round(ResolutionRate(resolved, received)))
}

// ParseHMS parses a HH:MM:SS duration into whole seconds. The empty string
// parses to zero.
func ParseHMS(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	var h, m, sec int64
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		return 0, fmt.Errorf("expected HH:MM:SS, got %q", s)
	}
	if h < 0 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("expected HH:MM:SS, got %q", s)
	}
	return h*3600 + m*60 + sec, nil
}

// FormatHMS renders whole seconds as HH:MM:SS
func FormatHMS(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// ReportWithRate is a report row annotated with its derived resolution rate
type ReportWithRate struct {
	model.KPIReport
	ResolutionRate int `json:"resolution_rate"`
}

// ReportListSummary aggregates the listed reports
type ReportListSummary struct {
	ReportCount         int `json:"report_count"`
	TicketsReceived     int `json:"tickets_received"`
	TicketsResolved     int `json:"tickets_resolved"`
	TotalRefundRequests int `json:"total_refund_requests"`
	ChargebacksOpened   int `json:"chargebacks_opened"`
}

// ListReports returns the reports visible to the caller, newest first and
// capped at 200, optionally narrowed by client slug and period kind, plus an
// aggregate summary of the returned set. Visibility always goes through the
// caller's client scope; a slug outside that scope yields an empty list, not
// another tenant's data.
func ListReports(db *gorm.DB, id Identity, clientSlug, period string) ([]ReportWithRate, ReportListSummary, error) {
	clientIDs, err := VisibleClientIDs(db, id)
	if err != nil {
		return nil, ReportListSummary{}, err
	}
	if len(clientIDs) == 0 {
		return []ReportWithRate{}, ReportListSummary{}, nil
	}

	query := db.Preload("Client").
		Where("client_id IN ?", clientIDs)

	if clientSlug != "" {
		query = query.Where("client_id IN (?)",
			db.Model(&model.Client{}).Select("id").Where("slug = ?", clientSlug))
	}
	if period != "" {
		query = query.Where("period = ?", period)
	}

	var reports []model.KPIReport
	err = query.Order("period_start desc").Limit(reportListCap).Find(&reports).Error
	if err != nil {
		return nil, ReportListSummary{}, err
	}

	items := make([]ReportWithRate, 0, len(reports))
	var summary ReportListSummary
	for _, r := range reports {
		items = append(items, ReportWithRate{
			KPIReport:      r,
			ResolutionRate: RoundedResolutionRate(r.TicketsResolved, r.TicketsReceived),
		})
		summary.ReportCount++
		summary.TicketsReceived += r.TicketsReceived
		summary.TicketsResolved += r.TicketsResolved
		summary.TotalRefundRequests += r.TotalRefundRequests
		summary.ChargebacksOpened += r.ChargebacksOpened
	}

	return items, summary, nil
}

// CategoryInput is one ticket category row on report creation
type CategoryInput struct {
	Tag        string `json:"tag"`
	SubTag     string `json:"sub_tag"`
	CasesCount int    `json:"cases_count"`
}

// HighlightInput is one weekly highlight row on report creation
type HighlightInput struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// CreateReportInput carries a validated-by-the-service report submission
type CreateReportInput struct {
	ClientID    uint
	Period      string
	PeriodStart time.Time
	PeriodEnd   time.Time

	ShopName     string
	SlackChannel string

	TicketsReceived   int
	TicketsResolved   int
	TicketsReopened   int
	TicketsUnresolved int
	TicketsStillOpen  int

	FirstResponseTimeAvgSeconds int64
	FirstResponseSLAPercentage  float64
	ResolutionTimeAvgSeconds    int64
	Resolution48hPercentage     float64

	TotalRefundRequests  int
	ChargebacksOpened    int
	ChargebacksProcessed int

	Notes           string
	ChallengesFaced string

	Categories []CategoryInput
	Highlights []HighlightInput
}

// CreateReport creates a KPI report with its category and highlight children
// in a single transaction. The client must be inside the caller's visible
// set, and at most one report may exist per (client, period, start, end)
// window; a duplicate window is a validation failure, not a storage error.
func CreateReport(db *gorm.DB, id Identity, input CreateReportInput) (*model.KPIReport, error) {
	fields := map[string]string{}
	if !model.ValidPeriod(input.Period) {
		fields["period"] = "period must be weekly or monthly"
	}
	if input.PeriodStart.IsZero() {
		fields["period_start"] = "period start is required"
	}
	if input.PeriodEnd.IsZero() {
		fields["period_end"] = "period end is required"
	}
	if !input.PeriodStart.IsZero() && !input.PeriodEnd.IsZero() && input.PeriodEnd.Before(input.PeriodStart) {
		fields["period_end"] = "period end must not be before period start"
	}
	for _, cat := range input.Categories {
		if !model.ValidTag(cat.Tag) {
			fields["categories"] = fmt.Sprintf("unknown ticket category tag %q", cat.Tag)
		}
		if cat.CasesCount < 0 {
			fields["categories"] = "cases_count must not be negative"
		}
	}
	for _, h := range input.Highlights {
		if !model.ValidHighlightKind(h.Kind) {
			fields["highlights"] = fmt.Sprintf("unknown highlight kind %q", h.Kind)
		}
		if strings.TrimSpace(h.Title) == "" {
			fields["highlights"] = "highlight title is required"
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	visible, err := ClientVisible(db, id, input.ClientID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrClientNotVisible
	}

	var count int64
	err = db.Model(&model.KPIReport{}).
		Where("client_id = ? AND period = ? AND period_start = ? AND period_end = ?",
			input.ClientID, input.Period, input.PeriodStart, input.PeriodEnd).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, NewValidationError("period_start", "a report already exists for this client and period window")
	}

	report := model.KPIReport{
		ClientID:                    input.ClientID,
		Period:                      input.Period,
		PeriodStart:                 input.PeriodStart,
		PeriodEnd:                   input.PeriodEnd,
		ShopName:                    input.ShopName,
		SlackChannel:                input.SlackChannel,
		TicketsReceived:             input.TicketsReceived,
		TicketsResolved:             input.TicketsResolved,
		TicketsReopened:             input.TicketsReopened,
		TicketsUnresolved:           input.TicketsUnresolved,
		TicketsStillOpen:            input.TicketsStillOpen,
		FirstResponseTimeAvgSeconds: input.FirstResponseTimeAvgSeconds,
		FirstResponseSLAPercentage:  input.FirstResponseSLAPercentage,
		ResolutionTimeAvgSeconds:    input.ResolutionTimeAvgSeconds,
		Resolution48hPercentage:     input.Resolution48hPercentage,
		TotalRefundRequests:         input.TotalRefundRequests,
		ChargebacksOpened:           input.ChargebacksOpened,
		ChargebacksProcessed:        input.ChargebacksProcessed,
		Notes:                       input.Notes,
		ChallengesFaced:             input.ChallengesFaced,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&report).Error; err != nil {
			return err
		}
		for _, cat := range input.Categories {
			category := model.TicketCategory{
				ReportID:   report.ID,
				Tag:        cat.Tag,
				SubTag:     cat.SubTag,
				CasesCount: cat.CasesCount,
			}
			if err := tx.Create(&category).Error; err != nil {
				return err
			}
		}
		if len(input.Categories) > 0 {
			if err := RecomputeCategoryPercentages(tx, report.ID); err != nil {
				return err
			}
		}
		for _, h := range input.Highlights {
			highlight := model.WeeklyHighlight{
				ReportID:    report.ID,
				Kind:        h.Kind,
				Title:       h.Title,
				Description: h.Description,
				Count:       h.Count,
			}
			if err := tx.Create(&highlight).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := db.Preload("Categories").Preload("Highlights").First(&report, report.ID).Error; err != nil {
		return nil, err
	}
	return &report, nil
}
