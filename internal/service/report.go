package service

import (
	"errors"
	"sort"
	"time"

	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"gorm.io/gorm"
)

// ReportDocumentRow is one period's line in a generated report document
type ReportDocumentRow struct {
	Period          string `json:"period"`
	PeriodStart     string `json:"period_start"`
	PeriodEnd       string `json:"period_end"`
	TicketsReceived int    `json:"tickets_received"`
	TicketsResolved int    `json:"tickets_resolved"`
	ResolutionRate  int    `json:"resolution_rate"`

	FirstResponseTimeAvg string `json:"first_response_time_avg"`
	ResolutionTimeAvg    string `json:"resolution_time_avg"`

	TotalRefundRequests int `json:"total_refund_requests"`
	ChargebacksOpened   int `json:"chargebacks_opened"`
}

// CategoryBreakdownRow aggregates one ticket category tag across the
// document's reports
type CategoryBreakdownRow struct {
	Tag        string  `json:"tag"`
	CasesCount int     `json:"cases_count"`
	Percentage float64 `json:"percentage"`
}

// ReportDocument is the synchronous export produced for one client: the
// client's identity, the window totals, the per-report rows and the
// aggregated category breakdown.
type ReportDocument struct {
	ClientName  string `json:"client_name"`
	ClientSlug  string `json:"client_slug"`
	GeneratedAt string `json:"generated_at"`

	ReportCount         int     `json:"report_count"`
	TicketsReceived     int     `json:"tickets_received"`
	TicketsResolved     int     `json:"tickets_resolved"`
	ResolutionRate      float64 `json:"resolution_rate"`
	TotalRefundRequests int     `json:"total_refund_requests"`
	ChargebacksOpened   int     `json:"chargebacks_opened"`

	Reports    []ReportDocumentRow    `json:"reports"`
	Categories []CategoryBreakdownRow `json:"categories"`
}

// GenerateReportDocument builds a report document for one of the caller's
// visible clients, optionally narrowed to a period kind. The client must be
// inside the caller's scope; anything else reads as not found.
func GenerateReportDocument(db *gorm.DB, id Identity, clientID uint, period string) (*ReportDocument, error) {
	if period != "" && !model.ValidPeriod(period) {
		return nil, NewValidationError("period", "period must be weekly or monthly")
	}

	visible, err := ClientVisible(db, id, clientID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrNotFound
	}

	var client model.Client
	if err := db.First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	query := db.Preload("Categories").Where("client_id = ?", client.ID)
	if period != "" {
		query = query.Where("period = ?", period)
	}
	var reports []model.KPIReport
	if err := query.Order("period_start desc").Find(&reports).Error; err != nil {
		return nil, err
	}

	doc := &ReportDocument{
		ClientName:  client.Name,
		ClientSlug:  client.Slug,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Reports:     []ReportDocumentRow{},
		Categories:  []CategoryBreakdownRow{},
	}

	categoryCases := map[string]int{}
	totalCases := 0
	for _, r := range reports {
		doc.ReportCount++
		doc.TicketsReceived += r.TicketsReceived
		doc.TicketsResolved += r.TicketsResolved
		doc.TotalRefundRequests += r.TotalRefundRequests
		doc.ChargebacksOpened += r.ChargebacksOpened

		doc.Reports = append(doc.Reports, ReportDocumentRow{
			Period:               r.Period,
			PeriodStart:          r.PeriodStart.Format("2006-01-02"),
			PeriodEnd:            r.PeriodEnd.Format("2006-01-02"),
			TicketsReceived:      r.TicketsReceived,
			TicketsResolved:      r.TicketsResolved,
			ResolutionRate:       RoundedResolutionRate(r.TicketsResolved, r.TicketsReceived),
			FirstResponseTimeAvg: FormatHMS(r.FirstResponseTimeAvgSeconds),
			ResolutionTimeAvg:    FormatHMS(r.ResolutionTimeAvgSeconds),
			TotalRefundRequests:  r.TotalRefundRequests,
			ChargebacksOpened:    r.ChargebacksOpened,
		})

		for _, cat := range r.Categories {
			categoryCases[cat.Tag] += cat.CasesCount
			totalCases += cat.CasesCount
		}
	}
	doc.ResolutionRate = ResolutionRate(doc.TicketsResolved, doc.TicketsReceived)

	for tag, cases := range categoryCases {
		percentage := 0.0
		if totalCases > 0 {
			percentage = round2(float64(cases) / float64(totalCases) * 100)
		}
		doc.Categories = append(doc.Categories, CategoryBreakdownRow{
			Tag:        tag,
			CasesCount: cases,
			Percentage: percentage,
		})
	}
	sort.Slice(doc.Categories, func(i, j int) bool {
		if doc.Categories[i].CasesCount != doc.Categories[j].CasesCount {
			return doc.Categories[i].CasesCount > doc.Categories[j].CasesCount
		}
		return doc.Categories[i].Tag < doc.Categories[j].Tag
	})

	return doc, nil
}
