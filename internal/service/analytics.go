package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"gorm.io/gorm"
)

// defaultAnalyticsWindowDays is the trailing window when none is requested
const defaultAnalyticsWindowDays = 180

// MonthBucket sums the counters of one calendar month of period starts
type MonthBucket struct {
	TicketsReceived     int `json:"tickets_received"`
	TicketsResolved     int `json:"tickets_resolved"`
	TotalRefundRequests int `json:"total_refund_requests"`
}

// ClientBucket sums the counters of one client across the window
type ClientBucket struct {
	TicketsReceived     int     `json:"tickets_received"`
	TicketsResolved     int     `json:"tickets_resolved"`
	TotalRefundRequests int     `json:"total_refund_requests"`
	ResolutionRate      float64 `json:"resolution_rate"`
}

// ClientRanking is one entry of the top-clients ranking
type ClientRanking struct {
	ClientName     string  `json:"client_name"`
	ResolutionRate float64 `json:"resolution_rate"`
}

// AnalyticsResult is the full analytics payload: two JSON mappings, the
// top-5 ranking, a human-readable range label and the report count.
type AnalyticsResult struct {
	ByMonth     map[string]MonthBucket  `json:"by_month"`
	ByClient    map[string]ClientBucket `json:"by_client"`
	TopClients  []ClientRanking         `json:"top_clients"`
	DateRange   string                  `json:"date_range"`
	ReportCount int                     `json:"report_count"`
}

// Aggregate builds the analytics summaries over the caller's visible
// clients for a trailing window of days (default 180). Reports are bucketed
// by the calendar month of their period start and summed per client; the
// client ranking orders resolution rates descending and keeps the top five.
// Clients with zero tickets received rank with a rate of exactly 0 — they
// are never excluded and never produce a division by zero.
func Aggregate(db *gorm.DB, id Identity, days int) (*AnalyticsResult, error) {
	if days <= 0 {
		days = defaultAnalyticsWindowDays
	}
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	clients, err := VisibleClients(db, id)
	if err != nil {
		return nil, err
	}

	result := &AnalyticsResult{
		ByMonth:    map[string]MonthBucket{},
		ByClient:   map[string]ClientBucket{},
		TopClients: []ClientRanking{},
		DateRange:  fmt.Sprintf("%s – %s", since.Format("Jan 2, 2006"), now.Format("Jan 2, 2006")),
	}
	if len(clients) == 0 {
		return result, nil
	}

	clientNames := make(map[uint]string, len(clients))
	clientIDs := make([]uint, 0, len(clients))
	for _, c := range clients {
		clientNames[c.ID] = c.Name
		clientIDs = append(clientIDs, c.ID)
	}

	var reports []model.KPIReport
	err = db.Where("client_id IN ? AND period_start >= ?", clientIDs, since).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	for _, r := range reports {
		monthKey := r.PeriodStart.Format("2006-01")
		month := result.ByMonth[monthKey]
		month.TicketsReceived += r.TicketsReceived
		month.TicketsResolved += r.TicketsResolved
		month.TotalRefundRequests += r.TotalRefundRequests
		result.ByMonth[monthKey] = month

		name := clientNames[r.ClientID]
		bucket := result.ByClient[name]
		bucket.TicketsReceived += r.TicketsReceived
		bucket.TicketsResolved += r.TicketsResolved
		bucket.TotalRefundRequests += r.TotalRefundRequests
		result.ByClient[name] = bucket
	}
	result.ReportCount = len(reports)

	rankings := make([]ClientRanking, 0, len(result.ByClient))
	for name, bucket := range result.ByClient {
		bucket.ResolutionRate = ResolutionRate(bucket.TicketsResolved, bucket.TicketsReceived)
		result.ByClient[name] = bucket
		rankings = append(rankings, ClientRanking{
			ClientName:     name,
			ResolutionRate: bucket.ResolutionRate,
		})
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].ResolutionRate != rankings[j].ResolutionRate {
			return rankings[i].ResolutionRate > rankings[j].ResolutionRate
		}
		return rankings[i].ClientName < rankings[j].ClientName
	})
	if len(rankings) > 5 {
		rankings = rankings[:5]
	}
	result.TopClients = rankings

	return result, nil
}
