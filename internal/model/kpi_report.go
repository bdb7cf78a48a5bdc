package model

import (
	"time"
)

// Reporting periods
const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// ValidPeriod reports whether period is a known reporting cadence
func ValidPeriod(period string) bool {
	return period == PeriodWeekly || period == PeriodMonthly
}

// KPIReport stores one period's snapshot of support performance metrics for
// a client: ticket volume, response/resolution times, SLA percentages,
// refund requests and chargebacks. A client can have at most one report per
// (period, period_start, period_end) window.
//
// Average durations are stored in whole seconds; the API accepts and emits
// them as HH:MM:SS strings.
type KPIReport struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ClientID    uint      `json:"client_id" gorm:"not null;uniqueIndex:idx_report_window"`
	Period      string    `json:"period" gorm:"type:varchar(20);not null;uniqueIndex:idx_report_window"`
	PeriodStart time.Time `json:"period_start" gorm:"type:date;not null;uniqueIndex:idx_report_window"`
	PeriodEnd   time.Time `json:"period_end" gorm:"type:date;not null;uniqueIndex:idx_report_window"`

	ShopName     string `json:"shop_name" gorm:"type:varchar(255)"`
	SlackChannel string `json:"slack_channel" gorm:"type:varchar(255)"`

	// Ticket volume
	TicketsReceived   int `json:"tickets_received" gorm:"default:0"`
	TicketsResolved   int `json:"tickets_resolved" gorm:"default:0"`
	TicketsReopened   int `json:"tickets_reopened" gorm:"default:0"`
	TicketsUnresolved int `json:"tickets_unresolved" gorm:"default:0"`
	TicketsStillOpen  int `json:"tickets_still_open" gorm:"default:0"`

	// Response times
	FirstResponseTimeAvgSeconds int64   `json:"first_response_time_avg_seconds" gorm:"default:0"`
	FirstResponseSLAPercentage  float64 `json:"first_response_sla_percentage" gorm:"default:0"`
	ResolutionTimeAvgSeconds    int64   `json:"resolution_time_avg_seconds" gorm:"default:0"`
	Resolution48hPercentage     float64 `json:"resolution_48h_percentage" gorm:"default:0"`

	// Refunds and chargebacks
	TotalRefundRequests  int `json:"total_refund_requests" gorm:"default:0"`
	ChargebacksOpened    int `json:"chargebacks_opened" gorm:"default:0"`
	ChargebacksProcessed int `json:"chargebacks_processed" gorm:"default:0"`

	Notes           string `json:"notes" gorm:"type:text"`
	ChallengesFaced string `json:"challenges_faced" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Client     Client            `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Categories []TicketCategory  `json:"categories,omitempty" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
	Highlights []WeeklyHighlight `json:"highlights,omitempty" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
}
