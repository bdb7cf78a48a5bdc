package model

import (
	"time"
)

// Ticket category tags
const (
	TagFaultyItems      = "faulty_items"
	TagDeliveryStatus   = "delivery_status"
	TagMissingItems     = "missing_items"
	TagReturnRefund     = "return_refund"
	TagInfosRequested   = "infos_requested"
	TagClaimOutOfPeriod = "claim_out_of_period"
)

// ValidTag reports whether tag is a known ticket category tag
func ValidTag(tag string) bool {
	switch tag {
	case TagFaultyItems, TagDeliveryStatus, TagMissingItems,
		TagReturnRefund, TagInfosRequested, TagClaimOutOfPeriod:
		return true
	}
	return false
}

// TicketCategory breaks down a report's ticket volume by category. The
// percentage is derived from the sibling rows of the same report, never
// supplied by the caller; service.RecomputeCategoryPercentages refreshes it
// on every category write.
type TicketCategory struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ReportID   uint      `json:"report_id" gorm:"index;not null"`
	Tag        string    `json:"tag" gorm:"type:varchar(50);not null"`
	SubTag     string    `json:"sub_tag" gorm:"type:varchar(100)"`
	CasesCount int       `json:"cases_count" gorm:"default:0"`
	Percentage float64   `json:"percentage" gorm:"default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
