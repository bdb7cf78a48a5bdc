package model

import (
	"time"
)

// Weekly highlight kinds
const (
	HighlightCommonRequest   = "common_request"
	HighlightPositiveTrend   = "positive_trend"
	HighlightImprovementArea = "improvement_area"
	HighlightChallenge       = "challenge"
	HighlightObservation     = "observation"
)

// ValidHighlightKind reports whether kind is a known highlight kind
func ValidHighlightKind(kind string) bool {
	switch kind {
	case HighlightCommonRequest, HighlightPositiveTrend,
		HighlightImprovementArea, HighlightChallenge, HighlightObservation:
		return true
	}
	return false
}

// WeeklyHighlight is a typed note attached to a KPI report: a recurring
// customer request, a positive trend, an area to improve, a challenge faced
// or a free observation, optionally with an occurrence count.
type WeeklyHighlight struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ReportID    uint      `json:"report_id" gorm:"index;not null"`
	Kind        string    `json:"kind" gorm:"type:varchar(30);not null"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Count       int       `json:"count" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
