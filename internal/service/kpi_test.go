package service

import (
	"errors"
	"testing"
	"time"

	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestResolutionRate(t *testing.T) {
	assert.Equal(t, 0.0, ResolutionRate(0, 0), "zero received must never divide")
	assert.Equal(t, 0.0, ResolutionRate(5, 0))
	assert.Equal(t, 50.0, ResolutionRate(1, 2))
	assert.Equal(t, 100.0, ResolutionRate(10, 10))
	assert.Equal(t, 80, RoundedResolutionRate(4, 5))
	assert.Equal(t, 33, RoundedResolutionRate(1, 3))
}

func TestParseHMS(t *testing.T) {
	seconds, err := ParseHMS("01:30:05")
	assert.NoError(t, err)
	assert.Equal(t, int64(5405), seconds)

	seconds, err = ParseHMS("")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), seconds)

	_, err = ParseHMS("90 minutes")
	assert.Error(t, err)

	_, err = ParseHMS("00:75:00")
	assert.Error(t, err)
}

func TestFormatHMS(t *testing.T) {
	assert.Equal(t, "01:30:05", FormatHMS(5405))
	assert.Equal(t, "00:00:00", FormatHMS(0))
	assert.Equal(t, "00:00:00", FormatHMS(-10))
	assert.Equal(t, "26:00:00", FormatHMS(26*3600))
}

func TestCreateReport_DuplicateWindowRejected(t *testing.T) {
	db := newTestDB(t)
	client := newTestClient(t, db, "Acme")
	staff := newTestUser(t, db, "staff@example.com", true)
	id := Identity{UserID: staff.ID, Staff: true}

	input := CreateReportInput{
		ClientID:        client.ID,
		Period:          model.PeriodWeekly,
		PeriodStart:     day(2025, time.March, 3),
		PeriodEnd:       day(2025, time.March, 9),
		TicketsReceived: 40,
		TicketsResolved: 30,
	}

	_, err := CreateReport(db, id, input)
	assert.NoError(t, err)

	// same (client, period, window) again is a validation failure
	_, err = CreateReport(db, id, input)
	ve, ok := AsValidationError(err)
	assert.True(t, ok)
	assert.Contains(t, ve.Fields, "period_start")

	// the next window goes through fine
	input.PeriodStart = day(2025, time.March, 10)
	input.PeriodEnd = day(2025, time.March, 16)
	_, err = CreateReport(db, id, input)
	assert.NoError(t, err)
}

func TestCreateReport_InvisibleClient(t *testing.T) {
	db := newTestDB(t)
	client := newTestClient(t, db, "Acme")
	outsider := newTestUser(t, db, "outsider@example.com", false)

	_, err := CreateReport(db, Identity{UserID: outsider.ID, Staff: false}, CreateReportInput{
		ClientID:    client.ID,
		Period:      model.PeriodWeekly,
		PeriodStart: day(2025, time.March, 3),
		PeriodEnd:   day(2025, time.March, 9),
	})
	assert.True(t, errors.Is(err, ErrClientNotVisible))
}

func TestCreateReport_Validation(t *testing.T) {
	db := newTestDB(t)
	client := newTestClient(t, db, "Acme")
	staff := newTestUser(t, db, "staff@example.com", true)

	_, err := CreateReport(db, Identity{UserID: staff.ID, Staff: true}, CreateReportInput{
		ClientID:    client.ID,
		Period:      "daily",
		PeriodStart: day(2025, time.March, 9),
		PeriodEnd:   day(2025, time.March, 3),
		Categories:  []CategoryInput{{Tag: "nonsense", CasesCount: 1}},
		Highlights:  []HighlightInput{{Kind: "whatever", Title: ""}},
	})
	ve, ok := AsValidationError(err)
	assert.True(t, ok)
	assert.Contains(t, ve.Fields, "period")
	assert.Contains(t, ve.Fields, "period_end")
	assert.Contains(t, ve.Fields, "categories")
	assert.Contains(t, ve.Fields, "highlights")
}

func TestCreateReport_PersistsChildren(t *testing.T) {
	db := newTestDB(t)
	client := newTestClient(t, db, "Acme")
	staff := newTestUser(t, db, "staff@example.com", true)

	report, err := CreateReport(db, Identity{UserID: staff.ID, Staff: true}, CreateReportInput{
		ClientID:        client.ID,
		Period:          model.PeriodWeekly,
		PeriodStart:     day(2025, time.March, 3),
		PeriodEnd:       day(2025, time.March, 9),
		TicketsReceived: 100,
		TicketsResolved: 90,
		Categories: []CategoryInput{
			{Tag: model.TagFaultyItems, CasesCount: 25},
			{Tag: model.TagDeliveryStatus, CasesCount: 75},
		},
		Highlights: []HighlightInput{
			{Kind: model.HighlightPositiveTrend, Title: "Faster first responses"},
		},
	})
	assert.NoError(t, err)
	assert.Len(t, report.Categories, 2)
	assert.Len(t, report.Highlights, 1)

	// percentages were derived inside the same transaction
	for _, cat := range report.Categories {
		switch cat.Tag {
		case model.TagFaultyItems:
			assert.Equal(t, 25.0, cat.Percentage)
		case model.TagDeliveryStatus:
			assert.Equal(t, 75.0, cat.Percentage)
		}
	}
}

func TestListReports_ScopeFiltersAndSummary(t *testing.T) {
	db := newTestDB(t)
	mine := newTestClient(t, db, "Mine")
	other := newTestClient(t, db, "Other")
	user := newTestUser(t, db, "member@example.com", false)
	_, _, err := AssignMembership(db, mine.ID, user.ID, "viewer")
	assert.NoError(t, err)

	newTestReport(t, db, mine.ID, day(2025, time.March, 3), 40, 30)
	newTestReport(t, db, mine.ID, day(2025, time.March, 10), 60, 60)
	newTestReport(t, db, other.ID, day(2025, time.March, 3), 500, 1)

	id := Identity{UserID: user.ID, Staff: false}

	reports, summary, err := ListReports(db, id, "", "")
	assert.NoError(t, err)
	assert.Len(t, reports, 2, "other tenants' reports must not leak")
	// newest first
	assert.Equal(t, day(2025, time.March, 10).Unix(), reports[0].PeriodStart.Unix())
	assert.Equal(t, 100, reports[0].ResolutionRate)
	assert.Equal(t, 75, reports[1].ResolutionRate)

	assert.Equal(t, 2, summary.ReportCount)
	assert.Equal(t, 100, summary.TicketsReceived)
	assert.Equal(t, 90, summary.TicketsResolved)

	// a slug outside the caller's scope yields nothing, not the other tenant
	reports, summary, err = ListReports(db, id, other.Slug, "")
	assert.NoError(t, err)
	assert.Empty(t, reports)
	assert.Equal(t, 0, summary.ReportCount)

	// period filter
	monthly := &model.KPIReport{
		ClientID:    mine.ID,
		Period:      model.PeriodMonthly,
		PeriodStart: day(2025, time.February, 1),
		PeriodEnd:   day(2025, time.February, 28),
	}
	assert.NoError(t, db.Create(monthly).Error)
	reports, _, err = ListReports(db, id, "", model.PeriodMonthly)
	assert.NoError(t, err)
	assert.Len(t, reports, 1)
}
