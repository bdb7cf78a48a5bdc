package service

import (
	"errors"
	"testing"
	"time"

	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestGenerateReportDocument(t *testing.T) {
	db := newTestDB(t)
	client := newTestClient(t, db, "Acme")
	staff := newTestUser(t, db, "staff@example.com", true)
	id := Identity{UserID: staff.ID, Staff: true}

	r1 := newTestReport(t, db, client.ID, day(2025, time.March, 3), 100, 80)
	r1.FirstResponseTimeAvgSeconds = 5405 // 01:30:05
	assert.NoError(t, db.Save(r1).Error)
	r2 := newTestReport(t, db, client.ID, day(2025, time.March, 10), 50, 50)

	assert.NoError(t, db.Create(&model.TicketCategory{ReportID: r1.ID, Tag: model.TagFaultyItems, CasesCount: 10}).Error)
	assert.NoError(t, db.Create(&model.TicketCategory{ReportID: r1.ID, Tag: model.TagDeliveryStatus, CasesCount: 30}).Error)
	assert.NoError(t, db.Create(&model.TicketCategory{ReportID: r2.ID, Tag: model.TagFaultyItems, CasesCount: 10}).Error)

	doc, err := GenerateReportDocument(db, id, client.ID, "")
	assert.NoError(t, err)
	assert.Equal(t, "Acme", doc.ClientName)
	assert.Equal(t, client.Slug, doc.ClientSlug)
	assert.Equal(t, 2, doc.ReportCount)
	assert.Equal(t, 150, doc.TicketsReceived)
	assert.Equal(t, 130, doc.TicketsResolved)
	assert.InDelta(t, 86.67, doc.ResolutionRate, 0.01)

	// newest report first
	assert.Len(t, doc.Reports, 2)
	assert.Equal(t, "2025-03-10", doc.Reports[0].PeriodStart)
	assert.Equal(t, "01:30:05", doc.Reports[1].FirstResponseTimeAvg)

	// categories aggregated across reports, biggest first
	assert.Len(t, doc.Categories, 2)
	assert.Equal(t, model.TagDeliveryStatus, doc.Categories[0].Tag)
	assert.Equal(t, 30, doc.Categories[0].CasesCount)
	assert.Equal(t, 60.0, doc.Categories[0].Percentage)
	assert.Equal(t, model.TagFaultyItems, doc.Categories[1].Tag)
	assert.Equal(t, 20, doc.Categories[1].CasesCount)
	assert.Equal(t, 40.0, doc.Categories[1].Percentage)
}

func TestGenerateReportDocument_PeriodFilter(t *testing.T) {
	db := newTestDB(t)
	client := newTestClient(t, db, "Acme")
	staff := newTestUser(t, db, "staff@example.com", true)
	id := Identity{UserID: staff.ID, Staff: true}

	newTestReport(t, db, client.ID, day(2025, time.March, 3), 100, 80)
	monthly := &model.KPIReport{
		ClientID:        client.ID,
		Period:          model.PeriodMonthly,
		PeriodStart:     day(2025, time.February, 1),
		PeriodEnd:       day(2025, time.February, 28),
		TicketsReceived: 400,
		TicketsResolved: 300,
	}
	assert.NoError(t, db.Create(monthly).Error)

	doc, err := GenerateReportDocument(db, id, client.ID, model.PeriodMonthly)
	assert.NoError(t, err)
	assert.Equal(t, 1, doc.ReportCount)
	assert.Equal(t, 400, doc.TicketsReceived)

	_, err = GenerateReportDocument(db, id, client.ID, "daily")
	_, ok := AsValidationError(err)
	assert.True(t, ok)
}

func TestGenerateReportDocument_NotVisibleReadsAsNotFound(t *testing.T) {
	db := newTestDB(t)
	client := newTestClient(t, db, "Acme")
	outsider := newTestUser(t, db, "outsider@example.com", false)

	_, err := GenerateReportDocument(db, Identity{UserID: outsider.ID, Staff: false}, client.ID, "")
	assert.True(t, errors.Is(err, ErrNotFound))

	// nonexistent client is indistinguishable
	staff := newTestUser(t, db, "staff@example.com", true)
	_, err = GenerateReportDocument(db, Identity{UserID: staff.ID, Staff: true}, 9999, "")
	assert.True(t, errors.Is(err, ErrNotFound))
}
