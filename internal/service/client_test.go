package service

import (
	"errors"
	"testing"
	"time"

	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCreateClient_SlugDerivedFromName(t *testing.T) {
	db := newTestDB(t)

	client, err := CreateClient(db, "Maison Café & Co", "contact@maison.example")
	assert.NoError(t, err)
	assert.Equal(t, "maison-cafe-and-co", client.Slug)

	// a name slugifying to the same value is rejected
	_, err = CreateClient(db, "Maison CAFE & co", "")
	ve, ok := AsValidationError(err)
	assert.True(t, ok)
	assert.Contains(t, ve.Fields, "name")
}

func TestCreateClient_Validation(t *testing.T) {
	db := newTestDB(t)

	_, err := CreateClient(db, "   ", "")
	ve, ok := AsValidationError(err)
	assert.True(t, ok)
	assert.Contains(t, ve.Fields, "name")

	_, err = CreateClient(db, "Acme", "not-an-email")
	ve, ok = AsValidationError(err)
	assert.True(t, ok)
	assert.Contains(t, ve.Fields, "contact_email")
}

func TestUpdateClient_SlugImmutable(t *testing.T) {
	db := newTestDB(t)
	client := newTestClient(t, db, "Original Name")
	originalSlug := client.Slug

	updated, err := UpdateClient(db, client.ID, "Entirely Different Name", "new@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "Entirely Different Name", updated.Name)
	assert.Equal(t, "new@example.com", updated.ContactEmail)
	assert.Equal(t, originalSlug, updated.Slug, "slug never changes after creation")

	_, err = UpdateClient(db, 9999, "Ghost", "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteClient_CascadesEverything(t *testing.T) {
	db := newTestDB(t)
	client := newTestClient(t, db, "Doomed")
	survivor := newTestClient(t, db, "Survivor")
	user := newTestUser(t, db, "member@example.com", false)
	_, _, err := AssignMembership(db, client.ID, user.ID, "viewer")
	assert.NoError(t, err)

	report := newTestReport(t, db, client.ID, day(2025, time.March, 3), 10, 8)
	assert.NoError(t, db.Create(&model.TicketCategory{ReportID: report.ID, Tag: model.TagFaultyItems, CasesCount: 3}).Error)
	assert.NoError(t, db.Create(&model.WeeklyHighlight{ReportID: report.ID, Kind: model.HighlightObservation, Title: "note"}).Error)
	survivorReport := newTestReport(t, db, survivor.ID, day(2025, time.March, 3), 5, 5)

	assert.NoError(t, DeleteClient(db, client.ID))

	var count int64
	db.Model(&model.Client{}).Where("id = ?", client.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&model.Membership{}).Where("client_id = ?", client.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&model.KPIReport{}).Where("client_id = ?", client.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&model.TicketCategory{}).Where("report_id = ?", report.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&model.WeeklyHighlight{}).Where("report_id = ?", report.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// the user account itself survives, as does the other tenant
	db.Model(&model.User{}).Where("id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&model.KPIReport{}).Where("id = ?", survivorReport.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	assert.True(t, errors.Is(DeleteClient(db, client.ID), ErrNotFound))
}

func TestGetClientDetail_Metrics(t *testing.T) {
	db := newTestDB(t)
	client := newTestClient(t, db, "Acme")
	user := newTestUser(t, db, "member@example.com", false)
	_, _, err := AssignMembership(db, client.ID, user.ID, "editor")
	assert.NoError(t, err)

	for i := 0; i < 7; i++ {
		newTestReport(t, db, client.ID, day(2025, time.January, 6).AddDate(0, 0, 7*i), 100, 90)
	}

	detail, err := GetClientDetail(db, client.ID)
	assert.NoError(t, err)
	assert.Equal(t, client.ID, detail.Client.ID)
	assert.Len(t, detail.RecentReports, 5, "detail shows the five most recent reports")
	assert.Len(t, detail.Memberships, 1)
	assert.Equal(t, user.Email, detail.Memberships[0].User.Email)
	assert.Equal(t, int64(7), detail.Metrics.TotalReports)
	assert.Equal(t, int64(700), detail.Metrics.TotalTicketsReceived)
	assert.Equal(t, int64(630), detail.Metrics.TotalTicketsResolved)
	assert.Equal(t, 90.0, detail.Metrics.ResolutionRate)

	_, err = GetClientDetail(db, 9999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetClientDetail_EmptyClient(t *testing.T) {
	db := newTestDB(t)
	client := newTestClient(t, db, "Fresh")

	detail, err := GetClientDetail(db, client.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), detail.Metrics.TotalReports)
	assert.Equal(t, 0.0, detail.Metrics.ResolutionRate, "no reports means rate 0, not NaN")
}

func TestListClients_SearchAndCounts(t *testing.T) {
	db := newTestDB(t)
	acme := newTestClient(t, db, "Acme Widgets")
	newTestClient(t, db, "Globex")
	user := newTestUser(t, db, "member@example.com", false)
	_, _, err := AssignMembership(db, acme.ID, user.ID, "viewer")
	assert.NoError(t, err)
	newTestReport(t, db, acme.ID, day(2025, time.March, 3), 10, 8)

	items, stats, total, err := ListClients(db, "acme", 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ReportsCount)
	assert.Equal(t, int64(1), items[0].UsersCount)

	assert.Equal(t, int64(2), stats.TotalClients)
	assert.Equal(t, int64(1), stats.ActiveClients)
	assert.Equal(t, int64(1), stats.InactiveClients)
	assert.Equal(t, int64(1), stats.TotalReports)
}
