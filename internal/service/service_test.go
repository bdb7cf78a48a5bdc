package service

import (
	"testing"
	"time"

	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.Membership{},
		&model.KPIReport{},
		&model.TicketCategory{},
		&model.WeeklyHighlight{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestClient(t *testing.T, db *gorm.DB, name string) *model.Client {
	t.Helper()
	client, err := CreateClient(db, name, "")
	if err != nil {
		t.Fatalf("create client %q: %v", name, err)
	}
	return client
}

func newTestUser(t *testing.T, db *gorm.DB, email string, staff bool) *model.User {
	t.Helper()
	user, err := CreateUser(db, CreateUserInput{
		Email:    email,
		Password: "testpass123",
		IsStaff:  staff,
	})
	if err != nil {
		t.Fatalf("create user %q: %v", email, err)
	}
	return user
}

func newTestReport(t *testing.T, db *gorm.DB, clientID uint, start time.Time, received, resolved int) *model.KPIReport {
	t.Helper()
	report := &model.KPIReport{
		ClientID:        clientID,
		Period:          model.PeriodWeekly,
		PeriodStart:     start,
		PeriodEnd:       start.AddDate(0, 0, 6),
		TicketsReceived: received,
		TicketsResolved: resolved,
	}
	if err := db.Create(report).Error; err != nil {
		t.Fatalf("create report: %v", err)
	}
	return report
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
