package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAggregate_TopClientsOrdering(t *testing.T) {
	db := newTestDB(t)
	a := newTestClient(t, db, "Alpha")
	b := newTestClient(t, db, "Bravo")
	c := newTestClient(t, db, "Charlie")
	staff := newTestUser(t, db, "staff@example.com", true)

	recent := time.Now().AddDate(0, 0, -7)
	newTestReport(t, db, a.ID, recent, 100, 50)
	newTestReport(t, db, b.ID, recent, 0, 0) // no tickets received at all
	newTestReport(t, db, c.ID, recent, 80, 80)

	result, err := Aggregate(db, Identity{UserID: staff.ID, Staff: true}, 0)
	assert.NoError(t, err)
	assert.Equal(t, 3, result.ReportCount)

	// ranked by resolution rate, zero-ticket clients included at rate 0
	assert.Len(t, result.TopClients, 3)
	assert.Equal(t, "Charlie", result.TopClients[0].ClientName)
	assert.Equal(t, 100.0, result.TopClients[0].ResolutionRate)
	assert.Equal(t, "Alpha", result.TopClients[1].ClientName)
	assert.Equal(t, 50.0, result.TopClients[1].ResolutionRate)
	assert.Equal(t, "Bravo", result.TopClients[2].ClientName)
	assert.Equal(t, 0.0, result.TopClients[2].ResolutionRate)

	assert.Equal(t, 0.0, result.ByClient["Bravo"].ResolutionRate)
	assert.Equal(t, 50.0, result.ByClient["Alpha"].ResolutionRate)
}

func TestAggregate_TopClientsCappedAtFive(t *testing.T) {
	db := newTestDB(t)
	staff := newTestUser(t, db, "staff@example.com", true)

	recent := time.Now().AddDate(0, 0, -7)
	names := []string{"One", "Two", "Three", "Four", "Five", "Six", "Seven"}
	for i, name := range names {
		client := newTestClient(t, db, name)
		newTestReport(t, db, client.ID, recent, 100, 100-i*10)
	}

	result, err := Aggregate(db, Identity{UserID: staff.ID, Staff: true}, 0)
	assert.NoError(t, err)
	assert.Len(t, result.TopClients, 5)
	assert.Len(t, result.ByClient, 7, "per-client sums keep every client")
}

func TestAggregate_MonthBucketsAndWindow(t *testing.T) {
	db := newTestDB(t)
	client := newTestClient(t, db, "Acme")
	staff := newTestUser(t, db, "staff@example.com", true)

	inWindow := time.Now().AddDate(0, 0, -10)
	newTestReport(t, db, client.ID, inWindow, 40, 30)
	newTestReport(t, db, client.ID, inWindow.AddDate(0, 0, -7), 60, 50)

	// well outside a 30-day window
	newTestReport(t, db, client.ID, time.Now().AddDate(0, 0, -120), 999, 999)

	result, err := Aggregate(db, Identity{UserID: staff.ID, Staff: true}, 30)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.ReportCount)

	bucket := result.ByClient["Acme"]
	assert.Equal(t, 100, bucket.TicketsReceived)
	assert.Equal(t, 80, bucket.TicketsResolved)

	monthTotal := 0
	for _, m := range result.ByMonth {
		monthTotal += m.TicketsReceived
	}
	assert.Equal(t, 100, monthTotal, "month buckets cover exactly the window")
	assert.NotEmpty(t, result.DateRange)
}

func TestAggregate_ScopedToMemberships(t *testing.T) {
	db := newTestDB(t)
	mine := newTestClient(t, db, "Mine")
	other := newTestClient(t, db, "Other")
	user := newTestUser(t, db, "member@example.com", false)
	_, _, err := AssignMembership(db, mine.ID, user.ID, "viewer")
	assert.NoError(t, err)

	recent := time.Now().AddDate(0, 0, -7)
	newTestReport(t, db, mine.ID, recent, 10, 5)
	newTestReport(t, db, other.ID, recent, 1000, 1000)

	result, err := Aggregate(db, Identity{UserID: user.ID, Staff: false}, 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.ReportCount)
	assert.NotContains(t, result.ByClient, "Other")
}
