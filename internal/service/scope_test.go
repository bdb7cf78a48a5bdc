package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisibleClients_StaffSeesEverything(t *testing.T) {
	db := newTestDB(t)
	newTestClient(t, db, "Beta Shop")
	newTestClient(t, db, "Alpha Shop")
	staff := newTestUser(t, db, "staff@example.com", true)

	clients, err := VisibleClients(db, Identity{UserID: staff.ID, Staff: true})
	assert.NoError(t, err)
	assert.Len(t, clients, 2)
	// ordered by name
	assert.Equal(t, "Alpha Shop", clients[0].Name)
	assert.Equal(t, "Beta Shop", clients[1].Name)
}

func TestVisibleClients_MemberSeesOnlyOwnClients(t *testing.T) {
	db := newTestDB(t)
	mine := newTestClient(t, db, "Mine")
	other := newTestClient(t, db, "Other")
	user := newTestUser(t, db, "member@example.com", false)

	_, _, err := AssignMembership(db, mine.ID, user.ID, "viewer")
	assert.NoError(t, err)

	id := Identity{UserID: user.ID, Staff: false}

	clients, err := VisibleClients(db, id)
	assert.NoError(t, err)
	assert.Len(t, clients, 1)
	assert.Equal(t, mine.ID, clients[0].ID)

	visible, err := ClientVisible(db, id, mine.ID)
	assert.NoError(t, err)
	assert.True(t, visible)

	visible, err = ClientVisible(db, id, other.ID)
	assert.NoError(t, err)
	assert.False(t, visible)
}

func TestVisibleClientIDs_EmptyWithoutMemberships(t *testing.T) {
	db := newTestDB(t)
	newTestClient(t, db, "Lonely")
	user := newTestUser(t, db, "nobody@example.com", false)

	ids, err := VisibleClientIDs(db, Identity{UserID: user.ID, Staff: false})
	assert.NoError(t, err)
	assert.Empty(t, ids)
}
