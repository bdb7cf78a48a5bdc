package service

import (
	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"gorm.io/gorm"
)

// Identity carries the authenticated caller's id and capability flags. It is
// built from the JWT claims by the handlers and passed explicitly to every
// service function that returns client-scoped data.
type Identity struct {
	UserID uint
	Staff  bool // staff or superuser capability
}

// VisibleClients returns the set of clients the caller may see: all clients
// for staff, otherwise exactly the clients the caller holds a membership
// for. Every client-scoped query in the service goes through this filter or
// VisibleClientIDs; nothing outside the set is ever returned.
func VisibleClients(db *gorm.DB, id Identity) ([]model.Client, error) {
	var clients []model.Client
	query := db.Model(&model.Client{}).Order("name asc")
	if !id.Staff {
		query = query.
			Joins("JOIN memberships ON memberships.client_id = clients.id").
			Where("memberships.user_id = ?", id.UserID).
			Distinct()
	}
	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// VisibleClientIDs returns the ids of the caller's visible clients
func VisibleClientIDs(db *gorm.DB, id Identity) ([]uint, error) {
	clients, err := VisibleClients(db, id)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(clients))
	for _, c := range clients {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// ClientVisible reports whether one client is inside the caller's visible set
func ClientVisible(db *gorm.DB, id Identity, clientID uint) (bool, error) {
	if id.Staff {
		var count int64
		if err := db.Model(&model.Client{}).Where("id = ?", clientID).Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	}
	var count int64
	err := db.Model(&model.Membership{}).
		Where("user_id = ? AND client_id = ?", id.UserID, clientID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
