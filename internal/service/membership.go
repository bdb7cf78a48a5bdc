package service

import (
	"errors"

	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"gorm.io/gorm"
)

// AssignMembership attaches a user to a client with a role. If a membership
// already exists for the (user, client) pair its role is overwritten in
// place; no duplicate row is ever created. The returned flag is true when a
// new membership was added and false when an existing role was updated —
// callers surface that distinction in their response.
func AssignMembership(db *gorm.DB, clientID, userID uint, role string) (*model.Membership, bool, error) {
	if role == "" {
		role = model.RoleViewer
	}
	if !model.ValidRole(role) {
		return nil, false, NewValidationError("role", "role must be one of owner, editor, viewer")
	}

	var client model.Client
	if err := db.First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, NewValidationError("user_id", "user not found")
		}
		return nil, false, err
	}
	if !user.Active {
		return nil, false, NewValidationError("user_id", "user is not active")
	}

	var existing model.Membership
	err := db.Where("user_id = ? AND client_id = ?", userID, clientID).First(&existing).Error
	if err == nil {
		existing.Role = role
		if err := db.Save(&existing).Error; err != nil {
			return nil, false, err
		}
		existing.User = user
		existing.Client = client
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	membership := model.Membership{
		UserID:   userID,
		ClientID: clientID,
		Role:     role,
	}
	if err := db.Create(&membership).Error; err != nil {
		return nil, false, err
	}
	membership.User = user
	membership.Client = client
	return &membership, true, nil
}
