package model

import (
	"time"
)

// Membership roles, from most to least privileged
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// ValidRole reports whether role is one of the known membership roles
func ValidRole(role string) bool {
	return role == RoleOwner || role == RoleEditor || role == RoleViewer
}

// Membership represents the association between users and clients.
// A user holds at most one membership per client; assigning a role to an
// existing pair updates the stored role instead of creating a second row.
type Membership struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_membership_user_client"`
	ClientID  uint      `json:"client_id" gorm:"not null;uniqueIndex:idx_membership_user_client"`
	Role      string    `json:"role" gorm:"type:varchar(10);not null;default:'viewer'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User   User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Client Client `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}
