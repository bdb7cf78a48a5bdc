package model

import (
	"time"
)

// Client represents a tenant organization whose support metrics are tracked.
// The slug is derived from the name when the client is first created and is
// never regenerated afterwards, so stored report URLs stay stable.
type Client struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	Slug         string    `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	ContactEmail string    `json:"contact_email" gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Memberships []Membership `json:"memberships,omitempty" gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	Reports     []KPIReport  `json:"reports,omitempty" gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}
