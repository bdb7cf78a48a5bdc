package model

import (
	"time"
)

// User represents the user model stored in the database.
// Staff and superuser users can manage clients, users and memberships;
// regular users only see clients they hold a membership for.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Email       string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password    string    `json:"-" gorm:"type:varchar(255)"`
	FirstName   string    `json:"first_name" gorm:"type:varchar(30)"`
	LastName    string    `json:"last_name" gorm:"type:varchar(30)"`
	IsStaff     bool      `json:"is_staff" gorm:"default:false"`
	IsSuperuser bool      `json:"is_superuser" gorm:"default:false"`
	Active      bool      `json:"active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Memberships []Membership `json:"memberships,omitempty" gorm:"foreignKey:UserID"`
}

// IsStaffOrSuperuser reports whether the user holds the staff capability
func (u *User) IsStaffOrSuperuser() bool {
	return u.IsStaff || u.IsSuperuser
}
