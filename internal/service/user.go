package service

import (
	"strings"

	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserListItem is a user row annotated with the number of clients the user
// holds a membership for
type UserListItem struct {
	model.User
	ClientsCount int64 `json:"clients_count"`
}

// UserStats summarizes the user base for the staff listing
type UserStats struct {
	TotalUsers   int64 `json:"total_users"`
	StaffUsers   int64 `json:"staff_users"`
	ActiveUsers  int64 `json:"active_users"`
	RegularUsers int64 `json:"regular_users"`
}

const userPageSize = 20

// ListUsers returns one page of users, newest first, optionally filtered by
// a case-insensitive substring match on email or name.
func ListUsers(db *gorm.DB, search string, page int) ([]UserListItem, UserStats, int64, error) {
	if page <= 0 {
		page = 1
	}

	query := db.Model(&model.User{}).
		Select("users.*, " +
			"(SELECT COUNT(DISTINCT client_id) FROM memberships WHERE memberships.user_id = users.id) AS clients_count")

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(users.email) LIKE ? OR LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, UserStats{}, 0, err
	}

	var items []UserListItem
	err := query.
		Order("users.created_at desc").
		Limit(userPageSize).
		Offset((page - 1) * userPageSize).
		Find(&items).Error
	if err != nil {
		return nil, UserStats{}, 0, err
	}

	var stats UserStats
	if err := db.Model(&model.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, UserStats{}, 0, err
	}
	if err := db.Model(&model.User{}).Where("is_staff = ?", true).Count(&stats.StaffUsers).Error; err != nil {
		return nil, UserStats{}, 0, err
	}
	if err := db.Model(&model.User{}).Where("active = ?", true).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, UserStats{}, 0, err
	}
	stats.RegularUsers = stats.TotalUsers - stats.StaffUsers

	return items, stats, total, nil
}

// CreateUserInput carries a user creation request
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	IsStaff   bool
}

// CreateUser creates a user account with a bcrypt-hashed password. A
// duplicate email is a validation failure.
func CreateUser(db *gorm.DB, input CreateUserInput) (*model.User, error) {
	fields := map[string]string{}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		fields["email"] = "enter a valid email address"
	}
	if len(input.Password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, NewValidationError("email", "email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Email:     input.Email,
		Password:  string(hashedPassword),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		IsStaff:   input.IsStaff,
		Active:    true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
