package models

import (
	"time"
)

// User is a tenant owner: a transport operator account. Every school, driver,
// van, route, student, guardian and contract belongs to exactly one user, and
// all repository queries are scoped by that ownership.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	GUID              string    `gorm:"uniqueIndex" json:"guid"`
	FullName          string    `gorm:"not null" json:"full_name"`
	Email             string    `gorm:"uniqueIndex;not null" json:"email"`
	EncryptedPassword string    `gorm:"not null" json:"-"`
	Phone             *string   `json:"phone"`
	Role              string    `gorm:"default:operator;index" json:"role"`
	Status            string    `gorm:"default:active;index" json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// User role constants
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// IsActive returns true if the account can authenticate
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsAdmin returns true for administrator accounts
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserResponse is the JSON response format for users
type UserResponse struct {
	ID        uint      `json:"id"`
	GUID      string    `json:"guid"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		GUID:      u.GUID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
