package models

import "time"

// Driver is a van driver employed or subcontracted by the operator.
type Driver struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	OwnerID       uint       `gorm:"not null;index" json:"owner_id"`
	FullName      string     `gorm:"size:150;not null" json:"full_name"`
	LicenseNumber string     `gorm:"size:30;not null" json:"license_number"`
	LicenseExpiry *time.Time `gorm:"type:date" json:"license_expiry"`
	Phone         *string    `gorm:"size:30" json:"phone"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Driver) TableName() string {
	return "drivers"
}
