package models

import "time"

// School is a destination served by the operator's routes.
type School struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Address   *string   `gorm:"type:text" json:"address"`
	Phone     *string   `gorm:"size:30" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (School) TableName() string {
	return "schools"
}
