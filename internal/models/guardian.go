package models

import "time"

// Guardian is a parent or financial guardian. Contracts bill a guardian as
// payer on behalf of a student.
type Guardian struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	FullName  string    `gorm:"size:150;not null" json:"full_name"`
	Document  *string   `gorm:"size:20" json:"document"`
	Email     *string   `gorm:"size:150" json:"email"`
	Phone     string    `gorm:"size:30;not null" json:"phone"`
	Address   *string   `gorm:"type:text" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Guardian) TableName() string {
	return "guardians"
}
