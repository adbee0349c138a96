package models

import "time"

// Van is a vehicle in the operator's fleet.
type Van struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Plate     string    `gorm:"size:10;not null" json:"plate"`
	Model     *string   `gorm:"size:100" json:"model"`
	Year      *int      `json:"year"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Van) TableName() string {
	return "vans"
}
