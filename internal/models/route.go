package models

import "time"

// Route ties a school, a driver and a van together with a pickup shift.
// Students ride a route through the students_routes join table.
type Route struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Shift       string    `gorm:"size:20;not null" json:"shift"`
	SchoolID    uint      `gorm:"not null;index" json:"school_id"`
	DriverID    uint      `gorm:"not null;index" json:"driver_id"`
	VanID       uint      `gorm:"not null;index" json:"van_id"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Owner    User      `gorm:"foreignKey:OwnerID" json:"-"`
	School   School    `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	Driver   Driver    `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	Van      Van       `gorm:"foreignKey:VanID" json:"van,omitempty"`
	Students []Student `gorm:"many2many:students_routes" json:"students,omitempty"`
}

func (Route) TableName() string {
	return "routes"
}

// Route shift constants
const (
	ShiftMorning   = "morning"
	ShiftAfternoon = "afternoon"
	ShiftFullDay   = "full_day"
)
