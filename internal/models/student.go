package models

import "time"

// Student is a transported child. A student has a primary guardian and may
// have a secondary one; contracts reference one of them as payer.
type Student struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	OwnerID             uint       `gorm:"not null;index" json:"owner_id"`
	FullName            string     `gorm:"size:150;not null" json:"full_name"`
	BirthDate           *time.Time `gorm:"type:date" json:"birth_date"`
	SchoolID            uint       `gorm:"not null;index" json:"school_id"`
	PrimaryGuardianID   uint       `gorm:"not null;index" json:"primary_guardian_id"`
	SecondaryGuardianID *uint      `gorm:"index" json:"secondary_guardian_id"`
	Notes               *string    `gorm:"type:text" json:"notes"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	Owner             User      `gorm:"foreignKey:OwnerID" json:"-"`
	School            School    `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	PrimaryGuardian   Guardian  `gorm:"foreignKey:PrimaryGuardianID" json:"primary_guardian,omitempty"`
	SecondaryGuardian *Guardian `gorm:"foreignKey:SecondaryGuardianID" json:"secondary_guardian,omitempty"`
	Routes            []Route   `gorm:"many2many:students_routes" json:"routes,omitempty"`
}

func (Student) TableName() string {
	return "students"
}

// HasGuardian reports whether the given guardian is one of the student's
// registered guardians. Used to validate that a contract's payer is actually
// responsible for the student.
func (s *Student) HasGuardian(guardianID uint) bool {
	if s.PrimaryGuardianID == guardianID {
		return true
	}
	return s.SecondaryGuardianID != nil && *s.SecondaryGuardianID == guardianID
}
