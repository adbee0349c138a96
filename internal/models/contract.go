package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanroute/vanroute-api/internal/billing"
)

// Contract is a recurring transport service agreement: one student, one
// paying guardian, a fixed monthly amount billed on a fixed day of the month.
// Its payment schedule is derived, never edited directly; every mutation that
// touches end date, amount, due day or status goes through reconciliation.
type Contract struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	GUID          string          `gorm:"uniqueIndex" json:"guid"`
	OwnerID       uint            `gorm:"not null;index" json:"owner_id"`
	StudentID     uint            `gorm:"not null;index" json:"student_id"`
	PayerID       uint            `gorm:"not null;index" json:"payer_id"`
	StartDate     time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate       *time.Time      `gorm:"type:date" json:"end_date"`
	MonthlyAmount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"monthly_amount"`
	DueDay        int             `gorm:"not null" json:"due_day"`
	ServiceType   string          `gorm:"size:100;not null" json:"service_type"`
	Status        string          `gorm:"size:50;default:active;index" json:"status"`
	Notes         *string         `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Associations
	Owner    User      `gorm:"foreignKey:OwnerID" json:"-"`
	Student  Student   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Payer    Guardian  `gorm:"foreignKey:PayerID" json:"payer,omitempty"`
	Payments []Payment `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

// TableName specifies the table name for Contract
func (Contract) TableName() string {
	return "contracts"
}

// Contract status constants
const (
	ContractStatusActive    = "active"
	ContractStatusInactive  = "inactive"
	ContractStatusCancelled = "cancelled"
	ContractStatusSuspended = "suspended"
	ContractStatusCompleted = "completed"
)

// IsTerminal returns true for statuses that stop billing: no schedule is
// maintained for a cancelled or suspended contract.
func (c *Contract) IsTerminal() bool {
	return c.Status == ContractStatusCancelled || c.Status == ContractStatusSuspended
}

// EffectiveEnd is the end-of-schedule date: the explicit end date, or
// December 31 of the start year for open-ended contracts. Open-ended
// contracts bill only through the calendar year they start in; later years
// come from reconciliation when the operator extends the contract.
func (c *Contract) EffectiveEnd() time.Time {
	if c.EndDate != nil {
		return *c.EndDate
	}
	return time.Date(c.StartDate.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
}

// StartMonth returns the first billed reference month.
func (c *Contract) StartMonth() billing.MonthRef {
	return billing.MonthRefOf(c.StartDate)
}

// ContractResponse is the JSON response format for contracts
type ContractResponse struct {
	ID            uint              `json:"id"`
	GUID          string            `json:"guid"`
	StudentID     uint              `json:"student_id"`
	StudentName   string            `json:"student_name,omitempty"`
	PayerID       uint              `json:"payer_id"`
	PayerName     string            `json:"payer_name,omitempty"`
	StartDate     time.Time         `json:"start_date"`
	EndDate       *time.Time        `json:"end_date"`
	MonthlyAmount decimal.Decimal   `json:"monthly_amount"`
	DueDay        int               `json:"due_day"`
	ServiceType   string            `json:"service_type"`
	Status        string            `json:"status"`
	Notes         *string           `json:"notes"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Payments      []PaymentResponse `json:"payments,omitempty"`
}

// ToResponse converts Contract to ContractResponse
func (c *Contract) ToResponse() ContractResponse {
	resp := ContractResponse{
		ID:            c.ID,
		GUID:          c.GUID,
		StudentID:     c.StudentID,
		PayerID:       c.PayerID,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		MonthlyAmount: c.MonthlyAmount,
		DueDay:        c.DueDay,
		ServiceType:   c.ServiceType,
		Status:        c.Status,
		Notes:         c.Notes,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}

	if c.Student.ID != 0 {
		resp.StudentName = c.Student.FullName
	}
	if c.Payer.ID != 0 {
		resp.PayerName = c.Payer.FullName
	}

	for _, payment := range c.Payments {
		resp.Payments = append(resp.Payments, payment.ToResponse())
	}

	return resp
}
