package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanroute/vanroute-api/internal/billing"
)

// Payment is one monthly billing obligation derived from a contract. Tenancy
// is inherited through the contract; a payment carries no owner column of its
// own, and every query reaching payments is parameterized by the owning
// contract's tenant at the repository boundary.
type Payment struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ContractID     uint            `gorm:"not null;index:idx_payments_contract_month" json:"contract_id"`
	ReferenceYear  int             `gorm:"not null;index:idx_payments_contract_month" json:"reference_year"`
	ReferenceMonth int             `gorm:"not null;index:idx_payments_contract_month" json:"reference_month"`
	DueDate        time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Amount         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Discount       *decimal.Decimal `gorm:"type:numeric(10,2)" json:"discount"`
	Surcharge      *decimal.Decimal `gorm:"type:numeric(10,2)" json:"surcharge"`
	PaidAmount     *decimal.Decimal `gorm:"type:numeric(10,2)" json:"paid_amount"`
	PaidDate       *time.Time      `gorm:"type:date" json:"paid_date"`
	Status         string          `gorm:"size:50;default:pending;not null;index" json:"status"`
	GatewayTxID    *string         `gorm:"size:255;column:gateway_tx_id" json:"gateway_tx_id"`
	GeneratedAt    time.Time       `gorm:"autoCreateTime" json:"generated_at"`
	SettledAt      *time.Time      `json:"settled_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Associations
	Contract Contract `gorm:"foreignKey:ContractID" json:"-"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment status constants
const (
	PaymentStatusPending   = "pending"
	PaymentStatusOverdue   = "overdue"
	PaymentStatusPaid      = "paid"
	PaymentStatusCancelled = "cancelled"
)

// MonthRef returns the structured reference month.
func (p *Payment) MonthRef() billing.MonthRef {
	return billing.MonthRef{Year: p.ReferenceYear, Month: time.Month(p.ReferenceMonth)}
}

// IsOpen returns true while the obligation can still change: not yet settled
// nor cancelled. Only open obligations participate in reconciliation.
func (p *Payment) IsOpen() bool {
	return p.Status == PaymentStatusPending || p.Status == PaymentStatusOverdue
}

// IsOverdue applies the single due-date-vs-today rule shared by the schedule
// generator, the reconciler and the background sweep: a pending obligation
// whose due date has passed is overdue even before the sweep persists it.
func (p *Payment) IsOverdue(today time.Time) bool {
	if p.Status == PaymentStatusOverdue {
		return true
	}
	return p.Status == PaymentStatusPending && p.DueDate.Before(today)
}

// MayPay returns true if the obligation can be settled
func (p *Payment) MayPay() bool {
	return p.IsOpen()
}

// MayCancel returns true if the obligation can be cancelled
func (p *Payment) MayCancel() bool {
	return p.IsOpen()
}

// StatusFor derives the status of a freshly generated or recomputed
// obligation from its due date.
func StatusFor(dueDate, today time.Time) string {
	if dueDate.Before(today) {
		return PaymentStatusOverdue
	}
	return PaymentStatusPending
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID             uint             `json:"id"`
	ContractID     uint             `json:"contract_id"`
	ReferenceMonth string           `json:"reference_month"`
	DueDate        time.Time        `json:"due_date"`
	Amount         decimal.Decimal  `json:"amount"`
	Discount       *decimal.Decimal `json:"discount,omitempty"`
	Surcharge      *decimal.Decimal `json:"surcharge,omitempty"`
	PaidAmount     *decimal.Decimal `json:"paid_amount,omitempty"`
	PaidDate       *time.Time       `json:"paid_date,omitempty"`
	Status         string           `json:"status"`
	GatewayTxID    *string          `json:"gateway_tx_id,omitempty"`
	GeneratedAt    time.Time        `json:"generated_at"`
	SettledAt      *time.Time       `json:"settled_at,omitempty"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		ContractID:     p.ContractID,
		ReferenceMonth: p.MonthRef().String(),
		DueDate:        p.DueDate,
		Amount:         p.Amount,
		Discount:       p.Discount,
		Surcharge:      p.Surcharge,
		PaidAmount:     p.PaidAmount,
		PaidDate:       p.PaidDate,
		Status:         p.Status,
		GatewayTxID:    p.GatewayTxID,
		GeneratedAt:    p.GeneratedAt,
		SettledAt:      p.SettledAt,
	}
}
