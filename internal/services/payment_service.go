package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vanroute/vanroute-api/internal/billing"
	"github.com/vanroute/vanroute-api/internal/models"
	"github.com/vanroute/vanroute-api/internal/repository"
	"github.com/vanroute/vanroute-api/internal/statemachine"
	"github.com/vanroute/vanroute-api/pkg/logger"
)

// PaymentService handles obligation settlement, manual cancellation and the
// overdue sweep. Schedule shape (which months exist, amounts, due dates) is
// never edited here; that belongs to the reconciliation path.
type PaymentService struct {
	paymentRepo  repository.PaymentRepository
	contractRepo repository.ContractRepository
	clock        billing.Clock
}

// NewPaymentService creates a new payment service
func NewPaymentService(paymentRepo repository.PaymentRepository, contractRepo repository.ContractRepository, clock billing.Clock) *PaymentService {
	return &PaymentService{
		paymentRepo:  paymentRepo,
		contractRepo: contractRepo,
		clock:        clock,
	}
}

// FindByID gets a payment scoped to the tenant
func (s *PaymentService) FindByID(ctx context.Context, ownerID, id uint) (*models.Payment, error) {
	payment, err := s.paymentRepo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

// ListByContract returns a contract's statement, open obligations first
func (s *PaymentService) ListByContract(ctx context.Context, ownerID, contractID uint) ([]models.Payment, error) {
	if _, err := s.contractRepo.FindByIDAndOwner(ctx, contractID, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.paymentRepo.FindByContractAndOwner(ctx, contractID, ownerID)
}

// ListOverdue returns the tenant's overdue obligations, including pending
// ones whose due date passed but the sweep has not visited yet.
func (s *PaymentService) ListOverdue(ctx context.Context, ownerID uint) ([]models.Payment, error) {
	return s.paymentRepo.ListOverdueByOwner(ctx, ownerID, s.clock.Today())
}

// SettleInput carries the settlement details for an obligation
type SettleInput struct {
	PaidAmount  decimal.Decimal
	PaidDate    *time.Time
	GatewayTxID *string
}

// Settle marks an open obligation as paid. Settlement is terminal for the
// scheduling engine: a paid obligation never re-enters reconciliation.
func (s *PaymentService) Settle(ctx context.Context, ownerID, id uint, in SettleInput) (*models.Payment, error) {
	payment, err := s.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewPaymentFSM(payment)
	if err := fsm.Pay(ctx); err != nil {
		return nil, ErrInvalidState
	}

	paidDate := s.clock.Today()
	if in.PaidDate != nil {
		paidDate = *in.PaidDate
	}
	now := time.Now().UTC()

	payment.PaidAmount = &in.PaidAmount
	payment.PaidDate = &paidDate
	payment.SettledAt = &now
	payment.GatewayTxID = in.GatewayTxID

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, wrapPersistence(err)
	}
	return payment, nil
}

// Cancel voids a single open obligation without touching the contract
func (s *PaymentService) Cancel(ctx context.Context, ownerID, id uint) (*models.Payment, error) {
	payment, err := s.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewPaymentFSM(payment)
	if err := fsm.Cancel(ctx); err != nil {
		return nil, ErrInvalidState
	}

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, wrapPersistence(err)
	}
	return payment, nil
}

// SweepOverdue flips pending obligations past their due date to overdue and
// returns the number of rows changed. Runs from the scheduled job and from
// the cron task endpoint; both use the same due-date-vs-today rule as
// generation.
func (s *PaymentService) SweepOverdue(ctx context.Context) (int64, error) {
	updated, err := s.paymentRepo.MarkOverdueDue(ctx, s.clock.Today())
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		logger.Info("Pagamentos marcados como atrasados", "count", updated)
	}
	return updated, nil
}
