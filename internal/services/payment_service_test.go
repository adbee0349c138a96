package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vanroute/vanroute-api/internal/billing"
	"github.com/vanroute/vanroute-api/internal/models"
	"github.com/vanroute/vanroute-api/internal/repository"
	"github.com/vanroute/vanroute-api/pkg/logger"
)

// Mock PaymentRepository (embedding so only the methods under test need stubs)
type mockPaymentRepository struct {
	repository.PaymentRepository
	mockFindByIDAndOwner func(ctx context.Context, id, ownerID uint) (*models.Payment, error)
	mockUpdate           func(ctx context.Context, payment *models.Payment) error
	mockMarkOverdueDue   func(ctx context.Context, today time.Time) (int64, error)
}

func (m *mockPaymentRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Payment, error) {
	return m.mockFindByIDAndOwner(ctx, id, ownerID)
}

func (m *mockPaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, payment)
	}
	return nil
}

func (m *mockPaymentRepository) MarkOverdueDue(ctx context.Context, today time.Time) (int64, error) {
	return m.mockMarkOverdueDue(ctx, today)
}

func paymentServiceWith(repo *mockPaymentRepository, today time.Time) *PaymentService {
	return NewPaymentService(repo, nil, billing.FixedClock{Date: today})
}

func TestSettleMarksPaymentPaid(t *testing.T) {
	today := date(2025, time.February, 10)
	stored := &models.Payment{
		ID:             7,
		ContractID:     1,
		ReferenceYear:  2025,
		ReferenceMonth: 1,
		DueDate:        date(2025, time.January, 5),
		Amount:         decimal.NewFromFloat(150.50),
		Status:         models.PaymentStatusOverdue,
	}

	var saved *models.Payment
	repo := &mockPaymentRepository{
		mockFindByIDAndOwner: func(ctx context.Context, id, ownerID uint) (*models.Payment, error) {
			return stored, nil
		},
		mockUpdate: func(ctx context.Context, payment *models.Payment) error {
			saved = payment
			return nil
		},
	}
	svc := paymentServiceWith(repo, today)

	txID := "gw-123"
	payment, err := svc.Settle(context.Background(), 1, 7, SettleInput{
		PaidAmount:  decimal.NewFromFloat(150.50),
		GatewayTxID: &txID,
	})
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	assert.True(t, decimal.NewFromFloat(150.50).Equal(*payment.PaidAmount))
	assert.Equal(t, today, *payment.PaidDate)
	assert.NotNil(t, payment.SettledAt)
	assert.Equal(t, "gw-123", *payment.GatewayTxID)
}

func TestSettleRejectsSettledPayment(t *testing.T) {
	repo := &mockPaymentRepository{
		mockFindByIDAndOwner: func(ctx context.Context, id, ownerID uint) (*models.Payment, error) {
			return &models.Payment{ID: 7, Status: models.PaymentStatusPaid}, nil
		},
	}
	svc := paymentServiceWith(repo, date(2025, time.February, 10))

	_, err := svc.Settle(context.Background(), 1, 7, SettleInput{PaidAmount: decimal.NewFromInt(100)})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSettleNotFoundForOtherTenant(t *testing.T) {
	repo := &mockPaymentRepository{
		mockFindByIDAndOwner: func(ctx context.Context, id, ownerID uint) (*models.Payment, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := paymentServiceWith(repo, date(2025, time.February, 10))

	_, err := svc.Settle(context.Background(), 2, 7, SettleInput{PaidAmount: decimal.NewFromInt(100)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelVoidsOpenPayment(t *testing.T) {
	repo := &mockPaymentRepository{
		mockFindByIDAndOwner: func(ctx context.Context, id, ownerID uint) (*models.Payment, error) {
			return &models.Payment{ID: 7, Status: models.PaymentStatusPending}, nil
		},
	}
	svc := paymentServiceWith(repo, date(2025, time.February, 10))

	payment, err := svc.Cancel(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCancelled, payment.Status)
}

func TestCancelRejectsCancelledPayment(t *testing.T) {
	repo := &mockPaymentRepository{
		mockFindByIDAndOwner: func(ctx context.Context, id, ownerID uint) (*models.Payment, error) {
			return &models.Payment{ID: 7, Status: models.PaymentStatusCancelled}, nil
		},
	}
	svc := paymentServiceWith(repo, date(2025, time.February, 10))

	_, err := svc.Cancel(context.Background(), 1, 7)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSweepOverduePassesTodayToRepository(t *testing.T) {
	logger.Setup("test")
	today := date(2025, time.March, 1)

	var sweptWith time.Time
	repo := &mockPaymentRepository{
		mockMarkOverdueDue: func(ctx context.Context, t time.Time) (int64, error) {
			sweptWith = t
			return 4, nil
		},
	}
	svc := paymentServiceWith(repo, today)

	updated, err := svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated)
	assert.Equal(t, today, sweptWith)
}
