package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vanroute/vanroute-api/internal/models"
)

// ContractRepository defines the interface for contract data access. Every
// read and write is parameterized by the owning tenant's user ID.
type ContractRepository interface {
	FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Contract, error)
	FindByIDAndOwnerForUpdate(ctx context.Context, id, ownerID uint) (*models.Contract, error)
	FindByIDWithPayments(ctx context.Context, id, ownerID uint) (*models.Contract, error)
	ListByOwner(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Contract, int64, error)
	Create(ctx context.Context, contract *models.Contract) error
	Update(ctx context.Context, contract *models.Contract) error
	DeleteWithPayments(ctx context.Context, id uint) error
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// FindByIDAndOwnerForUpdate locks the contract row for the duration of the
// surrounding transaction. Reconciliation reads the obligation set and writes
// a derived diff, so concurrent mutations to the same contract must be
// serialized or months would duplicate or go missing.
func (r *contractRepository) FindByIDAndOwnerForUpdate(ctx context.Context, id, ownerID uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ?", ownerID).
		First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByIDWithPayments(ctx context.Context, id, ownerID uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Joins("Student").
		Joins("Payer").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			// Open obligations first by due date, then settled ones newest
			// first, mirroring how operators review a contract's statement.
			return db.Order("(CASE WHEN payments.status IN ('pending','overdue') THEN 0 WHEN payments.status = 'paid' THEN 1 ELSE 2 END) ASC").
				Order("payments.due_date ASC").
				Order("payments.id ASC")
		}).
		First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) ListByOwner(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Contract, int64, error) {
	var contracts []models.Contract
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Contract{}).Where("contracts.owner_id = ?", ownerID)

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN students ON students.id = contracts.student_id").
			Joins("LEFT JOIN guardians ON guardians.id = contracts.payer_id").
			Where("students.full_name ILIKE ? OR guardians.full_name ILIKE ? OR contracts.guid ILIKE ?",
				search, search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.apply(db).
		Preload("Student").
		Preload("Payer").
		Find(&contracts).Error
	return contracts, total, err
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *contractRepository) Update(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

func (r *contractRepository) DeleteWithPayments(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Contract{}, id).Error
	})
}

// PaymentRepository defines the interface for payment data access. Payments
// carry no tenant column, so tenancy is enforced here by joining through the
// owning contract whenever the caller is not already inside a tenant-checked
// contract mutation.
type PaymentRepository interface {
	FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Payment, error)
	FindByContractAndOwner(ctx context.Context, contractID, ownerID uint) ([]models.Payment, error)
	FindOpenByContract(ctx context.Context, contractID uint) ([]models.Payment, error)
	CreateBatch(ctx context.Context, payments []models.Payment) error
	UpdateBatch(ctx context.Context, payments []models.Payment) error
	DeleteBatch(ctx context.Context, payments []models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	ListOverdueByOwner(ctx context.Context, ownerID uint, today time.Time) ([]models.Payment, error)
	MarkOverdueDue(ctx context.Context, today time.Time) (int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN contracts ON contracts.id = payments.contract_id AND contracts.owner_id = ?", ownerID).
		First(&payment, "payments.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByContractAndOwner(ctx context.Context, contractID, ownerID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN contracts ON contracts.id = payments.contract_id AND contracts.owner_id = ?", ownerID).
		Where("payments.contract_id = ?", contractID).
		Order("(CASE WHEN payments.status IN ('pending','overdue') THEN 0 WHEN payments.status = 'paid' THEN 1 ELSE 2 END) ASC").
		Order("payments.due_date ASC").
		Order("payments.id ASC").
		Find(&payments).Error
	return payments, err
}

// FindOpenByContract returns pending and overdue obligations ordered by
// reference month. Callers must have tenant-checked the contract already;
// this runs inside the reconciliation transaction.
func (r *paymentRepository) FindOpenByContract(ctx context.Context, contractID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND status IN ?", contractID,
			[]string{models.PaymentStatusPending, models.PaymentStatusOverdue}).
		Order("reference_year ASC, reference_month ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) CreateBatch(ctx context.Context, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&payments).Error
}

func (r *paymentRepository) UpdateBatch(ctx context.Context, payments []models.Payment) error {
	for i := range payments {
		if err := r.db.WithContext(ctx).Save(&payments[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *paymentRepository) DeleteBatch(ctx context.Context, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.ID)
	}
	return r.db.WithContext(ctx).Delete(&models.Payment{}, ids).Error
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// ListOverdueByOwner returns obligations already flipped to overdue plus
// pending ones whose due date has passed, the same rule the sweep applies.
func (r *paymentRepository) ListOverdueByOwner(ctx context.Context, ownerID uint, today time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN contracts ON contracts.id = payments.contract_id AND contracts.owner_id = ?", ownerID).
		Where("payments.status = ? OR (payments.status = ? AND payments.due_date < ?)",
			models.PaymentStatusOverdue, models.PaymentStatusPending, today).
		Order("payments.due_date ASC").
		Find(&payments).Error
	return payments, err
}

// MarkOverdueDue flips pending obligations with a passed due date to overdue
// and returns how many rows changed. Invoked by the scheduled sweep and the
// cron task endpoint.
func (r *paymentRepository) MarkOverdueDue(ctx context.Context, today time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("status = ? AND due_date < ?", models.PaymentStatusPending, today).
		Update("status", models.PaymentStatusOverdue)
	return res.RowsAffected, res.Error
}
