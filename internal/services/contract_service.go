package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vanroute/vanroute-api/internal/models"
	"github.com/vanroute/vanroute-api/internal/repository"
	"github.com/vanroute/vanroute-api/internal/statemachine"
	"github.com/vanroute/vanroute-api/pkg/logger"
)

// ContractService owns the contract lifecycle and keeps the payment schedule
// consistent with it. Creation generates the full schedule; every mutation of
// a scheduling-relevant field runs through the reconciler. Contract plus
// schedule always commit or roll back as one transaction.
type ContractService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	schedule *ScheduleService
}

// NewContractService creates a new contract service
func NewContractService(db *gorm.DB, repos *repository.Repositories, schedule *ScheduleService) *ContractService {
	return &ContractService{
		db:       db,
		repos:    repos,
		schedule: schedule,
	}
}

// FindByID gets a contract with its payment statement, scoped to the tenant
func (s *ContractService) FindByID(ctx context.Context, ownerID, id uint) (*models.Contract, error) {
	contract, err := s.repos.Contract.FindByIDWithPayments(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return contract, nil
}

// List returns the tenant's contracts
func (s *ContractService) List(ctx context.Context, ownerID uint, query *repository.ListQuery) ([]models.Contract, int64, error) {
	return s.repos.Contract.ListByOwner(ctx, ownerID, query)
}

// Create validates the contract, generates its full payment schedule and
// persists both in one transaction.
func (s *ContractService) Create(ctx context.Context, contract *models.Contract) (*models.Contract, error) {
	if err := s.validateParties(ctx, contract); err != nil {
		return nil, err
	}
	if !contract.MonthlyAmount.IsPositive() {
		return nil, errors.New("valor mensal deve ser maior que zero")
	}
	if contract.Status == "" {
		contract.Status = models.ContractStatusActive
	}
	contract.GUID = uuid.NewString()

	payments, err := s.schedule.GenerateSchedule(contract)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := s.repos.WithTx(tx)
		if err := txRepos.Contract.Create(ctx, contract); err != nil {
			return err
		}
		for i := range payments {
			payments[i].ContractID = contract.ID
		}
		return txRepos.Payment.CreateBatch(ctx, payments)
	})
	if err != nil {
		return nil, wrapPersistence(err)
	}

	logger.Info("Contrato criado", "contract_id", contract.ID, "payments", len(payments))
	contract.Payments = payments
	return contract, nil
}

// ContractChanges carries a partial contract update. Pointer fields left nil
// were not in the payload; EndDateSet distinguishes "clear the end date"
// (sent as null) from "end date untouched".
type ContractChanges struct {
	StudentID     *uint
	PayerID       *uint
	EndDate       *time.Time
	EndDateSet    bool
	MonthlyAmount *decimal.Decimal
	DueDay        *int
	Status        *string
	ServiceType   *string
	Notes         *string
}

// Update applies a partial mutation to a contract and reconciles its payment
// schedule when end date, amount, due day or status changed. The contract row
// is locked for the duration so concurrent mutations to the same contract
// serialize; the whole diff commits atomically with the contract fields.
func (s *ContractService) Update(ctx context.Context, ownerID, contractID uint, changes *ContractChanges) (*models.Contract, error) {
	var updated *models.Contract

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := s.repos.WithTx(tx)

		before, err := txRepos.Contract.FindByIDAndOwnerForUpdate(ctx, contractID, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		after := *before
		if err := s.applyChanges(ctx, ownerID, &after, changes); err != nil {
			return err
		}

		if before.Status != after.Status {
			// Validate against a copy; Reconcile still needs the pre-mutation
			// status to detect the terminal transition.
			check := *before
			fsm := statemachine.NewContractFSM(&check)
			if err := fsm.TransitionTo(ctx, after.Status); err != nil {
				return err
			}
		}

		if changes.EndDateSet || NeedsReconcile(before, &after) {
			open, err := txRepos.Payment.FindOpenByContract(ctx, contractID)
			if err != nil {
				return err
			}

			diff, err := s.schedule.Reconcile(before, &after, open)
			if err != nil {
				return err
			}

			if err := s.applyDiff(ctx, txRepos, diff); err != nil {
				return err
			}

			if !diff.Empty() {
				logger.Info("Cronograma reconciliado",
					"contract_id", contractID,
					"cancelled", len(diff.ToCancel),
					"deleted", len(diff.ToDelete),
					"updated", len(diff.ToUpdate),
					"inserted", len(diff.ToInsert))
			}
		}

		if err := txRepos.Contract.Update(ctx, &after); err != nil {
			return err
		}
		updated = &after
		return nil
	})
	if err != nil {
		return nil, wrapPersistence(err)
	}

	return updated, nil
}

// Delete removes a contract and cascades to its whole schedule
func (s *ContractService) Delete(ctx context.Context, ownerID, contractID uint) error {
	contract, err := s.repos.Contract.FindByIDAndOwner(ctx, contractID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.repos.Contract.DeleteWithPayments(ctx, contract.ID); err != nil {
		return wrapPersistence(err)
	}
	return nil
}

func (s *ContractService) applyChanges(ctx context.Context, ownerID uint, contract *models.Contract, changes *ContractChanges) error {
	if changes.StudentID != nil && *changes.StudentID != contract.StudentID {
		contract.StudentID = *changes.StudentID
	}
	if changes.PayerID != nil && *changes.PayerID != contract.PayerID {
		contract.PayerID = *changes.PayerID
	}
	if changes.StudentID != nil || changes.PayerID != nil {
		if err := s.validateParties(ctx, contract); err != nil {
			return err
		}
	}
	if changes.EndDateSet {
		contract.EndDate = changes.EndDate
	}
	if changes.MonthlyAmount != nil {
		if !changes.MonthlyAmount.IsPositive() {
			return errors.New("valor mensal deve ser maior que zero")
		}
		contract.MonthlyAmount = *changes.MonthlyAmount
	}
	if changes.DueDay != nil {
		contract.DueDay = *changes.DueDay
	}
	if changes.Status != nil {
		contract.Status = *changes.Status
	}
	if changes.ServiceType != nil {
		contract.ServiceType = *changes.ServiceType
	}
	if changes.Notes != nil {
		contract.Notes = changes.Notes
	}
	return nil
}

// validateParties checks that the student and payer belong to the contract's
// tenant and that the payer is one of the student's registered guardians.
func (s *ContractService) validateParties(ctx context.Context, contract *models.Contract) error {
	student, err := s.repos.Student.FindByIDAndOwner(ctx, contract.StudentID, contract.OwnerID)
	if err != nil {
		return errors.New("aluno inválido para este operador")
	}
	if _, err := s.repos.Guardian.FindByIDAndOwner(ctx, contract.PayerID, contract.OwnerID); err != nil {
		return errors.New("responsável financeiro inválido para este operador")
	}
	if !student.HasGuardian(contract.PayerID) {
		return errors.New("responsável financeiro não está associado ao aluno")
	}
	return nil
}

func (s *ContractService) applyDiff(ctx context.Context, repos *repository.Repositories, diff *ScheduleDiff) error {
	if err := repos.Payment.UpdateBatch(ctx, diff.ToCancel); err != nil {
		return err
	}
	if err := repos.Payment.DeleteBatch(ctx, diff.ToDelete); err != nil {
		return err
	}
	if err := repos.Payment.UpdateBatch(ctx, diff.ToUpdate); err != nil {
		return err
	}
	return repos.Payment.CreateBatch(ctx, diff.ToInsert)
}

// wrapPersistence tags storage-level failures as persistence conflicts while
// letting domain errors raised inside the transaction callback through
// untouched.
func wrapPersistence(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %v", ErrPersistenceConflict, err)
	}
	return err
}
