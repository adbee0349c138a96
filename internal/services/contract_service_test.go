package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vanroute/vanroute-api/internal/models"
	"github.com/vanroute/vanroute-api/internal/repository"
)

// Mock StudentRepository
type mockStudentRepository struct {
	repository.StudentRepository
	mockFindByIDAndOwner func(ctx context.Context, id, ownerID uint) (*models.Student, error)
}

func (m *mockStudentRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Student, error) {
	return m.mockFindByIDAndOwner(ctx, id, ownerID)
}

// Mock GuardianRepository
type mockGuardianRepository struct {
	repository.GuardianRepository
	mockFindByIDAndOwner func(ctx context.Context, id, ownerID uint) (*models.Guardian, error)
}

func (m *mockGuardianRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Guardian, error) {
	return m.mockFindByIDAndOwner(ctx, id, ownerID)
}

func contractServiceWithParties(student *models.Student, guardian *models.Guardian) *ContractService {
	repos := &repository.Repositories{
		Student: &mockStudentRepository{
			mockFindByIDAndOwner: func(ctx context.Context, id, ownerID uint) (*models.Student, error) {
				if student == nil || student.ID != id || student.OwnerID != ownerID {
					return nil, gorm.ErrRecordNotFound
				}
				return student, nil
			},
		},
		Guardian: &mockGuardianRepository{
			mockFindByIDAndOwner: func(ctx context.Context, id, ownerID uint) (*models.Guardian, error) {
				if guardian == nil || guardian.ID != id || guardian.OwnerID != ownerID {
					return nil, gorm.ErrRecordNotFound
				}
				return guardian, nil
			},
		},
	}
	return NewContractService(nil, repos, nil)
}

func TestValidatePartiesAcceptsStudentGuardianPair(t *testing.T) {
	student := &models.Student{ID: 3, OwnerID: 1, PrimaryGuardianID: 9}
	guardian := &models.Guardian{ID: 9, OwnerID: 1}
	svc := contractServiceWithParties(student, guardian)

	contract := &models.Contract{OwnerID: 1, StudentID: 3, PayerID: 9}
	assert.NoError(t, svc.validateParties(context.Background(), contract))
}

func TestValidatePartiesRejectsForeignStudent(t *testing.T) {
	student := &models.Student{ID: 3, OwnerID: 2, PrimaryGuardianID: 9}
	guardian := &models.Guardian{ID: 9, OwnerID: 1}
	svc := contractServiceWithParties(student, guardian)

	contract := &models.Contract{OwnerID: 1, StudentID: 3, PayerID: 9}
	assert.Error(t, svc.validateParties(context.Background(), contract))
}

func TestValidatePartiesRejectsPayerWhoIsNotAGuardianOfTheStudent(t *testing.T) {
	student := &models.Student{ID: 3, OwnerID: 1, PrimaryGuardianID: 5}
	guardian := &models.Guardian{ID: 9, OwnerID: 1}
	svc := contractServiceWithParties(student, guardian)

	contract := &models.Contract{OwnerID: 1, StudentID: 3, PayerID: 9}
	assert.Error(t, svc.validateParties(context.Background(), contract))
}

func TestValidatePartiesAcceptsSecondaryGuardianAsPayer(t *testing.T) {
	secondary := uint(9)
	student := &models.Student{ID: 3, OwnerID: 1, PrimaryGuardianID: 5, SecondaryGuardianID: &secondary}
	guardian := &models.Guardian{ID: 9, OwnerID: 1}
	svc := contractServiceWithParties(student, guardian)

	contract := &models.Contract{OwnerID: 1, StudentID: 3, PayerID: 9}
	assert.NoError(t, svc.validateParties(context.Background(), contract))
}

func TestApplyChangesClearsEndDateOnlyWhenSet(t *testing.T) {
	svc := NewContractService(nil, &repository.Repositories{}, nil)
	end := date(2025, time.June, 30)

	contract := &models.Contract{EndDate: &end, MonthlyAmount: decimal.NewFromInt(100), DueDay: 5}

	// end_date absent from the payload: untouched
	require.NoError(t, svc.applyChanges(context.Background(), 1, contract, &ContractChanges{}))
	assert.NotNil(t, contract.EndDate)

	// end_date sent as null: cleared
	require.NoError(t, svc.applyChanges(context.Background(), 1, contract, &ContractChanges{EndDateSet: true}))
	assert.Nil(t, contract.EndDate)
}

func TestApplyChangesRejectsNonPositiveAmount(t *testing.T) {
	svc := NewContractService(nil, &repository.Repositories{}, nil)
	contract := &models.Contract{MonthlyAmount: decimal.NewFromInt(100), DueDay: 5}

	zero := decimal.Zero
	err := svc.applyChanges(context.Background(), 1, contract, &ContractChanges{MonthlyAmount: &zero})
	assert.Error(t, err)
}

func TestWrapPersistence(t *testing.T) {
	assert.NoError(t, wrapPersistence(nil))

	assert.ErrorIs(t, wrapPersistence(gorm.ErrRecordNotFound), ErrNotFound)

	pgErr := &pgconn.PgError{Code: "23505"}
	assert.ErrorIs(t, wrapPersistence(pgErr), ErrPersistenceConflict)

	// Domain errors raised inside the transaction pass through untouched
	domain := errors.New("responsável financeiro não está associado ao aluno")
	assert.Equal(t, domain, wrapPersistence(domain))
}
