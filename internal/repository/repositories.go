package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User     UserRepository
	School   SchoolRepository
	Driver   DriverRepository
	Van      VanRepository
	Route    RouteRepository
	Student  StudentRepository
	Guardian GuardianRepository
	Contract ContractRepository
	Payment  PaymentRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		School:   NewSchoolRepository(db),
		Driver:   NewDriverRepository(db),
		Van:      NewVanRepository(db),
		Route:    NewRouteRepository(db),
		Student:  NewStudentRepository(db),
		Guardian: NewGuardianRepository(db),
		Contract: NewContractRepository(db),
		Payment:  NewPaymentRepository(db),
	}
}

// WithTx rebinds every repository to the given transaction handle so a
// service can run a multi-table mutation as one unit of work.
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return NewRepositories(tx)
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
	}
}

func (q *ListQuery) apply(db *gorm.DB) *gorm.DB {
	if q.SortBy != "" {
		order := q.SortBy
		if q.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("created_at DESC")
	}
	if q.PerPage > 0 {
		db = db.Offset((q.Page - 1) * q.PerPage).Limit(q.PerPage)
	}
	return db
}
