package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vanroute/vanroute-api/internal/models"
)

// The registry repositories cover the operator's fleet entities: schools,
// drivers, vans, routes, students and guardians. They are ordinary
// tenant-scoped CRUD; the billing engine only consumes them for ownership
// validation.

// SchoolRepository defines the interface for school data access
type SchoolRepository interface {
	FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.School, error)
	ListByOwner(ctx context.Context, ownerID uint, query *ListQuery) ([]models.School, int64, error)
	Create(ctx context.Context, school *models.School) error
	Update(ctx context.Context, school *models.School) error
	Delete(ctx context.Context, id, ownerID uint) error
}

type schoolRepository struct {
	db *gorm.DB
}

func NewSchoolRepository(db *gorm.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.School, error) {
	var school models.School
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&school, id).Error
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *schoolRepository) ListByOwner(ctx context.Context, ownerID uint, query *ListQuery) ([]models.School, int64, error) {
	var schools []models.School
	var total int64

	db := r.db.WithContext(ctx).Model(&models.School{}).Where("owner_id = ?", ownerID)
	if query.Search != "" {
		db = db.Where("name ILIKE ?", "%"+query.Search+"%")
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.apply(db).Find(&schools).Error
	return schools, total, err
}

func (r *schoolRepository) Create(ctx context.Context, school *models.School) error {
	return r.db.WithContext(ctx).Create(school).Error
}

func (r *schoolRepository) Update(ctx context.Context, school *models.School) error {
	return r.db.WithContext(ctx).Save(school).Error
}

func (r *schoolRepository) Delete(ctx context.Context, id, ownerID uint) error {
	return r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.School{}, id).Error
}

// DriverRepository defines the interface for driver data access
type DriverRepository interface {
	FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Driver, error)
	ListByOwner(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Driver, int64, error)
	Create(ctx context.Context, driver *models.Driver) error
	Update(ctx context.Context, driver *models.Driver) error
	Delete(ctx context.Context, id, ownerID uint) error
}

type driverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) DriverRepository {
	return &driverRepository{db: db}
}

func (r *driverRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&driver, id).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *driverRepository) ListByOwner(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Driver, int64, error) {
	var drivers []models.Driver
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Driver{}).Where("owner_id = ?", ownerID)
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("full_name ILIKE ? OR license_number ILIKE ?", search, search)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.apply(db).Find(&drivers).Error
	return drivers, total, err
}

func (r *driverRepository) Create(ctx context.Context, driver *models.Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *driverRepository) Update(ctx context.Context, driver *models.Driver) error {
	return r.db.WithContext(ctx).Save(driver).Error
}

func (r *driverRepository) Delete(ctx context.Context, id, ownerID uint) error {
	return r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Driver{}, id).Error
}

// VanRepository defines the interface for van data access
type VanRepository interface {
	FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Van, error)
	ListByOwner(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Van, int64, error)
	Create(ctx context.Context, van *models.Van) error
	Update(ctx context.Context, van *models.Van) error
	Delete(ctx context.Context, id, ownerID uint) error
}

type vanRepository struct {
	db *gorm.DB
}

func NewVanRepository(db *gorm.DB) VanRepository {
	return &vanRepository{db: db}
}

func (r *vanRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Van, error) {
	var van models.Van
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&van, id).Error
	if err != nil {
		return nil, err
	}
	return &van, nil
}

func (r *vanRepository) ListByOwner(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Van, int64, error) {
	var vans []models.Van
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Van{}).Where("owner_id = ?", ownerID)
	if query.Search != "" {
		db = db.Where("plate ILIKE ?", "%"+query.Search+"%")
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.apply(db).Find(&vans).Error
	return vans, total, err
}

func (r *vanRepository) Create(ctx context.Context, van *models.Van) error {
	return r.db.WithContext(ctx).Create(van).Error
}

func (r *vanRepository) Update(ctx context.Context, van *models.Van) error {
	return r.db.WithContext(ctx).Save(van).Error
}

func (r *vanRepository) Delete(ctx context.Context, id, ownerID uint) error {
	return r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Van{}, id).Error
}

// RouteRepository defines the interface for route data access
type RouteRepository interface {
	FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Route, error)
	ListByOwner(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Route, int64, error)
	Create(ctx context.Context, route *models.Route) error
	Update(ctx context.Context, route *models.Route) error
	Delete(ctx context.Context, id, ownerID uint) error
	ReplaceStudents(ctx context.Context, route *models.Route, students []models.Student) error
}

type routeRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) RouteRepository {
	return &routeRepository{db: db}
}

func (r *routeRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Route, error) {
	var route models.Route
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Preload("School").
		Preload("Driver").
		Preload("Van").
		Preload("Students").
		First(&route, id).Error
	if err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *routeRepository) ListByOwner(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Route, int64, error) {
	var routes []models.Route
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Route{}).Where("owner_id = ?", ownerID)
	if query.Search != "" {
		db = db.Where("name ILIKE ?", "%"+query.Search+"%")
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.apply(db).
		Preload("School").
		Preload("Driver").
		Preload("Van").
		Find(&routes).Error
	return routes, total, err
}

func (r *routeRepository) Create(ctx context.Context, route *models.Route) error {
	return r.db.WithContext(ctx).Create(route).Error
}

func (r *routeRepository) Update(ctx context.Context, route *models.Route) error {
	return r.db.WithContext(ctx).Omit("Students").Save(route).Error
}

func (r *routeRepository) Delete(ctx context.Context, id, ownerID uint) error {
	return r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Route{}, id).Error
}

// ReplaceStudents swaps the route's student assignment for the given set.
func (r *routeRepository) ReplaceStudents(ctx context.Context, route *models.Route, students []models.Student) error {
	return r.db.WithContext(ctx).Model(route).Association("Students").Replace(students)
}

// StudentRepository defines the interface for student data access
type StudentRepository interface {
	FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Student, error)
	FindByIDsAndOwner(ctx context.Context, ids []uint, ownerID uint) ([]models.Student, error)
	ListByOwner(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Student, int64, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id, ownerID uint) error
}

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Preload("School").
		Preload("PrimaryGuardian").
		Preload("SecondaryGuardian").
		First(&student, id).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) FindByIDsAndOwner(ctx context.Context, ids []uint, ownerID uint) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Find(&students).Error
	return students, err
}

func (r *studentRepository) ListByOwner(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Student, int64, error) {
	var students []models.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Student{}).Where("owner_id = ?", ownerID)
	if query.Search != "" {
		db = db.Where("full_name ILIKE ?", "%"+query.Search+"%")
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.apply(db).
		Preload("School").
		Preload("PrimaryGuardian").
		Find(&students).Error
	return students, total, err
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Omit("Routes").Save(student).Error
}

func (r *studentRepository) Delete(ctx context.Context, id, ownerID uint) error {
	return r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Student{}, id).Error
}

// GuardianRepository defines the interface for guardian data access
type GuardianRepository interface {
	FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Guardian, error)
	ListByOwner(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Guardian, int64, error)
	Create(ctx context.Context, guardian *models.Guardian) error
	Update(ctx context.Context, guardian *models.Guardian) error
	Delete(ctx context.Context, id, ownerID uint) error
}

type guardianRepository struct {
	db *gorm.DB
}

func NewGuardianRepository(db *gorm.DB) GuardianRepository {
	return &guardianRepository{db: db}
}

func (r *guardianRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Guardian, error) {
	var guardian models.Guardian
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&guardian, id).Error
	if err != nil {
		return nil, err
	}
	return &guardian, nil
}

func (r *guardianRepository) ListByOwner(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Guardian, int64, error) {
	var guardians []models.Guardian
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Guardian{}).Where("owner_id = ?", ownerID)
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("full_name ILIKE ? OR document ILIKE ?", search, search)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.apply(db).Find(&guardians).Error
	return guardians, total, err
}

func (r *guardianRepository) Create(ctx context.Context, guardian *models.Guardian) error {
	return r.db.WithContext(ctx).Create(guardian).Error
}

func (r *guardianRepository) Update(ctx context.Context, guardian *models.Guardian) error {
	return r.db.WithContext(ctx).Save(guardian).Error
}

func (r *guardianRepository) Delete(ctx context.Context, id, ownerID uint) error {
	return r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Guardian{}, id).Error
}
