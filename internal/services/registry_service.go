package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vanroute/vanroute-api/internal/models"
	"github.com/vanroute/vanroute-api/internal/repository"
)

// RegistryService covers the fleet registry: schools, drivers, vans, routes,
// students and guardians. Plain tenant-scoped CRUD plus route-student
// assignment; the billing engine consumes these entities but never mutates
// them.
type RegistryService struct {
	repos *repository.Repositories
}

// NewRegistryService creates a new registry service
func NewRegistryService(repos *repository.Repositories) *RegistryService {
	return &RegistryService{repos: repos}
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Schools

func (s *RegistryService) FindSchool(ctx context.Context, ownerID, id uint) (*models.School, error) {
	school, err := s.repos.School.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return school, nil
}

func (s *RegistryService) ListSchools(ctx context.Context, ownerID uint, query *repository.ListQuery) ([]models.School, int64, error) {
	return s.repos.School.ListByOwner(ctx, ownerID, query)
}

func (s *RegistryService) CreateSchool(ctx context.Context, school *models.School) error {
	return s.repos.School.Create(ctx, school)
}

func (s *RegistryService) UpdateSchool(ctx context.Context, school *models.School) error {
	if _, err := s.repos.School.FindByIDAndOwner(ctx, school.ID, school.OwnerID); err != nil {
		return notFoundOr(err)
	}
	return s.repos.School.Update(ctx, school)
}

func (s *RegistryService) DeleteSchool(ctx context.Context, ownerID, id uint) error {
	return s.repos.School.Delete(ctx, id, ownerID)
}

// Drivers

func (s *RegistryService) FindDriver(ctx context.Context, ownerID, id uint) (*models.Driver, error) {
	driver, err := s.repos.Driver.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return driver, nil
}

func (s *RegistryService) ListDrivers(ctx context.Context, ownerID uint, query *repository.ListQuery) ([]models.Driver, int64, error) {
	return s.repos.Driver.ListByOwner(ctx, ownerID, query)
}

func (s *RegistryService) CreateDriver(ctx context.Context, driver *models.Driver) error {
	return s.repos.Driver.Create(ctx, driver)
}

func (s *RegistryService) UpdateDriver(ctx context.Context, driver *models.Driver) error {
	if _, err := s.repos.Driver.FindByIDAndOwner(ctx, driver.ID, driver.OwnerID); err != nil {
		return notFoundOr(err)
	}
	return s.repos.Driver.Update(ctx, driver)
}

func (s *RegistryService) DeleteDriver(ctx context.Context, ownerID, id uint) error {
	return s.repos.Driver.Delete(ctx, id, ownerID)
}

// Vans

func (s *RegistryService) FindVan(ctx context.Context, ownerID, id uint) (*models.Van, error) {
	van, err := s.repos.Van.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return van, nil
}

func (s *RegistryService) ListVans(ctx context.Context, ownerID uint, query *repository.ListQuery) ([]models.Van, int64, error) {
	return s.repos.Van.ListByOwner(ctx, ownerID, query)
}

func (s *RegistryService) CreateVan(ctx context.Context, van *models.Van) error {
	return s.repos.Van.Create(ctx, van)
}

func (s *RegistryService) UpdateVan(ctx context.Context, van *models.Van) error {
	if _, err := s.repos.Van.FindByIDAndOwner(ctx, van.ID, van.OwnerID); err != nil {
		return notFoundOr(err)
	}
	return s.repos.Van.Update(ctx, van)
}

func (s *RegistryService) DeleteVan(ctx context.Context, ownerID, id uint) error {
	return s.repos.Van.Delete(ctx, id, ownerID)
}

// Routes

func (s *RegistryService) FindRoute(ctx context.Context, ownerID, id uint) (*models.Route, error) {
	route, err := s.repos.Route.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return route, nil
}

func (s *RegistryService) ListRoutes(ctx context.Context, ownerID uint, query *repository.ListQuery) ([]models.Route, int64, error) {
	return s.repos.Route.ListByOwner(ctx, ownerID, query)
}

// CreateRoute validates that school, driver and van all belong to the route's
// tenant before persisting.
func (s *RegistryService) CreateRoute(ctx context.Context, route *models.Route) error {
	if err := s.validateRouteParts(ctx, route); err != nil {
		return err
	}
	return s.repos.Route.Create(ctx, route)
}

func (s *RegistryService) UpdateRoute(ctx context.Context, route *models.Route) error {
	if _, err := s.repos.Route.FindByIDAndOwner(ctx, route.ID, route.OwnerID); err != nil {
		return notFoundOr(err)
	}
	if err := s.validateRouteParts(ctx, route); err != nil {
		return err
	}
	return s.repos.Route.Update(ctx, route)
}

func (s *RegistryService) DeleteRoute(ctx context.Context, ownerID, id uint) error {
	return s.repos.Route.Delete(ctx, id, ownerID)
}

// AssignStudents replaces the set of students riding a route. Only the
// tenant's own students can be assigned.
func (s *RegistryService) AssignStudents(ctx context.Context, ownerID, routeID uint, studentIDs []uint) (*models.Route, error) {
	route, err := s.repos.Route.FindByIDAndOwner(ctx, routeID, ownerID)
	if err != nil {
		return nil, notFoundOr(err)
	}

	students, err := s.repos.Student.FindByIDsAndOwner(ctx, studentIDs, ownerID)
	if err != nil {
		return nil, err
	}
	if len(students) != len(studentIDs) {
		return nil, errors.New("um ou mais alunos não pertencem a este operador")
	}

	if err := s.repos.Route.ReplaceStudents(ctx, route, students); err != nil {
		return nil, err
	}
	route.Students = students
	return route, nil
}

func (s *RegistryService) validateRouteParts(ctx context.Context, route *models.Route) error {
	if _, err := s.repos.School.FindByIDAndOwner(ctx, route.SchoolID, route.OwnerID); err != nil {
		return errors.New("escola inválida para este operador")
	}
	if _, err := s.repos.Driver.FindByIDAndOwner(ctx, route.DriverID, route.OwnerID); err != nil {
		return errors.New("motorista inválido para este operador")
	}
	if _, err := s.repos.Van.FindByIDAndOwner(ctx, route.VanID, route.OwnerID); err != nil {
		return errors.New("van inválida para este operador")
	}
	return nil
}

// Students

func (s *RegistryService) FindStudent(ctx context.Context, ownerID, id uint) (*models.Student, error) {
	student, err := s.repos.Student.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return student, nil
}

func (s *RegistryService) ListStudents(ctx context.Context, ownerID uint, query *repository.ListQuery) ([]models.Student, int64, error) {
	return s.repos.Student.ListByOwner(ctx, ownerID, query)
}

func (s *RegistryService) CreateStudent(ctx context.Context, student *models.Student) error {
	if err := s.validateStudentParts(ctx, student); err != nil {
		return err
	}
	return s.repos.Student.Create(ctx, student)
}

func (s *RegistryService) UpdateStudent(ctx context.Context, student *models.Student) error {
	if _, err := s.repos.Student.FindByIDAndOwner(ctx, student.ID, student.OwnerID); err != nil {
		return notFoundOr(err)
	}
	if err := s.validateStudentParts(ctx, student); err != nil {
		return err
	}
	return s.repos.Student.Update(ctx, student)
}

func (s *RegistryService) DeleteStudent(ctx context.Context, ownerID, id uint) error {
	return s.repos.Student.Delete(ctx, id, ownerID)
}

func (s *RegistryService) validateStudentParts(ctx context.Context, student *models.Student) error {
	if _, err := s.repos.School.FindByIDAndOwner(ctx, student.SchoolID, student.OwnerID); err != nil {
		return errors.New("escola inválida para este operador")
	}
	if _, err := s.repos.Guardian.FindByIDAndOwner(ctx, student.PrimaryGuardianID, student.OwnerID); err != nil {
		return errors.New("responsável principal inválido para este operador")
	}
	if student.SecondaryGuardianID != nil {
		if _, err := s.repos.Guardian.FindByIDAndOwner(ctx, *student.SecondaryGuardianID, student.OwnerID); err != nil {
			return errors.New("responsável secundário inválido para este operador")
		}
	}
	return nil
}

// Guardians

func (s *RegistryService) FindGuardian(ctx context.Context, ownerID, id uint) (*models.Guardian, error) {
	guardian, err := s.repos.Guardian.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return guardian, nil
}

func (s *RegistryService) ListGuardians(ctx context.Context, ownerID uint, query *repository.ListQuery) ([]models.Guardian, int64, error) {
	return s.repos.Guardian.ListByOwner(ctx, ownerID, query)
}

func (s *RegistryService) CreateGuardian(ctx context.Context, guardian *models.Guardian) error {
	return s.repos.Guardian.Create(ctx, guardian)
}

func (s *RegistryService) UpdateGuardian(ctx context.Context, guardian *models.Guardian) error {
	if _, err := s.repos.Guardian.FindByIDAndOwner(ctx, guardian.ID, guardian.OwnerID); err != nil {
		return notFoundOr(err)
	}
	return s.repos.Guardian.Update(ctx, guardian)
}

func (s *RegistryService) DeleteGuardian(ctx context.Context, ownerID, id uint) error {
	return s.repos.Guardian.Delete(ctx, id, ownerID)
}
