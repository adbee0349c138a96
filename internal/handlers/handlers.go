package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vanroute/vanroute-api/internal/jobs"
	"github.com/vanroute/vanroute-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health   *HealthHandler
	Auth     *AuthHandler
	Contract *ContractHandler
	Payment  *PaymentHandler
	School   *SchoolHandler
	Driver   *DriverHandler
	Van      *VanHandler
	Route    *RouteHandler
	Student  *StudentHandler
	Guardian *GuardianHandler
	Task     *TaskHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, worker *jobs.Worker) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(),
		Auth:     NewAuthHandler(svcs.Auth),
		Contract: NewContractHandler(svcs.Contract),
		Payment:  NewPaymentHandler(svcs.Payment, worker),
		School:   NewSchoolHandler(svcs.Registry),
		Driver:   NewDriverHandler(svcs.Registry),
		Van:      NewVanHandler(svcs.Registry),
		Route:    NewRouteHandler(svcs.Registry),
		Student:  NewStudentHandler(svcs.Registry),
		Guardian: NewGuardianHandler(svcs.Registry),
		Task:     NewTaskHandler(svcs.Payment, worker),
	}
}

// respondServiceError maps domain errors onto HTTP status codes. Validation
// failures that are not sentinel errors fall through as 422.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPersistenceConflict), errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidDateRange), errors.Is(err, services.ErrInvalidDueDay):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	}
}
