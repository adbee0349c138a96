package services

import (
	"gorm.io/gorm"

	"github.com/vanroute/vanroute-api/internal/billing"
	"github.com/vanroute/vanroute-api/internal/config"
	"github.com/vanroute/vanroute-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Auth     *AuthService
	Registry *RegistryService
	Contract *ContractService
	Payment  *PaymentService
	Schedule *ScheduleService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, cfg *config.Config, db *gorm.DB) *Services {
	clock := billing.SystemClock{}
	scheduleSvc := NewScheduleService(clock)

	return &Services{
		Auth:     NewAuthService(repos.User, cfg),
		Registry: NewRegistryService(repos),
		Contract: NewContractService(db, repos, scheduleSvc),
		Payment:  NewPaymentService(repos.Payment, repos.Contract, clock),
		Schedule: scheduleSvc,
	}
}
