package service

import (
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/domain/billingcycle"
	"github.com/flexprice/lifecycle/internal/domain/plan"
	"github.com/flexprice/lifecycle/internal/domain/proration"
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	"github.com/flexprice/lifecycle/internal/lock"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/publisher"
	"github.com/flexprice/lifecycle/internal/sentry"
	"github.com/flexprice/lifecycle/internal/types"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Clock  types.Clock

	// Repositories
	SubRepo          subscription.Repository
	PlanRepo         plan.Repository
	BillingCycleRepo billingcycle.Repository

	ProrationCalculator proration.Calculator

	// Trigger side dependencies, only used by the lifecycle job service
	Locker         lock.Locker
	EventPublisher publisher.EventPublisher
	Sentry         *sentry.Service
}

// NewServiceParams creates a new ServiceParams instance
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	clock types.Clock,
	subRepo subscription.Repository,
	planRepo plan.Repository,
	billingCycleRepo billingcycle.Repository,
	prorationCalculator proration.Calculator,
	locker lock.Locker,
	eventPublisher publisher.EventPublisher,
	sentry *sentry.Service,
) ServiceParams {
	return ServiceParams{
		Logger:              logger,
		Config:              config,
		Clock:               clock,
		SubRepo:             subRepo,
		PlanRepo:            planRepo,
		BillingCycleRepo:    billingCycleRepo,
		ProrationCalculator: prorationCalculator,
		Locker:              locker,
		EventPublisher:      eventPublisher,
		Sentry:              sentry,
	}
}

func (p ServiceParams) today() types.Date {
	return types.Today(p.Clock)
}

func (p ServiceParams) calculator() proration.Calculator {
	if p.ProrationCalculator == nil {
		return proration.NewCalculator()
	}
	return p.ProrationCalculator
}
