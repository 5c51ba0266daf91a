package internal

import (
	"fmt"

	"github.com/flexprice/lifecycle/internal/cache"
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/domain/proration"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/postgres"
	"github.com/flexprice/lifecycle/internal/repository"
	"github.com/flexprice/lifecycle/internal/service"
	"github.com/flexprice/lifecycle/internal/types"
)

// scriptEnv is the subset of the server graph that operator scripts need.
type scriptEnv struct {
	log             *logger.Logger
	db              *postgres.DB
	subscriptionSvc service.SubscriptionService
}

func newScriptEnv() (*scriptEnv, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := postgres.NewDB(cfg, log, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	c := cache.Initialize(cfg, log)
	params := service.ServiceParams{
		Logger:              log,
		Config:              cfg,
		Clock:               types.SystemClock{},
		SubRepo:             repository.NewSubscriptionRepository(db, log),
		PlanRepo:            repository.NewPlanRepository(db, c, cfg, log),
		BillingCycleRepo:    repository.NewBillingCycleRepository(db, c, cfg, log),
		ProrationCalculator: proration.NewCalculator(),
	}

	return &scriptEnv{
		log:             log,
		db:              db,
		subscriptionSvc: service.NewSubscriptionService(params),
	}, nil
}

func (e *scriptEnv) close() {
	e.db.Close()
}
