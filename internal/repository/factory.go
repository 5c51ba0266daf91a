package repository

import (
	"github.com/flexprice/lifecycle/internal/cache"
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/domain/billingcycle"
	"github.com/flexprice/lifecycle/internal/domain/plan"
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/lock"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/postgres"
	"github.com/flexprice/lifecycle/internal/redis"
	postgresRepo "github.com/flexprice/lifecycle/internal/repository/postgres"
	"github.com/flexprice/lifecycle/internal/types"
)

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

// NewPlanRepository returns the plan catalog, behind the cache when it is enabled
func NewPlanRepository(db *postgres.DB, c cache.Cache, cfg *config.Configuration, logger *logger.Logger) plan.Repository {
	repo := postgresRepo.NewPlanRepository(db, logger)
	if !cfg.Cache.Enabled {
		return repo
	}
	return cache.NewCachedPlanRepository(repo, c, cfg.Cache.TTL)
}

// NewBillingCycleRepository returns the billing cycle catalog, behind the cache when it is enabled
func NewBillingCycleRepository(db *postgres.DB, c cache.Cache, cfg *config.Configuration, logger *logger.Logger) billingcycle.Repository {
	repo := postgresRepo.NewBillingCycleRepository(db, logger)
	if !cfg.Cache.Enabled {
		return repo
	}
	return cache.NewCachedBillingCycleRepository(repo, c, cfg.Cache.TTL)
}

// NewLocker returns the run lock backend named by sweeper.lock_backend.
// The redis connection is only opened when that backend is selected.
func NewLocker(cfg *config.Configuration, db *postgres.DB, logger *logger.Logger) (lock.Locker, error) {
	switch cfg.Sweeper.LockBackend {
	case types.LockBackendPostgres:
		return lock.NewPostgresLocker(db, logger), nil
	case types.LockBackendRedis, "":
		client, err := redis.NewClient(cfg, logger)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to connect to the redis lock backend").
				Mark(ierr.ErrSystem)
		}
		return lock.NewRedisLocker(client.GetClient(), logger), nil
	default:
		return nil, ierr.NewError("unknown lock backend").
			WithHintf("Unsupported lock backend %s", cfg.Sweeper.LockBackend).
			Mark(ierr.ErrValidation)
	}
}
