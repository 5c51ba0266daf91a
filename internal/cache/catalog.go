package cache

import (
	"context"
	"time"

	"github.com/flexprice/lifecycle/internal/domain/billingcycle"
	"github.com/flexprice/lifecycle/internal/domain/plan"
)

// Plans and billing cycles are immutable catalog data, so a read-through
// cache in front of the repository never serves a stale version of a row
// that exists. Lookups that fail are not cached.

type cachedPlanRepository struct {
	inner plan.Repository
	cache Cache
	ttl   time.Duration
}

// NewCachedPlanRepository wraps inner with a read-through cache
func NewCachedPlanRepository(inner plan.Repository, c Cache, ttl time.Duration) plan.Repository {
	return &cachedPlanRepository{inner: inner, cache: c, ttl: ttl}
}

func (r *cachedPlanRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	return readThrough(ctx, r.cache, "plan", GenerateKey(PrefixPlan, id), r.ttl,
		func(ctx context.Context) (*plan.Plan, error) {
			return r.inner.Get(ctx, id)
		})
}

type cachedBillingCycleRepository struct {
	inner billingcycle.Repository
	cache Cache
	ttl   time.Duration
}

// NewCachedBillingCycleRepository wraps inner with a read-through cache
func NewCachedBillingCycleRepository(inner billingcycle.Repository, c Cache, ttl time.Duration) billingcycle.Repository {
	return &cachedBillingCycleRepository{inner: inner, cache: c, ttl: ttl}
}

func (r *cachedBillingCycleRepository) Get(ctx context.Context, id string) (*billingcycle.BillingCycle, error) {
	return readThrough(ctx, r.cache, "billing_cycle", GenerateKey(PrefixBillingCycle, id), r.ttl,
		func(ctx context.Context) (*billingcycle.BillingCycle, error) {
			return r.inner.Get(ctx, id)
		})
}
