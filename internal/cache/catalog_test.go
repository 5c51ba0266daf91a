package cache

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/domain/billingcycle"
	"github.com/flexprice/lifecycle/internal/domain/plan"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/testutil"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(enabled bool) *InMemoryCache {
	return NewInMemoryCache(&config.Configuration{
		Cache: config.CacheConfig{Enabled: enabled, TTL: time.Minute},
	})
}

func TestCachedPlanRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewInMemoryPlanStore()
	require.NoError(t, store.Seed(ctx, &plan.Plan{
		ID:             "plan_basic",
		Name:           "Basic",
		Price:          decimal.NewFromInt(300),
		BillingCycleID: "cycle_30d",
	}))

	repo := NewCachedPlanRepository(store, newCache(true), 0)

	first, err := repo.Get(ctx, "plan_basic")
	require.NoError(t, err)
	first.Name = "mutated by caller"

	second, err := repo.Get(ctx, "plan_basic")
	require.NoError(t, err)
	assert.Equal(t, "Basic", second.Name)
	assert.Equal(t, 1, store.Gets())

	_, err = repo.Get(ctx, "plan_missing")
	assert.True(t, ierr.IsNotFound(err))
	_, err = repo.Get(ctx, "plan_missing")
	assert.True(t, ierr.IsNotFound(err))
	assert.Equal(t, 3, store.Gets())
}

func TestCachedBillingCycleRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewInMemoryBillingCycleStore()
	require.NoError(t, store.Seed(ctx, &billingcycle.BillingCycle{
		ID:           "cycle_30d",
		Duration:     30,
		DurationUnit: types.DurationUnitDay,
	}))

	c := newCache(true)
	repo := NewCachedBillingCycleRepository(store, c, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := repo.Get(ctx, "cycle_30d")
		require.NoError(t, err)
		assert.Equal(t, 30, got.Duration)
	}
	assert.Equal(t, 1, store.Gets())

	c.DeleteByPrefix(ctx, PrefixBillingCycle)
	_, err := repo.Get(ctx, "cycle_30d")
	require.NoError(t, err)
	assert.Equal(t, 2, store.Gets())
}

func TestDisabledCacheAlwaysReadsThrough(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewInMemoryBillingCycleStore()
	require.NoError(t, store.Seed(ctx, &billingcycle.BillingCycle{
		ID:           "cycle_1m",
		Duration:     1,
		DurationUnit: types.DurationUnitMonth,
	}))

	c := newCache(false)
	repo := NewCachedBillingCycleRepository(store, c, 0)
	for i := 0; i < 2; i++ {
		_, err := repo.Get(ctx, "cycle_1m")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, store.Gets())
	assert.Zero(t, c.ItemCount())
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "plan:v1:plan_basic", GenerateKey(PrefixPlan, "plan_basic"))
	assert.Equal(t, "billing_cycle:v1:cycle_30d:2", GenerateKey(PrefixBillingCycle, "cycle_30d", 2))
}
