package lock

import (
	"context"
	"os"
	"testing"
	"time"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server when LIFECYCLE_TEST_REDIS_ADDR is set.
func newTestLocker(t *testing.T) (*RedisLocker, *redis.Client) {
	addr := os.Getenv("LIFECYCLE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LIFECYCLE_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisLocker(rdb, logger.NewNoopLogger()), rdb
}

func TestRedisLocker_Exclusive(t *testing.T) {
	locker, rdb := newTestLocker(t)
	ctx := context.Background()
	key := SweepKey("test_" + types.GenerateUUID())
	t.Cleanup(func() { rdb.Del(ctx, key) })

	first, err := locker.TryAcquire(ctx, key, time.Minute)
	require.NoError(t, err)

	_, err = locker.TryAcquire(ctx, key, time.Minute)
	assert.True(t, ierr.IsLockHeld(err))

	require.NoError(t, first.Release(ctx))

	second, err := locker.TryAcquire(ctx, key, time.Minute)
	require.NoError(t, err)
	require.NoError(t, second.Release(ctx))
}

func TestRedisLocker_ReleaseDoesNotStealForeignLock(t *testing.T) {
	locker, rdb := newTestLocker(t)
	ctx := context.Background()
	key := SweepKey("test_" + types.GenerateUUID())
	t.Cleanup(func() { rdb.Del(ctx, key) })

	stale, err := locker.TryAcquire(ctx, key, time.Minute)
	require.NoError(t, err)

	// simulate expiry followed by another holder
	require.NoError(t, rdb.Set(ctx, key, "other-holder", time.Minute).Err())

	require.NoError(t, stale.Release(ctx))
	got, err := rdb.Get(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "other-holder", got)
}

func TestSweepKey(t *testing.T) {
	assert.Equal(t, "lifecycle:sweep:renewals", SweepKey("renewals"))
}
