package lock

import (
	"context"
	"time"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only when it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX.
type RedisLocker struct {
	rdb    redis.UniversalClient
	logger *logger.Logger
}

func NewRedisLocker(rdb redis.UniversalClient, logger *logger.Logger) *RedisLocker {
	return &RedisLocker{rdb: rdb, logger: logger}
}

func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	token := types.GenerateUUID()

	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to acquire run lock").
			WithReportableDetails(map[string]any{"lock_key": key}).
			Mark(ierr.ErrSystem)
	}
	if !ok {
		return nil, NewLockHeldError(key)
	}

	l.logger.Debugw("acquired lock", "lock_key", key, "ttl", ttl.String())
	return &redisLock{locker: l, key: key, token: token}, nil
}

type redisLock struct {
	locker *RedisLocker
	key    string
	token  string
}

func (l *redisLock) Key() string {
	return l.key
}

func (l *redisLock) Release(ctx context.Context) error {
	released, err := releaseScript.Run(ctx, l.locker.rdb, []string{l.key}, l.token).Int()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to release run lock").
			WithReportableDetails(map[string]any{"lock_key": l.key}).
			Mark(ierr.ErrSystem)
	}
	if released == 0 {
		l.locker.logger.Warnw("lock expired before release", "lock_key", l.key)
	}
	return nil
}
