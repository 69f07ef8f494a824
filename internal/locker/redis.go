package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

type RedisLocker struct {
	redisMutex *redsync.Mutex
}

func NewRedisLocker(redisClient *redis.Client, name string, expiry time.Duration) *RedisLocker {
	pool := goredis.NewPool(redisClient)
	rs := redsync.New(pool)

	opts := []redsync.Option{redsync.WithTries(1)}
	if expiry > 0 {
		opts = append(opts, redsync.WithExpiry(expiry))
	}

	return &RedisLocker{
		redisMutex: rs.NewMutex(name, opts...),
	}
}

func (l *RedisLocker) Lock(ctx context.Context) error {
	err := l.redisMutex.TryLockContext(ctx)
	if err == nil {
		return nil
	}

	var taken *redsync.ErrTaken
	if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
		return ErrNotAcquired
	}

	return fmt.Errorf("failed to acquire redis lock %s: %w", l.redisMutex.Name(), err)
}

func (l *RedisLocker) Unlock(ctx context.Context) error {
	if _, err := l.redisMutex.UnlockContext(ctx); err != nil {
		return fmt.Errorf("failed to release redis lock %s: %w", l.redisMutex.Name(), err)
	}
	return nil
}
