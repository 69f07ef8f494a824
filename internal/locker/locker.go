package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DriverNone  = ""
	DriverFS    = "fs"
	DriverRedis = "redis"
)

var ErrNotAcquired = errors.New("lock not acquired: another run holds it")

type Locker interface {
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
}

type Config struct {
	Driver    string
	Path      string
	RedisAddr string
	Expiry    time.Duration
}

// New returns the locker for the configured driver, keyed by job name.
func New(cfg Config, job string) (Locker, error) {
	switch cfg.Driver {
	case DriverNone:
		return Noop{}, nil
	case DriverFS:
		return NewFSLocker(cfg.Path), nil
	case DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return NewRedisLocker(client, "leads-job:"+job, cfg.Expiry), nil
	default:
		return nil, fmt.Errorf("unknown lock driver %q", cfg.Driver)
	}
}

type Noop struct{}

func (Noop) Lock(context.Context) error   { return nil }
func (Noop) Unlock(context.Context) error { return nil }
