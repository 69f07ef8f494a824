//go:build integration

package locker

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLockerIntegration(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_ADDR")})
	defer client.Close()

	name := "leads-job:" + uuid.NewString()
	holder := NewRedisLocker(client, name, 10*time.Second)
	contender := NewRedisLocker(client, name, 10*time.Second)

	require.NoError(t, holder.Lock(context.TODO()))
	assert.ErrorIs(t, contender.Lock(context.TODO()), ErrNotAcquired)

	require.NoError(t, holder.Unlock(context.TODO()))
	require.NoError(t, contender.Lock(context.TODO()))
	require.NoError(t, contender.Unlock(context.TODO()))
}
