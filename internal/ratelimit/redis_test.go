package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, limit, window, nil), mr
}

func TestAllowWithinLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "user-a")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}

	ok, err := limiter.Allow(ctx, "user-a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "user-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWindowExpires(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	ok, _ := limiter.Allow(ctx, "user-a")
	require.True(t, ok)
	ok, _ = limiter.Allow(ctx, "user-a")
	require.False(t, ok)

	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"user-a"))
	mr.FastForward(61 * time.Second)

	ok, err := limiter.Allow(ctx, "user-a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFailOpenWhenRedisDown(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, time.Minute)
	mr.Close()

	ok, err := limiter.Allow(context.Background(), "user-a")
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestDisabledLimit(t *testing.T) {
	limiter, mr := newTestLimiter(t, 0, time.Minute)

	ok, err := limiter.Allow(context.Background(), "user-a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, mr.Exists(keyPrefix+"user-a"))
}
