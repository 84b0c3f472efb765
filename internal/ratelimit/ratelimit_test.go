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

func newTestLimiter(t *testing.T, limit int, window, block time.Duration) (*Limiter, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	return New(client, "ratelimit:test:", limit, window, block), s
}

func TestLimiter_AllowsUpToLimitThenBlocks(t *testing.T) {
	l, s := newTestLimiter(t, 3, time.Minute, time.Minute)
	defer s.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := l.Allow(ctx, "wf-1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, retryAfter, err := l.Allow(ctx, "wf-1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, 0)
}

func TestLimiter_DistinctKeysDoNotInterfere(t *testing.T) {
	l, s := newTestLimiter(t, 1, time.Minute, time.Minute)
	defer s.Close()
	ctx := context.Background()

	allowed, _, err := l.Allow(ctx, "wf-1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = l.Allow(ctx, "wf-2")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLimiter_ResetClearsBlock(t *testing.T) {
	l, s := newTestLimiter(t, 1, time.Minute, time.Minute)
	defer s.Close()
	ctx := context.Background()

	_, _, err := l.Allow(ctx, "wf-1")
	require.NoError(t, err)
	allowed, _, err := l.Allow(ctx, "wf-1")
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, l.Reset(ctx, "wf-1"))

	allowed, _, err = l.Allow(ctx, "wf-1")
	require.NoError(t, err)
	assert.True(t, allowed)
}
