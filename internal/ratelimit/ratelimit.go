// Package ratelimit provides a Redis-backed best-effort limiter, adapted
// from the teacher's REST middleware rate limiter into a plain, transport-
// agnostic component. cmd/server uses it to bound SubmitReview calls per
// workflow.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window counter with a block period once the window's
// limit is exceeded, same algorithm as the teacher's RedisRateLimiter.
type Limiter struct {
	client        redis.UniversalClient
	keyPrefix     string
	limit         int
	window        time.Duration
	blockDuration time.Duration
}

// New builds a Limiter over an established Redis client.
func New(client redis.UniversalClient, keyPrefix string, limit int, window, blockDuration time.Duration) *Limiter {
	return &Limiter{
		client:        client,
		keyPrefix:     keyPrefix,
		limit:         limit,
		window:        window,
		blockDuration: blockDuration,
	}
}

// Allow reports whether a call keyed by key (a workflow ID, typically)
// should proceed, and if not, how many seconds remain before it may retry.
// On Redis error, callers should treat the call as allowed rather than
// fail the request — a rate limiter must never become a hard dependency.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int, error) {
	blockKey := l.keyPrefix + "block:" + key
	countKey := l.keyPrefix + "count:" + key

	blocked, err := l.client.Exists(ctx, blockKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis exists error: %w", err)
	}
	if blocked > 0 {
		ttl, err := l.client.TTL(ctx, blockKey).Result()
		if err != nil {
			return false, int(l.blockDuration.Seconds()), nil
		}
		return false, int(ttl.Seconds()), nil
	}

	count, err := l.client.Incr(ctx, countKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis incr error: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, countKey, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("redis expire error: %w", err)
		}
	}

	if int(count) > l.limit {
		if err := l.client.Set(ctx, blockKey, "1", l.blockDuration).Err(); err != nil {
			return false, 0, fmt.Errorf("redis set block error: %w", err)
		}
		return false, int(l.blockDuration.Seconds()), nil
	}

	return true, 0, nil
}

// Reset clears the window and any block for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	blockKey := l.keyPrefix + "block:" + key
	countKey := l.keyPrefix + "count:" + key

	pipe := l.client.Pipeline()
	pipe.Del(ctx, blockKey)
	pipe.Del(ctx, countKey)
	_, err := pipe.Exec(ctx)
	return err
}
