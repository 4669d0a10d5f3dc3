package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultWindow is the sliding window length
const DefaultWindow = time.Minute

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter is used to enforce per-key rate limits.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// NoopLimiter allows all requests.
type NoopLimiter struct{}

func NewNoopLimiter() *NoopLimiter {
	return &NoopLimiter{}
}

func (l *NoopLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	return Decision{Allowed: true}, nil
}

// RateLimiter implements distributed sliding-window rate limiting using
// Redis sorted sets: one member per accepted request, scored by its
// timestamp in milliseconds.
type RateLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window.
// A limit of zero or less disables limiting.
func NewRateLimiter(client redis.UniversalClient, limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &RateLimiter{
		client: client,
		prefix: "ratelimit",
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (rl *RateLimiter) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", rl.prefix, key)
}

// Allow records one request for key if it fits in the window
func (rl *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if rl.limit <= 0 {
		return Decision{Allowed: true}, nil
	}

	rkey := rl.redisKey(key)
	now := rl.now()
	windowStart := now.Add(-rl.window)
	member := uuid.NewString()

	pipe := rl.client.TxPipeline()

	// Remove old entries outside the window
	pipe.ZRemRangeByScore(ctx, rkey, "0", strconv.FormatInt(windowStart.UnixMilli(), 10))

	// Count requests already in the window, then add this one
	countCmd := pipe.ZCard(ctx, rkey)
	pipe.ZAdd(ctx, rkey, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	oldestCmd := pipe.ZRangeWithScores(ctx, rkey, 0, 0)
	pipe.Expire(ctx, rkey, 2*rl.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := int(countCmd.Val())
	resetAt := now.Add(rl.window)
	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		resetAt = time.UnixMilli(int64(oldest[0].Score)).Add(rl.window)
	}

	if count >= rl.limit {
		// Rejected requests do not consume the window
		if err := rl.client.ZRem(ctx, rkey, member).Err(); err != nil {
			return Decision{}, fmt.Errorf("failed to roll back rejected request: %w", err)
		}
		return Decision{Allowed: false, Limit: rl.limit, Remaining: 0, ResetAt: resetAt}, nil
	}

	return Decision{
		Allowed:   true,
		Limit:     rl.limit,
		Remaining: rl.limit - count - 1,
		ResetAt:   resetAt,
	}, nil
}

// GetCurrentUsage returns the current request count in the window
func (rl *RateLimiter) GetCurrentUsage(ctx context.Context, key string) (int64, error) {
	rkey := rl.redisKey(key)
	windowStart := rl.now().Add(-rl.window)

	if err := rl.client.ZRemRangeByScore(ctx, rkey, "0", strconv.FormatInt(windowStart.UnixMilli(), 10)).Err(); err != nil {
		return 0, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := rl.client.ZCard(ctx, rkey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get current usage: %w", err)
	}

	return count, nil
}

// Reset resets the rate limit for a key
func (rl *RateLimiter) Reset(ctx context.Context, key string) error {
	return rl.client.Del(ctx, rl.redisKey(key)).Err()
}
