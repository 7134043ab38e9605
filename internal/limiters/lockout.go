package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockoutConfig holds configuration for the automatic account lockout limiter.
type LockoutConfig struct {
	Enabled   bool
	Threshold int
	Duration  time.Duration // 0 = manual unlock only
}

var (
	// ErrLockoutUnavailable indicates the lockout backend is unreachable.
	ErrLockoutUnavailable = errors.New("lockout backend unavailable")
)

// LockoutLimiter tracks persistent failed login attempts and triggers
// account lockout when the configured threshold is reached. Counters are
// keyed per tenant and user so the same user ID in two tenants never shares
// a window.
type LockoutLimiter struct {
	redis  redis.UniversalClient
	config LockoutConfig
}

// NewLockoutLimiter creates a new lockout limiter.
func NewLockoutLimiter(redisClient redis.UniversalClient, cfg LockoutConfig) *LockoutLimiter {
	return &LockoutLimiter{redis: redisClient, config: cfg}
}

func (l *LockoutLimiter) key(tenantID, userID string) string {
	return "alo:" + tenantID + ":" + userID
}

// RecordFailure increments the failure counter for a user and returns the
// resulting count. The second result is true if the threshold has been
// reached (caller should lock the account).
func (l *LockoutLimiter) RecordFailure(ctx context.Context, tenantID, userID string) (int, bool, error) {
	if l == nil || !l.config.Enabled || userID == "" {
		return 0, false, nil
	}

	count, err := l.redis.Incr(ctx, l.key(tenantID, userID)).Result()
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}

	if count == 1 && l.config.Duration > 0 {
		// Set TTL on first failure so counter auto-resets after lockout duration.
		// This acts as a rolling window for counting failures.
		if err := l.redis.Expire(ctx, l.key(tenantID, userID), l.config.Duration).Err(); err != nil {
			return 0, false, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
		}
	}

	return int(count), count >= int64(l.config.Threshold), nil
}

// Reset clears the failure counter for a user (e.g., after successful login or manual unlock).
func (l *LockoutLimiter) Reset(ctx context.Context, tenantID, userID string) error {
	if l == nil || !l.config.Enabled || userID == "" {
		return nil
	}

	if err := l.redis.Del(ctx, l.key(tenantID, userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	return nil
}

// GetFailureCount returns the current failure count for a user.
func (l *LockoutLimiter) GetFailureCount(ctx context.Context, tenantID, userID string) (int, error) {
	if l == nil || !l.config.Enabled || userID == "" {
		return 0, nil
	}

	count, err := l.redis.Get(ctx, l.key(tenantID, userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	return int(count), nil
}
