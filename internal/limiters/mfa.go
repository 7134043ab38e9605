package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MFAConfig holds configuration for the per-method MFA failure limiter.
type MFAConfig struct {
	Threshold int
	Window    time.Duration
}

var (
	// ErrMFAUnavailable indicates the MFA limiter backend is unreachable.
	ErrMFAUnavailable = errors.New("mfa limiter backend unavailable")
)

// MFAFailureLimiter holds the authoritative failed-challenge count for a
// second factor. Counters are keyed per tenant, user, and method type and
// incremented with a single Redis INCR, so concurrent failures never lose
// updates. The key expires after the lock window, which doubles as the
// rolling counting window.
type MFAFailureLimiter struct {
	redis  redis.UniversalClient
	config MFAConfig
}

// NewMFAFailureLimiter creates a new MFA failure limiter.
func NewMFAFailureLimiter(redisClient redis.UniversalClient, cfg MFAConfig) *MFAFailureLimiter {
	return &MFAFailureLimiter{redis: redisClient, config: cfg}
}

func (l *MFAFailureLimiter) key(tenantID, userID, method string) string {
	return "amfa:" + tenantID + ":" + userID + ":" + method
}

// RecordFailure increments the failure counter for a method and returns the
// resulting count.
func (l *MFAFailureLimiter) RecordFailure(ctx context.Context, tenantID, userID, method string) (int, error) {
	if l == nil || userID == "" {
		return 0, nil
	}

	count, err := l.redis.Incr(ctx, l.key(tenantID, userID, method)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMFAUnavailable, err)
	}

	if count == 1 && l.config.Window > 0 {
		if err := l.redis.Expire(ctx, l.key(tenantID, userID, method), l.config.Window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMFAUnavailable, err)
		}
	}

	return int(count), nil
}

// Locked reports whether the method's failure count has reached the
// threshold within the current window.
func (l *MFAFailureLimiter) Locked(ctx context.Context, tenantID, userID, method string) (bool, error) {
	if l == nil || userID == "" || l.config.Threshold <= 0 {
		return false, nil
	}

	count, err := l.redis.Get(ctx, l.key(tenantID, userID, method)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrMFAUnavailable, err)
	}
	return count >= int64(l.config.Threshold), nil
}

// Reset clears the failure counter for a method after a successful challenge.
func (l *MFAFailureLimiter) Reset(ctx context.Context, tenantID, userID, method string) error {
	if l == nil || userID == "" {
		return nil
	}

	if err := l.redis.Del(ctx, l.key(tenantID, userID, method)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrMFAUnavailable, err)
	}
	return nil
}
