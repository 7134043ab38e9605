package accesscore

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const bootstrapKey = "acfg:init"

// MarkInitialized records that first-time installation has completed. The
// flag is monotonic: the first call wins and every later call fails with
// [ErrAlreadyInitialized]. The write is a single SETNX, so two racing
// installers cannot both succeed.
//
// MarkInitialized may return an error when input validation, dependency calls, or security checks fail.
// MarkInitialized does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MarkInitialized(ctx context.Context, tenantID, superUserID string, schemaVersion int) error {
	if e == nil || e.redis == nil {
		return ErrEngineNotReady
	}
	if tenantID == "" || superUserID == "" {
		return ErrInvalid
	}

	value := tenantID + "|" + superUserID + "|" + strconv.Itoa(schemaVersion) + "|" + e.now().UTC().Format(time.RFC3339)
	set, err := e.redis.SetNX(ctx, bootstrapKey, value, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
	}
	if !set {
		e.emitAudit(ctx, auditEventBootstrapInitialized, false, superUserID, tenantID, "", ErrAlreadyInitialized, nil)
		return ErrAlreadyInitialized
	}

	e.metricInc(MetricBootstrapInitialized)
	e.emitAudit(ctx, auditEventBootstrapInitialized, true, superUserID, tenantID, "", nil, func() map[string]string {
		return map[string]string{
			"schema_version": strconv.Itoa(schemaVersion),
		}
	})
	return nil
}

// Initialized reports whether first-time installation has completed.
//
// Initialized may return an error when input validation, dependency calls, or security checks fail.
// Initialized does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Initialized(ctx context.Context) (bool, error) {
	if e == nil || e.redis == nil {
		return false, ErrEngineNotReady
	}

	n, err := e.redis.Exists(ctx, bootstrapKey).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
	}
	return n > 0, nil
}
