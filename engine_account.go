package accesscore

import (
	"context"
	"strconv"
	"time"
)

// CheckLoginAllowed gates a login attempt before any credential check runs.
// The gates fire in order: lockout, working-day mask, time off. Each reports
// its own error kind so callers never have to guess which policy denied and
// never learn whether credentials were otherwise valid.
//
// CheckLoginAllowed may return an error when input validation, dependency calls, or security checks fail.
// CheckLoginAllowed does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CheckLoginAllowed(ctx context.Context, tenantID, userID string) error {
	if e == nil || e.userProvider == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrInvalid
	}

	user, err := e.userProvider.GetUserByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	now := e.now()

	if user.LockoutExpiresAt.After(now) {
		e.metricInc(MetricLoginLockedOut)
		e.emitAudit(ctx, auditEventLoginDenied, false, userID, tenantID, "", ErrLockedOut, func() map[string]string {
			return map[string]string{
				"lockout_expires_at": user.LockoutExpiresAt.UTC().Format(time.RFC3339),
			}
		})
		return ErrLockedOut
	}

	if user.EnforceWorkingDays && !user.WorkingDays.Has(now.Weekday()) {
		e.metricInc(MetricLoginOutsideWorkingDays)
		e.emitAudit(ctx, auditEventLoginDenied, false, userID, tenantID, "", ErrOutsideWorkingDays, func() map[string]string {
			return map[string]string{
				"weekday": now.Weekday().String(),
			}
		})
		return ErrOutsideWorkingDays
	}

	timeOff, err := e.userProvider.TimeOffForUser(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	for _, record := range timeOff {
		if record.Covers(now) {
			e.metricInc(MetricLoginTimeOffActive)
			e.emitAudit(ctx, auditEventLoginDenied, false, userID, tenantID, "", ErrTimeOffActive, nil)
			return ErrTimeOffActive
		}
	}

	e.metricInc(MetricLoginAllowed)
	e.emitAudit(ctx, auditEventLoginAllowed, true, userID, tenantID, "", nil, nil)
	return nil
}

// RecordLoginFailure counts one failed credential check. When the failure
// count reaches the configured threshold the account's lockout expiry is set
// and the updated security state is persisted through the provider. Returns
// whether the lockout was applied by this call.
//
// RecordLoginFailure may return an error when input validation, dependency calls, or security checks fail.
// RecordLoginFailure does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RecordLoginFailure(ctx context.Context, tenantID, userID string) (bool, error) {
	if e == nil || e.userProvider == nil {
		return false, ErrEngineNotReady
	}
	if userID == "" {
		return false, ErrInvalid
	}

	count, thresholdHit, err := e.lockout.RecordFailure(ctx, tenantID, userID)
	if err != nil {
		return false, err
	}

	user, err := e.userProvider.GetUserByID(ctx, tenantID, userID)
	if err != nil {
		return false, err
	}
	if count > 0 {
		// The limiter's INCR result is the authoritative count; persisting it
		// keeps the record accurate under concurrent failures.
		user.FailedLoginAttempts = count
	} else {
		// Limiter disabled: the persisted count is display-only.
		user.FailedLoginAttempts++
	}

	e.metricInc(MetricLoginFailureRecorded)
	e.emitAudit(ctx, auditEventLoginFailureRecorded, true, userID, tenantID, "", nil, func() map[string]string {
		return map[string]string{
			"failed_attempts": strconv.Itoa(user.FailedLoginAttempts),
		}
	})

	if thresholdHit {
		user.LockoutExpiresAt = e.now().Add(e.config.Lockout.Duration)
		e.metricInc(MetricLockoutApplied)
		e.emitAudit(ctx, auditEventLockoutApplied, true, userID, tenantID, "", nil, func() map[string]string {
			return map[string]string{
				"lockout_expires_at": user.LockoutExpiresAt.UTC().Format(time.RFC3339),
			}
		})
	}

	if err := e.userProvider.UpdateSecurityState(ctx, user); err != nil {
		return thresholdHit, err
	}
	return thresholdHit, nil
}

// RecordLoginSuccess clears the failure counter and any lockout after a
// successful credential check.
//
// RecordLoginSuccess may return an error when input validation, dependency calls, or security checks fail.
// RecordLoginSuccess does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RecordLoginSuccess(ctx context.Context, tenantID, userID string) error {
	if e == nil || e.userProvider == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrInvalid
	}

	if err := e.lockout.Reset(ctx, tenantID, userID); err != nil {
		return err
	}

	user, err := e.userProvider.GetUserByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if user.FailedLoginAttempts == 0 && user.LockoutExpiresAt.IsZero() {
		return nil
	}

	user.FailedLoginAttempts = 0
	user.LockoutExpiresAt = time.Time{}
	if err := e.userProvider.UpdateSecurityState(ctx, user); err != nil {
		return err
	}
	e.emitAudit(ctx, auditEventLockoutCleared, true, userID, tenantID, "", nil, nil)
	return nil
}
