package accesscore

import (
	"context"
	"strconv"

	"github.com/tenantsec/accesscore/mfa"
)

func (e *Engine) mfaConfig() mfa.Config {
	cfg := mfa.Config{
		MaxAttempts:  e.config.MFA.MaxAttempts,
		LockDuration: e.config.MFA.LockDuration,
	}
	if cfg.MaxAttempts <= 0 || cfg.LockDuration <= 0 {
		return mfa.DefaultConfig()
	}
	return cfg
}

func (e *Engine) loadMFAMethods(ctx context.Context, tenantID, userID string) ([]*mfa.Method, error) {
	if e == nil || e.userProvider == nil {
		return nil, ErrEngineNotReady
	}
	if userID == "" {
		return nil, ErrInvalid
	}
	return e.userProvider.MFAMethods(ctx, tenantID, userID)
}

func findMethod(methods []*mfa.Method, typ mfa.MethodType) *mfa.Method {
	for _, m := range methods {
		if m.Type == typ {
			return m
		}
	}
	return nil
}

// EnrollMFAMethod registers a new, unverified method for the user. Secret
// carries the method-specific key material (authenticator seed, backup code
// hashes); contact carries the delivery address for SMS and email methods.
//
// EnrollMFAMethod may return an error when input validation, dependency calls, or security checks fail.
// EnrollMFAMethod does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) EnrollMFAMethod(ctx context.Context, tenantID, userID string, typ mfa.MethodType, secret []byte, contact string) (*mfa.Method, error) {
	methods, err := e.loadMFAMethods(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if findMethod(methods, typ) != nil {
		return nil, ErrInvalidStateTransition
	}

	now := e.now()
	var method *mfa.Method
	switch typ {
	case mfa.MethodAuthenticator:
		method = mfa.CreateAuthenticator(userID, tenantID, secret, now)
	case mfa.MethodSMS:
		method = mfa.CreateSms(userID, tenantID, contact, now)
	case mfa.MethodEmail:
		method = mfa.CreateEmail(userID, tenantID, contact, now)
	case mfa.MethodBackupCodes:
		method = mfa.CreateBackupCodes(userID, tenantID, secret, now)
	default:
		return nil, ErrInvalid
	}

	methods = append(methods, method)
	if err := e.userProvider.SaveMFAMethods(ctx, tenantID, userID, methods); err != nil {
		return nil, err
	}

	e.metricInc(MetricMFAEnrolled)
	e.emitAudit(ctx, auditEventMFAEnrolled, true, userID, tenantID, "", nil, func() map[string]string {
		return map[string]string{
			"method": typ.String(),
		}
	})
	return method, nil
}

// VerifyMFAMethod records a successful challenge for the method, moving it
// to the verified state and clearing its failure counter and lock.
//
// VerifyMFAMethod may return an error when input validation, dependency calls, or security checks fail.
// VerifyMFAMethod does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyMFAMethod(ctx context.Context, tenantID, userID string, typ mfa.MethodType) error {
	methods, err := e.loadMFAMethods(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	method := findMethod(methods, typ)
	if method == nil {
		return ErrMethodNotFound
	}

	// The shared counter is the lock authority; the method's own lock state
	// is a mirror and may lag under concurrent failures.
	limiterLocked, err := e.mfaLimiter.Locked(ctx, tenantID, userID, typ.String())
	if err != nil {
		return err
	}
	if limiterLocked {
		e.metricInc(MetricMFAFailure)
		e.emitAudit(ctx, auditEventMFAFailure, false, userID, tenantID, "", ErrMethodLocked, func() map[string]string {
			return map[string]string{
				"method": typ.String(),
			}
		})
		return ErrMethodLocked
	}

	if err := method.Verify(e.now()); err != nil {
		e.metricInc(MetricMFAFailure)
		e.emitAudit(ctx, auditEventMFAFailure, false, userID, tenantID, "", err, func() map[string]string {
			return map[string]string{
				"method": typ.String(),
			}
		})
		return err
	}
	if err := e.userProvider.SaveMFAMethods(ctx, tenantID, userID, methods); err != nil {
		return err
	}
	if err := e.mfaLimiter.Reset(ctx, tenantID, userID, typ.String()); err != nil {
		return err
	}

	e.metricInc(MetricMFAVerified)
	e.emitAudit(ctx, auditEventMFAVerified, true, userID, tenantID, "", nil, func() map[string]string {
		return map[string]string{
			"method": typ.String(),
		}
	})
	return nil
}

// RecordMFAFailure counts one failed challenge against the method and locks
// it when the failure threshold is reached. Returns whether this call
// applied the lock. The count lives in a single Redis counter keyed per
// (tenant, user, method), so concurrent failures never lose increments; the
// persisted method state mirrors the counter's result.
//
// RecordMFAFailure may return an error when input validation, dependency calls, or security checks fail.
// RecordMFAFailure does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RecordMFAFailure(ctx context.Context, tenantID, userID string, typ mfa.MethodType) (bool, error) {
	methods, err := e.loadMFAMethods(ctx, tenantID, userID)
	if err != nil {
		return false, err
	}
	method := findMethod(methods, typ)
	if method == nil {
		return false, ErrMethodNotFound
	}

	count, err := e.mfaLimiter.RecordFailure(ctx, tenantID, userID, typ.String())
	if err != nil {
		return false, err
	}

	locked := method.ApplyFailureCount(e.now(), count, e.mfaConfig())
	if err := e.userProvider.SaveMFAMethods(ctx, tenantID, userID, methods); err != nil {
		return false, err
	}

	e.metricInc(MetricMFAFailure)
	if locked {
		e.metricInc(MetricMFALocked)
	}
	e.emitAudit(ctx, auditEventMFAFailure, true, userID, tenantID, "", nil, func() map[string]string {
		return map[string]string{
			"method": typ.String(),
			"locked": strconv.FormatBool(locked),
		}
	})
	return locked, nil
}

// EnableMFAMethod activates a verified method for login use. The first
// enabled method is auto-promoted to primary.
//
// EnableMFAMethod may return an error when input validation, dependency calls, or security checks fail.
// EnableMFAMethod does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) EnableMFAMethod(ctx context.Context, tenantID, userID string, typ mfa.MethodType) error {
	methods, err := e.loadMFAMethods(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	method := findMethod(methods, typ)
	if method == nil {
		return ErrMethodNotFound
	}

	if err := mfa.EnableMethod(methods, method); err != nil {
		e.emitAudit(ctx, auditEventMFAEnabled, false, userID, tenantID, "", err, func() map[string]string {
			return map[string]string{
				"method": typ.String(),
			}
		})
		return err
	}
	if err := e.userProvider.SaveMFAMethods(ctx, tenantID, userID, methods); err != nil {
		return err
	}

	e.metricInc(MetricMFAEnabled)
	e.emitAudit(ctx, auditEventMFAEnabled, true, userID, tenantID, "", nil, func() map[string]string {
		return map[string]string{
			"method":  typ.String(),
			"primary": strconv.FormatBool(method.Primary),
		}
	})
	return nil
}

// DisableMFAMethod deactivates a method. Disabling the primary leaves the
// user with no primary; no other method is auto-promoted.
//
// DisableMFAMethod may return an error when input validation, dependency calls, or security checks fail.
// DisableMFAMethod does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) DisableMFAMethod(ctx context.Context, tenantID, userID string, typ mfa.MethodType) error {
	methods, err := e.loadMFAMethods(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	method := findMethod(methods, typ)
	if method == nil {
		return ErrMethodNotFound
	}

	if err := mfa.DisableMethod(methods, method); err != nil {
		return err
	}
	if err := e.userProvider.SaveMFAMethods(ctx, tenantID, userID, methods); err != nil {
		return err
	}

	e.metricInc(MetricMFADisabled)
	e.emitAudit(ctx, auditEventMFADisabled, true, userID, tenantID, "", nil, func() map[string]string {
		return map[string]string{
			"method": typ.String(),
		}
	})
	return nil
}

// SetPrimaryMFAMethod marks the method as the user's default second factor,
// demoting any previous primary.
//
// SetPrimaryMFAMethod may return an error when input validation, dependency calls, or security checks fail.
// SetPrimaryMFAMethod does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SetPrimaryMFAMethod(ctx context.Context, tenantID, userID string, typ mfa.MethodType) error {
	methods, err := e.loadMFAMethods(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	method := findMethod(methods, typ)
	if method == nil {
		return ErrMethodNotFound
	}

	if err := mfa.SetPrimary(methods, method); err != nil {
		e.emitAudit(ctx, auditEventMFAPrimaryChanged, false, userID, tenantID, "", err, func() map[string]string {
			return map[string]string{
				"method": typ.String(),
			}
		})
		return err
	}
	if err := e.userProvider.SaveMFAMethods(ctx, tenantID, userID, methods); err != nil {
		return err
	}

	e.metricInc(MetricMFAPrimaryChanged)
	e.emitAudit(ctx, auditEventMFAPrimaryChanged, true, userID, tenantID, "", nil, func() map[string]string {
		return map[string]string{
			"method": typ.String(),
		}
	})
	return nil
}

// EnabledMFAMethods returns the flag set of the user's enabled method types.
//
// EnabledMFAMethods may return an error when input validation, dependency calls, or security checks fail.
// EnabledMFAMethods does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) EnabledMFAMethods(ctx context.Context, tenantID, userID string) (mfa.MethodSet, error) {
	methods, err := e.loadMFAMethods(ctx, tenantID, userID)
	if err != nil {
		return 0, err
	}
	return mfa.EnabledSet(methods), nil
}
