package accesscore

import (
	"context"
	"time"

	"github.com/tenantsec/accesscore/internal"
	"github.com/tenantsec/accesscore/session"
)

// CreateSession records a new login session and returns it together with the
// session token handed to the client. Only the token's hash is stored.
//
// CreateSession may return an error when input validation, dependency calls, or security checks fail.
// CreateSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CreateSession(ctx context.Context, tenantID, userID, device string) (*session.Session, string, error) {
	if e == nil || e.sessionStore == nil {
		return nil, "", ErrEngineNotReady
	}
	if userID == "" {
		return nil, "", ErrInvalid
	}

	secret, err := internal.NewSecret()
	if err != nil {
		return nil, "", err
	}
	sessionID := internal.NewTokenID()
	plaintext, err := internal.EncodeToken(sessionID, secret)
	if err != nil {
		return nil, "", err
	}

	now := e.now()
	ip := clientIPFromContext(ctx)
	sess := session.New(sessionID, userID, tenantID, internal.HashSecret(secret), device, ip, now, e.config.Session.Lifetime)

	if err := e.sessionStore.Save(ctx, sess, e.config.Session.Lifetime); err != nil {
		return nil, "", err
	}

	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventSessionCreated, true, userID, tenantID, sessionID, nil, func() map[string]string {
		return map[string]string{
			"device": device,
		}
	})
	return sess, plaintext, nil
}

// ValidateSession resolves the presented session token to a live session. A
// session that is locked, revoked, or expired fails with
// [ErrSessionNotFound]; a wrong secret fails the same way so a guesser
// cannot distinguish the two. Idle sessions validate successfully but are
// counted; whether idleness revokes is the caller's policy.
//
// ValidateSession may return an error when input validation, dependency calls, or security checks fail.
// ValidateSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateSession(ctx context.Context, tenantID, presented string) (*session.Session, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}

	sessionID, secret, err := internal.DecodeToken(presented)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	sess, err := e.sessionStore.Get(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if !internal.HashesEqual(sess.TokenHash, internal.HashSecret(secret)) {
		return nil, ErrSessionNotFound
	}

	now := e.now()
	if !sess.Valid(now) {
		return nil, ErrSessionNotFound
	}
	if e.config.Session.IdleTimeout > 0 && sess.IdleExceeded(now, e.config.Session.IdleTimeout) {
		e.metricInc(MetricSessionIdle)
	}

	return sess, nil
}

// TouchSession refreshes the session's last-activity timestamp. This feeds
// the idle-timeout window only; the liveness window is moved by
// [Engine.ExtendSession] and the two must not be conflated.
//
// TouchSession may return an error when input validation, dependency calls, or security checks fail.
// TouchSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) TouchSession(ctx context.Context, tenantID, sessionID string) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}

	sess, err := e.sessionStore.Get(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	sess.UpdateActivity(e.now())
	return e.sessionStore.Update(ctx, sess)
}

// ExtendSession pushes the session's expiry forward by the given extension.
//
// ExtendSession may return an error when input validation, dependency calls, or security checks fail.
// ExtendSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ExtendSession(ctx context.Context, tenantID, sessionID string, extension time.Duration) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}
	if extension <= 0 {
		return ErrInvalid
	}

	sess, err := e.sessionStore.Get(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	sess.ExtendExpiration(e.now(), extension)
	return e.sessionStore.Update(ctx, sess)
}

// RevokeSession marks a session revoked with the given reason. The call is
// idempotent: a second revoke updates the reason but keeps the original
// revocation timestamp and never fails for being late.
//
// RevokeSession may return an error when input validation, dependency calls, or security checks fail.
// RevokeSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RevokeSession(ctx context.Context, tenantID, sessionID, reason string) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}

	sess, err := e.sessionStore.Get(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	alreadyRevoked := sess.Revoked
	sess.Revoke(e.now(), reason)
	if err := e.sessionStore.Update(ctx, sess); err != nil {
		return err
	}

	if !alreadyRevoked {
		e.metricInc(MetricSessionRevoked)
	}
	e.emitAudit(ctx, auditEventSessionRevoked, true, sess.UserID, tenantID, sessionID, nil, func() map[string]string {
		return map[string]string{
			"reason": reason,
		}
	})
	return nil
}

// RevokeAllSessions removes every session the user holds in the tenant.
//
// RevokeAllSessions may return an error when input validation, dependency calls, or security checks fail.
// RevokeAllSessions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RevokeAllSessions(ctx context.Context, tenantID, userID string) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrInvalid
	}

	err := e.sessionStore.DeleteAllForUser(ctx, tenantID, userID)
	if err == nil {
		e.metricInc(MetricSessionRevokedAll)
	}
	e.emitAudit(ctx, auditEventSessionRevokedAll, err == nil, userID, tenantID, "", err, nil)
	return err
}

// SessionsForUser lists the user's sessions as stored, including revoked or
// expired ones that have not yet been cleaned up.
//
// SessionsForUser may return an error when input validation, dependency calls, or security checks fail.
// SessionsForUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SessionsForUser(ctx context.Context, tenantID, userID string) ([]*session.Session, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}
	return e.sessionStore.SessionsForUser(ctx, tenantID, userID)
}
