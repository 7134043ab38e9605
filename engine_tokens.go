package accesscore

import (
	"context"
	"errors"

	"github.com/tenantsec/accesscore/internal"
	"github.com/tenantsec/accesscore/token"
)

// IssueRefreshToken mints a new refresh token for the user and persists its
// record. The returned string is the only copy of the plaintext secret; the
// store keeps just the hash.
//
// IssueRefreshToken may return an error when input validation, dependency calls, or security checks fail.
// IssueRefreshToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssueRefreshToken(ctx context.Context, tenantID, userID string) (*token.RefreshToken, string, error) {
	if e == nil || e.tokenStore == nil {
		return nil, "", ErrEngineNotReady
	}
	if userID == "" {
		return nil, "", ErrInvalid
	}

	now := e.now()
	t, plaintext, err := token.IssueRefresh(now, userID, tenantID, e.config.RefreshToken.TTL)
	if err != nil {
		return nil, "", err
	}
	if err := e.tokenStore.SaveRefresh(ctx, t, now); err != nil {
		return nil, "", err
	}

	e.metricInc(MetricRefreshIssued)
	e.emitAudit(ctx, auditEventRefreshIssued, true, userID, tenantID, "", nil, func() map[string]string {
		return map[string]string{
			"token_id": t.ID,
		}
	})
	return t, plaintext, nil
}

// RotateRefreshToken consumes the presented refresh token and issues its
// replacement in one atomic step. Exactly one concurrent caller wins; the
// loser observes [ErrReplayDetected]. Presenting a token that was already
// rotated is the stolen-token replay signal and is surfaced as
// [ErrReplayDetected], distinct from [ErrTokenNotFound] and [ErrExpired].
//
// RotateRefreshToken may return an error when input validation, dependency calls, or security checks fail.
// RotateRefreshToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RotateRefreshToken(ctx context.Context, tenantID, presented string) (*token.RefreshToken, string, error) {
	if e == nil || e.tokenStore == nil {
		return nil, "", ErrEngineNotReady
	}

	tokenID, secret, err := internal.DecodeToken(presented)
	if err != nil {
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", tenantID, "", ErrInvalid, func() map[string]string {
			return map[string]string{
				"reason": "decode_failed",
			}
		})
		return nil, "", ErrInvalid
	}

	now := e.now()
	predecessor, err := e.tokenStore.GetRefresh(ctx, tenantID, tokenID)
	if err != nil {
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", tenantID, "", err, func() map[string]string {
			return map[string]string{
				"token_id": tokenID,
			}
		})
		return nil, "", err
	}

	successor, plaintext, err := token.IssueRefresh(now, predecessor.UserID, tenantID, e.config.RefreshToken.TTL)
	if err != nil {
		return nil, "", err
	}

	ip := clientIPFromContext(ctx)
	if _, err := e.tokenStore.RotateRefresh(ctx, tenantID, tokenID, internal.HashSecret(secret), successor, now, ip); err != nil {
		if errors.Is(err, ErrReplayDetected) {
			e.metricInc(MetricReplayDetected)
			e.emitAudit(ctx, auditEventRefreshReplay, false, predecessor.UserID, tenantID, "", err, func() map[string]string {
				return map[string]string{
					"token_id":    tokenID,
					"replaced_by": predecessor.ReplacedByID,
				}
			})
			return nil, "", err
		}
		e.emitAudit(ctx, auditEventRefreshInvalid, false, predecessor.UserID, tenantID, "", err, func() map[string]string {
			return map[string]string{
				"token_id": tokenID,
			}
		})
		return nil, "", err
	}

	e.metricInc(MetricRefreshRotated)
	e.emitAudit(ctx, auditEventRefreshRotated, true, predecessor.UserID, tenantID, "", nil, func() map[string]string {
		return map[string]string{
			"token_id":  tokenID,
			"successor": successor.ID,
		}
	})
	return successor, plaintext, nil
}

// RevokeRefreshToken moves an active refresh token to its terminal revoked
// state. Revoking a token already in a terminal state fails with
// [ErrAlreadyUsed] or [ErrAlreadyRevoked].
//
// RevokeRefreshToken may return an error when input validation, dependency calls, or security checks fail.
// RevokeRefreshToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RevokeRefreshToken(ctx context.Context, tenantID, tokenID, reason string) error {
	if e == nil || e.tokenStore == nil {
		return ErrEngineNotReady
	}

	revoked, err := e.tokenStore.RevokeRefresh(ctx, tenantID, tokenID, reason, clientIPFromContext(ctx), e.now())
	userID := ""
	if revoked != nil {
		userID = revoked.UserID
	}
	if err == nil {
		e.metricInc(MetricRefreshRevoked)
	}
	e.emitAudit(ctx, auditEventRefreshRevoked, err == nil, userID, tenantID, "", err, func() map[string]string {
		return map[string]string{
			"token_id": tokenID,
			"reason":   reason,
		}
	})
	return err
}

// IssuePasswordResetToken mints a single-use password reset token. The
// plaintext secret is returned exactly once and never persisted.
//
// IssuePasswordResetToken may return an error when input validation, dependency calls, or security checks fail.
// IssuePasswordResetToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssuePasswordResetToken(ctx context.Context, tenantID, userID string) (*token.ResetToken, string, error) {
	if e == nil || e.tokenStore == nil {
		return nil, "", ErrEngineNotReady
	}
	if userID == "" {
		return nil, "", ErrInvalid
	}

	now := e.now()
	t, plaintext, err := token.IssueReset(now, userID, tenantID, e.config.PasswordReset.TTL)
	if err != nil {
		return nil, "", err
	}
	if err := e.tokenStore.SaveReset(ctx, t, now); err != nil {
		return nil, "", err
	}

	e.metricInc(MetricResetIssued)
	e.emitAudit(ctx, auditEventResetIssued, true, userID, tenantID, "", nil, func() map[string]string {
		return map[string]string{
			"token_id": t.ID,
		}
	})
	return t, plaintext, nil
}

// ConsumePasswordResetToken atomically marks the presented reset token used.
// The state checks run in order: used, invalidated, expired; the first
// violated condition is the one reported.
//
// ConsumePasswordResetToken may return an error when input validation, dependency calls, or security checks fail.
// ConsumePasswordResetToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ConsumePasswordResetToken(ctx context.Context, tenantID, presented string) (*token.ResetToken, error) {
	if e == nil || e.tokenStore == nil {
		return nil, ErrEngineNotReady
	}

	tokenID, secret, err := internal.DecodeToken(presented)
	if err != nil {
		e.emitAudit(ctx, auditEventResetFailure, false, "", tenantID, "", ErrInvalid, func() map[string]string {
			return map[string]string{
				"reason": "decode_failed",
			}
		})
		return nil, ErrInvalid
	}

	consumed, err := e.tokenStore.ConsumeReset(ctx, tenantID, tokenID, internal.HashSecret(secret), clientIPFromContext(ctx), e.now())
	if err != nil {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, auditEventResetFailure, false, "", tenantID, "", err, func() map[string]string {
			return map[string]string{
				"token_id": tokenID,
			}
		})
		return nil, err
	}

	e.metricInc(MetricResetConsumed)
	e.emitAudit(ctx, auditEventResetConsumed, true, consumed.UserID, tenantID, "", nil, func() map[string]string {
		return map[string]string{
			"token_id": tokenID,
		}
	})
	return consumed, nil
}

// InvalidatePasswordResetToken moves a reset token to its terminal
// invalidated state with the given reason.
//
// InvalidatePasswordResetToken may return an error when input validation, dependency calls, or security checks fail.
// InvalidatePasswordResetToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) InvalidatePasswordResetToken(ctx context.Context, tenantID, tokenID, reason string) error {
	if e == nil || e.tokenStore == nil {
		return ErrEngineNotReady
	}

	invalidated, err := e.tokenStore.InvalidateReset(ctx, tenantID, tokenID, reason, e.now())
	userID := ""
	if invalidated != nil {
		userID = invalidated.UserID
	}
	if err == nil {
		e.metricInc(MetricResetInvalidated)
	}
	e.emitAudit(ctx, auditEventResetInvalidated, err == nil, userID, tenantID, "", err, func() map[string]string {
		return map[string]string{
			"token_id": tokenID,
			"reason":   reason,
		}
	})
	return err
}
