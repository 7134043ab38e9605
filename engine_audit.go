package accesscore

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

const (
	auditEventAuthorizeAllow       = "authorize_allow"
	auditEventAuthorizeDeny        = "authorize_deny"
	auditEventAuthorizeError       = "authorize_error"
	auditEventRefreshIssued        = "refresh_token_issued"
	auditEventRefreshRotated       = "refresh_token_rotated"
	auditEventRefreshRevoked       = "refresh_token_revoked"
	auditEventRefreshReplay        = "refresh_token_replay"
	auditEventRefreshInvalid       = "refresh_token_invalid"
	auditEventResetIssued          = "reset_token_issued"
	auditEventResetConsumed        = "reset_token_consumed"
	auditEventResetInvalidated     = "reset_token_invalidated"
	auditEventResetFailure         = "reset_token_failure"
	auditEventLoginAllowed         = "login_gate_allowed"
	auditEventLoginDenied          = "login_gate_denied"
	auditEventLoginFailureRecorded = "login_failure_recorded"
	auditEventLockoutApplied       = "lockout_applied"
	auditEventLockoutCleared       = "lockout_cleared"
	auditEventSessionCreated       = "session_created"
	auditEventSessionRevoked       = "session_revoked"
	auditEventSessionRevokedAll    = "session_revoked_all"
	auditEventMFAEnrolled          = "mfa_method_enrolled"
	auditEventMFAVerified          = "mfa_method_verified"
	auditEventMFAFailure           = "mfa_method_failure"
	auditEventMFAEnabled           = "mfa_method_enabled"
	auditEventMFADisabled          = "mfa_method_disabled"
	auditEventMFAPrimaryChanged    = "mfa_primary_changed"
	auditEventBootstrapInitialized = "bootstrap_initialized"
	auditEventGroupReparented      = "group_reparented"
)

// AuditErrorCode defines a public type used by accesscore APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrTenantMismatch        AuditErrorCode = "tenant_mismatch"
	auditErrNotFound              AuditErrorCode = "not_found"
	auditErrLockedOut             AuditErrorCode = "locked_out"
	auditErrOutsideWorkingDays    AuditErrorCode = "outside_working_days"
	auditErrTimeOffActive         AuditErrorCode = "time_off_active"
	auditErrReplay                AuditErrorCode = "replay_detected"
	auditErrAlreadyRevoked        AuditErrorCode = "already_revoked"
	auditErrAlreadyInvalidated    AuditErrorCode = "already_invalidated"
	auditErrExpired               AuditErrorCode = "expired"
	auditErrSecretMismatch        AuditErrorCode = "secret_mismatch"
	auditErrInvalidTransition     AuditErrorCode = "invalid_state_transition"
	auditErrDuplicatePrimary      AuditErrorCode = "duplicate_primary"
	auditErrMethodLocked          AuditErrorCode = "method_locked"
	auditErrCyclicGroupReference  AuditErrorCode = "cyclic_group_reference"
	auditErrCorruptHierarchy      AuditErrorCode = "corrupt_hierarchy"
	auditErrAlreadyInitialized    AuditErrorCode = "already_initialized"
	auditErrSessionNotFound       AuditErrorCode = "session_not_found"
	auditErrInvalid               AuditErrorCode = "invalid_request"
	auditErrBackendUnavailable    AuditErrorCode = "backend_unavailable"
	auditErrInternal              AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	tenantID string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}
	if tenantID == "" {
		tenantID = tenantIDFromContext(ctx)
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: e.now().UTC(),
		EventType: eventType,
		UserID:    userID,
		TenantID:  tenantID,
		ActorID:   actorIDFromContext(ctx),
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrTenantMismatch):
		return auditErrTenantMismatch
	case errors.Is(err, ErrLockedOut):
		return auditErrLockedOut
	case errors.Is(err, ErrOutsideWorkingDays):
		return auditErrOutsideWorkingDays
	case errors.Is(err, ErrTimeOffActive):
		return auditErrTimeOffActive
	case errors.Is(err, ErrAlreadyUsed):
		return auditErrReplay
	case errors.Is(err, ErrAlreadyRevoked):
		return auditErrAlreadyRevoked
	case errors.Is(err, ErrAlreadyInvalidated):
		return auditErrAlreadyInvalidated
	case errors.Is(err, ErrExpired):
		return auditErrExpired
	case errors.Is(err, ErrSecretMismatch):
		return auditErrSecretMismatch
	case errors.Is(err, ErrInvalidStateTransition):
		return auditErrInvalidTransition
	case errors.Is(err, ErrDuplicatePrimaryConflict):
		return auditErrDuplicatePrimary
	case errors.Is(err, ErrMethodLocked):
		return auditErrMethodLocked
	case errors.Is(err, ErrCyclicGroupReference):
		return auditErrCyclicGroupReference
	case errors.Is(err, ErrCorruptHierarchy):
		return auditErrCorruptHierarchy
	case errors.Is(err, ErrAlreadyInitialized):
		return auditErrAlreadyInitialized
	case errors.Is(err, ErrSessionNotFound):
		return auditErrSessionNotFound
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrTokenNotFound),
		errors.Is(err, ErrPrincipalNotFound),
		errors.Is(err, ErrGroupNotFound),
		errors.Is(err, ErrMethodNotFound):
		return auditErrNotFound
	case errors.Is(err, ErrInvalid):
		return auditErrInvalid
	case errors.Is(err, ErrSessionUnavailable),
		errors.Is(err, ErrTokenUnavailable),
		errors.Is(err, ErrConfigUnavailable):
		return auditErrBackendUnavailable
	default:
		return auditErrInternal
	}
}
