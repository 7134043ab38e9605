package internaldefs

import (
	accesscore "github.com/tenantsec/accesscore"
)

// CounterDef defines a public type used by accesscore APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   accesscore.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by accesscore APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   accesscore.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the access control core.
var CounterDefs = []CounterDef{
	{ID: accesscore.MetricAuthorizeAllow, Name: "accesscore_authorize_allow_total", Help: "Authorization checks that produced an allow decision."},
	{ID: accesscore.MetricAuthorizeDeny, Name: "accesscore_authorize_deny_total", Help: "Authorization checks that produced a deny decision."},
	{ID: accesscore.MetricAuthorizeError, Name: "accesscore_authorize_error_total", Help: "Authorization checks that failed with an error."},
	{ID: accesscore.MetricRefreshIssued, Name: "accesscore_refresh_issued_total", Help: "Issued refresh tokens."},
	{ID: accesscore.MetricRefreshRotated, Name: "accesscore_refresh_rotated_total", Help: "Successful refresh token rotations."},
	{ID: accesscore.MetricRefreshRevoked, Name: "accesscore_refresh_revoked_total", Help: "Revoked refresh tokens."},
	{ID: accesscore.MetricReplayDetected, Name: "accesscore_replay_detected_total", Help: "Detected refresh token replay attempts."},
	{ID: accesscore.MetricResetIssued, Name: "accesscore_reset_issued_total", Help: "Issued password reset tokens."},
	{ID: accesscore.MetricResetConsumed, Name: "accesscore_reset_consumed_total", Help: "Consumed password reset tokens."},
	{ID: accesscore.MetricResetInvalidated, Name: "accesscore_reset_invalidated_total", Help: "Administratively invalidated password reset tokens."},
	{ID: accesscore.MetricResetFailure, Name: "accesscore_reset_failure_total", Help: "Failed password reset consumptions."},
	{ID: accesscore.MetricLoginAllowed, Name: "accesscore_login_allowed_total", Help: "Login gate checks that passed."},
	{ID: accesscore.MetricLoginLockedOut, Name: "accesscore_login_locked_out_total", Help: "Login gate checks denied by an active lockout."},
	{ID: accesscore.MetricLoginOutsideWorkingDays, Name: "accesscore_login_outside_working_days_total", Help: "Login gate checks denied by the working-day policy."},
	{ID: accesscore.MetricLoginTimeOffActive, Name: "accesscore_login_time_off_active_total", Help: "Login gate checks denied by an active time-off record."},
	{ID: accesscore.MetricLoginFailureRecorded, Name: "accesscore_login_failure_recorded_total", Help: "Recorded failed login attempts."},
	{ID: accesscore.MetricLockoutApplied, Name: "accesscore_lockout_applied_total", Help: "Account lockouts applied at the failure threshold."},
	{ID: accesscore.MetricSessionCreated, Name: "accesscore_session_created_total", Help: "Created sessions."},
	{ID: accesscore.MetricSessionRevoked, Name: "accesscore_session_revoked_total", Help: "Revoked sessions."},
	{ID: accesscore.MetricSessionRevokedAll, Name: "accesscore_session_revoked_all_total", Help: "Revoke-all-sessions operations."},
	{ID: accesscore.MetricSessionIdle, Name: "accesscore_session_idle_total", Help: "Session validations that exceeded the idle threshold."},
	{ID: accesscore.MetricMFAEnrolled, Name: "accesscore_mfa_enrolled_total", Help: "Enrolled MFA methods."},
	{ID: accesscore.MetricMFAVerified, Name: "accesscore_mfa_verified_total", Help: "Successful MFA method verifications."},
	{ID: accesscore.MetricMFAFailure, Name: "accesscore_mfa_failure_total", Help: "Failed MFA verification attempts."},
	{ID: accesscore.MetricMFALocked, Name: "accesscore_mfa_locked_total", Help: "MFA methods locked at the failure threshold."},
	{ID: accesscore.MetricMFAEnabled, Name: "accesscore_mfa_enabled_total", Help: "Enabled MFA methods."},
	{ID: accesscore.MetricMFADisabled, Name: "accesscore_mfa_disabled_total", Help: "Disabled MFA methods."},
	{ID: accesscore.MetricMFAPrimaryChanged, Name: "accesscore_mfa_primary_changed_total", Help: "Primary MFA method changes."},
	{ID: accesscore.MetricBootstrapInitialized, Name: "accesscore_bootstrap_initialized_total", Help: "Successful first-run initializations."},
}

// HistogramDefs is an exported constant or variable used by the access control core.
var HistogramDefs = []HistogramDef{
	{ID: accesscore.MetricAuthorizeLatency, Name: "accesscore_authorize_latency_seconds", Help: "Authorize latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the access control core.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the access control core.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
