package session

import "time"

// Session defines a public type used by accesscore APIs.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Session struct {
	SessionID string
	UserID    string
	TenantID  string

	TokenHash [32]byte

	Device string
	IP     string

	CreatedAt      int64
	ExpiresAt      int64
	LastActivityAt int64

	Locked       bool
	Revoked      bool
	RevokedAt    int64
	RevokeReason string
}

// New creates an active session for a user.
func New(sessionID, userID, tenantID string, tokenHash [32]byte, device, ip string, now time.Time, lifetime time.Duration) *Session {
	return &Session{
		SessionID:      sessionID,
		UserID:         userID,
		TenantID:       tenantID,
		TokenHash:      tokenHash,
		Device:         device,
		IP:             ip,
		CreatedAt:      now.Unix(),
		ExpiresAt:      now.Add(lifetime).Unix(),
		LastActivityAt: now.Unix(),
	}
}

// Expired reports whether the session's liveness window has elapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return now.Unix() > s.ExpiresAt
}

// Valid reports whether the session may be used at now: not locked, not
// expired, not revoked.
func (s *Session) Valid(now time.Time) bool {
	return !s.Locked && !s.Revoked && !s.Expired(now)
}

// Revoke marks the session revoked with a reason. The operation is
// idempotent in effect: a second call updates the reason but keeps the
// original revocation timestamp and never fails.
func (s *Session) Revoke(now time.Time, reason string) {
	if s.Revoked {
		s.RevokeReason = reason
		return
	}
	s.Revoked = true
	s.RevokedAt = now.Unix()
	s.RevokeReason = reason
}

// UpdateActivity refreshes the last-activity timestamp feeding the idle
// window. It does not touch the liveness window; see
// [Session.ExtendExpiration].
func (s *Session) UpdateActivity(now time.Time) {
	s.LastActivityAt = now.Unix()
}

// ExtendExpiration pushes the liveness window forward. It does not touch the
// idle window; see [Session.UpdateActivity].
func (s *Session) ExtendExpiration(now time.Time, extension time.Duration) {
	s.ExpiresAt = now.Add(extension).Unix()
}

// IdleExceeded reports whether the session has been inactive longer than
// idleTimeout at now. A non-positive timeout disables idle reporting.
func (s *Session) IdleExceeded(now time.Time, idleTimeout time.Duration) bool {
	if idleTimeout <= 0 {
		return false
	}
	return now.Sub(time.Unix(s.LastActivityAt, 0)) > idleTimeout
}
