package mfa

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrInvalidStateTransition is an exported constant or variable used by the access control core.
	ErrInvalidStateTransition = errors.New("invalid mfa state transition")
	// ErrMethodLocked is an exported constant or variable used by the access control core.
	ErrMethodLocked = errors.New("mfa method locked")
	// ErrDuplicatePrimaryConflict is an exported constant or variable used by the access control core.
	ErrDuplicatePrimaryConflict = errors.New("duplicate primary mfa method")
	// ErrMethodNotFound is an exported constant or variable used by the access control core.
	ErrMethodNotFound = errors.New("mfa method not found")
)

// Config holds the method lockout policy.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// DefaultConfig returns the default lockout policy: five failures lock the
// method for fifteen minutes.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		LockDuration: 15 * time.Minute,
	}
}

// Method is one second factor belonging to a user. There is at most one
// method per (user, type).
//
// Method instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Method struct {
	UserID   string
	TenantID string
	Type     MethodType

	// Secret holds method-specific material (authenticator seed, hashed
	// backup codes); Contact holds the SMS/email destination.
	Secret  []byte
	Contact string

	Verified bool
	Enabled  bool
	Primary  bool

	UsageCount     uint32
	FailedAttempts uint16
	LockedUntil    int64

	CreatedAt  int64
	VerifiedAt int64
}

func newMethod(userID, tenantID string, methodType MethodType, now time.Time) *Method {
	return &Method{
		UserID:    userID,
		TenantID:  tenantID,
		Type:      methodType,
		CreatedAt: now.Unix(),
	}
}

// CreateAuthenticator enrolls an authenticator-app method with its seed.
func CreateAuthenticator(userID, tenantID string, secret []byte, now time.Time) *Method {
	m := newMethod(userID, tenantID, MethodAuthenticator, now)
	m.Secret = secret
	return m
}

// CreateSms enrolls an SMS method delivering codes to the given phone number.
func CreateSms(userID, tenantID, phone string, now time.Time) *Method {
	m := newMethod(userID, tenantID, MethodSMS, now)
	m.Contact = phone
	return m
}

// CreateEmail enrolls an email method delivering codes to the given address.
func CreateEmail(userID, tenantID, address string, now time.Time) *Method {
	m := newMethod(userID, tenantID, MethodEmail, now)
	m.Contact = address
	return m
}

// CreateBackupCodes enrolls a backup-code method holding the code hashes.
func CreateBackupCodes(userID, tenantID string, codeHashes []byte, now time.Time) *Method {
	m := newMethod(userID, tenantID, MethodBackupCodes, now)
	m.Secret = codeHashes
	return m
}

// Locked reports whether the failure lock is in effect at now.
func (m *Method) Locked(now time.Time) bool {
	return m.LockedUntil > 0 && now.Unix() < m.LockedUntil
}

// Verify records a successful challenge for the method. It fails with
// [ErrMethodLocked] while the failure lock is in effect; on success it marks
// the method verified, resets the failure counter, and clears the lock.
func (m *Method) Verify(now time.Time) error {
	if m.Locked(now) {
		return ErrMethodLocked
	}

	if !m.Verified {
		m.Verified = true
		m.VerifiedAt = now.Unix()
	}
	m.UsageCount++
	m.FailedAttempts = 0
	m.LockedUntil = 0
	return nil
}

// RecordFailure counts one failed challenge on the method aggregate and
// applies the lock when the threshold is reached. Returns true when this
// failure locked the method. Callers sharing the counter across processes
// should derive it atomically and use [Method.ApplyFailureCount] instead.
func (m *Method) RecordFailure(now time.Time, cfg Config) bool {
	return m.ApplyFailureCount(now, int(m.FailedAttempts)+1, cfg)
}

// ApplyFailureCount syncs the aggregate with an authoritative failure count
// (a shared atomic counter) and applies the lock when the threshold is
// reached. Returns true when this count is the one that locked the method.
func (m *Method) ApplyFailureCount(now time.Time, count int, cfg Config) bool {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.LockDuration <= 0 {
		cfg.LockDuration = DefaultConfig().LockDuration
	}

	if count < 0 {
		count = 0
	}
	if count > math.MaxUint16 {
		count = math.MaxUint16
	}
	m.FailedAttempts = uint16(count)

	if count >= cfg.MaxAttempts {
		m.LockedUntil = now.Add(cfg.LockDuration).Unix()
		return count == cfg.MaxAttempts
	}
	return false
}

// Enable transitions Verified&Disabled -> Enabled. Enabling an unverified
// method fails with [ErrInvalidStateTransition]. Primary promotion is the
// collection's concern; see [EnableMethod].
func (m *Method) Enable() error {
	if !m.Verified {
		return ErrInvalidStateTransition
	}
	m.Enabled = true
	return nil
}

// Disable turns the method off and clears its primary status.
func (m *Method) Disable() {
	m.Enabled = false
	m.Primary = false
}
