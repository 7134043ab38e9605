package accesscore

import (
	"errors"
	"time"
)

// Config defines a public type used by accesscore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Lockout       LockoutConfig
	MFA           MFAConfig
	Session       SessionConfig
	RefreshToken  RefreshTokenConfig
	PasswordReset PasswordResetConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines a public type used by accesscore APIs.
//
// LockoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutConfig struct {
	Enabled     bool
	MaxAttempts int
	Duration    time.Duration
}

/*
====================================
MFA CONFIG
====================================
*/

// MFAConfig defines a public type used by accesscore APIs.
//
// MFAConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MFAConfig struct {
	MaxAttempts  int
	LockDuration time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by accesscore APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
	Lifetime    time.Duration
	IdleTimeout time.Duration
}

/*
====================================
TOKEN CONFIG
====================================
*/

// RefreshTokenConfig defines a public type used by accesscore APIs.
//
// RefreshTokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshTokenConfig struct {
	TTL time.Duration
	// Retention bounds how long a consumed or revoked token record stays
	// readable for replay detection before Redis expires it.
	Retention time.Duration
}

// PasswordResetConfig defines a public type used by accesscore APIs.
//
// PasswordResetConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordResetConfig struct {
	TTL time.Duration
}

// AuditConfig defines a public type used by accesscore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by accesscore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return Config{
		Lockout: LockoutConfig{
			Enabled:     true,
			MaxAttempts: 5,
			Duration:    15 * time.Minute,
		},
		MFA: MFAConfig{
			MaxAttempts:  5,
			LockDuration: 15 * time.Minute,
		},
		Session: SessionConfig{
			RedisPrefix: "ases",
			Lifetime:    24 * time.Hour,
			IdleTimeout: 30 * time.Minute,
		},
		RefreshToken: RefreshTokenConfig{
			TTL:       720 * time.Hour,
			Retention: 24 * time.Hour,
		},
		PasswordReset: PasswordResetConfig{
			TTL: time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Lockout
	if c.Lockout.Enabled {
		if c.Lockout.MaxAttempts <= 0 {
			return errors.New("Lockout MaxAttempts must be > 0")
		}
		if c.Lockout.Duration < 0 {
			return errors.New("Lockout Duration must be >= 0")
		}
	}

	// MFA
	if c.MFA.MaxAttempts <= 0 {
		return errors.New("MFA MaxAttempts must be > 0")
	}
	if c.MFA.LockDuration <= 0 {
		return errors.New("MFA LockDuration must be > 0")
	}

	// Session
	if c.Session.Lifetime <= 0 {
		return errors.New("Session Lifetime must be > 0")
	}
	if c.Session.IdleTimeout < 0 {
		return errors.New("Session IdleTimeout must be >= 0")
	}
	if c.Session.IdleTimeout > 0 && c.Session.IdleTimeout > c.Session.Lifetime {
		return errors.New("Session IdleTimeout must not exceed Lifetime")
	}

	// Refresh tokens
	if c.RefreshToken.TTL <= 0 {
		return errors.New("RefreshToken TTL must be > 0")
	}
	if c.RefreshToken.Retention <= 0 {
		return errors.New("RefreshToken Retention must be > 0")
	}

	// Password reset
	if c.PasswordReset.TTL <= 0 {
		return errors.New("PasswordReset TTL must be > 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	return nil
}
