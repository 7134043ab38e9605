package mfa

import (
	"errors"
	"testing"
	"time"
)

func testMethod(t *testing.T, now time.Time) *Method {
	t.Helper()
	return CreateSms("user-1", "tenant-1", "+15550100", now)
}

func TestEnableRequiresVerification(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := testMethod(t, now)

	if err := m.Enable(); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("Enable on unverified method: got %v, want ErrInvalidStateTransition", err)
	}

	if err := m.Verify(now); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := m.Enable(); err != nil {
		t.Fatalf("Enable after Verify: %v", err)
	}
	if !m.Enabled {
		t.Fatal("method should be enabled")
	}
}

func TestVerifyResetsFailureState(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := testMethod(t, now)
	cfg := DefaultConfig()

	m.RecordFailure(now, cfg)
	m.RecordFailure(now, cfg)
	if m.FailedAttempts != 2 {
		t.Fatalf("FailedAttempts = %d, want 2", m.FailedAttempts)
	}

	if err := m.Verify(now); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if m.FailedAttempts != 0 || m.LockedUntil != 0 {
		t.Fatalf("Verify should reset failure state, got attempts=%d lockedUntil=%d", m.FailedAttempts, m.LockedUntil)
	}
}

func TestFailureThresholdLocksMethod(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := testMethod(t, now)
	cfg := DefaultConfig()

	for i := 0; i < cfg.MaxAttempts-1; i++ {
		if locked := m.RecordFailure(now, cfg); locked {
			t.Fatalf("locked after %d failures, threshold is %d", i+1, cfg.MaxAttempts)
		}
	}
	if locked := m.RecordFailure(now, cfg); !locked {
		t.Fatalf("not locked after %d failures", cfg.MaxAttempts)
	}
	if !m.Locked(now) {
		t.Fatal("Locked should report true inside the lock window")
	}

	if err := m.Verify(now); !errors.Is(err, ErrMethodLocked) {
		t.Fatalf("Verify while locked: got %v, want ErrMethodLocked", err)
	}

	after := now.Add(cfg.LockDuration + time.Second)
	if m.Locked(after) {
		t.Fatal("lock should expire after the configured duration")
	}
	if err := m.Verify(after); err != nil {
		t.Fatalf("Verify after lock expiry: %v", err)
	}
}

func TestApplyFailureCountLocksAtThreshold(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := testMethod(t, now)
	cfg := DefaultConfig()

	if locked := m.ApplyFailureCount(now, cfg.MaxAttempts-1, cfg); locked {
		t.Fatal("locked below threshold")
	}
	if m.FailedAttempts != uint16(cfg.MaxAttempts-1) {
		t.Fatalf("FailedAttempts = %d, want %d", m.FailedAttempts, cfg.MaxAttempts-1)
	}

	if locked := m.ApplyFailureCount(now, cfg.MaxAttempts, cfg); !locked {
		t.Fatal("threshold count should lock the method")
	}

	// Counts past the threshold keep the lock but never report a fresh one.
	if locked := m.ApplyFailureCount(now, cfg.MaxAttempts+3, cfg); locked {
		t.Fatal("count past threshold reported a fresh lock")
	}
	if !m.Locked(now) {
		t.Fatal("method should stay locked")
	}
}

func TestDisableClearsPrimary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := testMethod(t, now)
	if err := m.Verify(now); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := m.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	m.Primary = true

	m.Disable()
	if m.Enabled || m.Primary {
		t.Fatalf("Disable should clear Enabled and Primary, got enabled=%v primary=%v", m.Enabled, m.Primary)
	}
}

func TestMethodSetFlags(t *testing.T) {
	var set MethodSet
	set.Add(MethodSMS)
	set.Add(MethodBackupCodes)

	if !set.Has(MethodSMS) || !set.Has(MethodBackupCodes) {
		t.Fatal("added types should be present")
	}
	if set.Has(MethodAuthenticator) {
		t.Fatal("authenticator was never added")
	}
	if set.Count() != 2 {
		t.Fatalf("Count = %d, want 2", set.Count())
	}

	set.Remove(MethodSMS)
	if set.Has(MethodSMS) {
		t.Fatal("removed type should be absent")
	}
}
