package accesscore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRefreshTokenRotation(t *testing.T) {
	env := newTestEngine(t, nil)
	ctx := context.Background()

	issued, plaintext, err := env.engine.IssueRefreshToken(ctx, "acme", "u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}

	successor, successorPlain, err := env.engine.RotateRefreshToken(ctx, "acme", plaintext)
	if err != nil {
		t.Fatalf("RotateRefreshToken failed: %v", err)
	}
	if successor.ID == issued.ID {
		t.Fatal("successor must be a new token")
	}
	if successor.UserID != "u1" {
		t.Fatal("successor must keep the user binding")
	}

	// The successor rotates normally in turn.
	if _, _, err := env.engine.RotateRefreshToken(ctx, "acme", successorPlain); err != nil {
		t.Fatalf("second rotation failed: %v", err)
	}
}

func TestRefreshTokenReplayDetection(t *testing.T) {
	env := newTestEngine(t, func(c *Config) {
		c.Metrics.Enabled = true
	})
	ctx := context.Background()

	_, plaintext, err := env.engine.IssueRefreshToken(ctx, "acme", "u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}
	if _, _, err := env.engine.RotateRefreshToken(ctx, "acme", plaintext); err != nil {
		t.Fatalf("RotateRefreshToken failed: %v", err)
	}

	_, _, err = env.engine.RotateRefreshToken(ctx, "acme", plaintext)
	if !errors.Is(err, ErrReplayDetected) {
		t.Fatalf("expected ErrReplayDetected, got %v", err)
	}

	snapshot := env.engine.MetricsSnapshot()
	if snapshot.Counters[MetricReplayDetected] != 1 {
		t.Fatalf("expected one replay observation, got %d", snapshot.Counters[MetricReplayDetected])
	}
}

func TestRotateRefreshTokenInvalidInput(t *testing.T) {
	env := newTestEngine(t, nil)
	ctx := context.Background()

	if _, _, err := env.engine.RotateRefreshToken(ctx, "acme", "garbage"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for malformed token, got %v", err)
	}

	_, plaintext, err := env.engine.IssueRefreshToken(ctx, "acme", "u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}
	if _, _, err := env.engine.RotateRefreshToken(ctx, "globex", plaintext); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound across tenants, got %v", err)
	}
}

func TestRotateExpiredRefreshToken(t *testing.T) {
	env := newTestEngine(t, func(c *Config) {
		c.RefreshToken.TTL = time.Hour
	})
	ctx := context.Background()

	_, plaintext, err := env.engine.IssueRefreshToken(ctx, "acme", "u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}

	env.clock.Advance(2 * time.Hour)
	if _, _, err := env.engine.RotateRefreshToken(ctx, "acme", plaintext); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestRevokeRefreshToken(t *testing.T) {
	env := newTestEngine(t, nil)
	ctx := context.Background()

	issued, plaintext, err := env.engine.IssueRefreshToken(ctx, "acme", "u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}

	if err := env.engine.RevokeRefreshToken(ctx, "acme", issued.ID, "logout"); err != nil {
		t.Fatalf("RevokeRefreshToken failed: %v", err)
	}
	if err := env.engine.RevokeRefreshToken(ctx, "acme", issued.ID, "again"); !errors.Is(err, ErrAlreadyRevoked) {
		t.Fatalf("expected ErrAlreadyRevoked, got %v", err)
	}
	if _, _, err := env.engine.RotateRefreshToken(ctx, "acme", plaintext); !errors.Is(err, ErrAlreadyRevoked) {
		t.Fatalf("expected ErrAlreadyRevoked on rotate after revoke, got %v", err)
	}
}

func TestPasswordResetTokenConsume(t *testing.T) {
	env := newTestEngine(t, nil)
	ctx := context.Background()

	_, plaintext, err := env.engine.IssuePasswordResetToken(ctx, "acme", "u1")
	if err != nil {
		t.Fatalf("IssuePasswordResetToken failed: %v", err)
	}

	consumed, err := env.engine.ConsumePasswordResetToken(ctx, "acme", plaintext)
	if err != nil {
		t.Fatalf("ConsumePasswordResetToken failed: %v", err)
	}
	if consumed.UserID != "u1" {
		t.Fatalf("unexpected consumed token: %+v", consumed)
	}

	if _, err := env.engine.ConsumePasswordResetToken(ctx, "acme", plaintext); !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed on second consume, got %v", err)
	}
}

func TestPasswordResetTokenExpiry(t *testing.T) {
	env := newTestEngine(t, nil)
	ctx := context.Background()

	_, plaintext, err := env.engine.IssuePasswordResetToken(ctx, "acme", "u1")
	if err != nil {
		t.Fatalf("IssuePasswordResetToken failed: %v", err)
	}

	env.clock.Advance(61 * time.Minute)
	if _, err := env.engine.ConsumePasswordResetToken(ctx, "acme", plaintext); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestInvalidatePasswordResetToken(t *testing.T) {
	env := newTestEngine(t, nil)
	ctx := context.Background()

	issued, plaintext, err := env.engine.IssuePasswordResetToken(ctx, "acme", "u1")
	if err != nil {
		t.Fatalf("IssuePasswordResetToken failed: %v", err)
	}

	if err := env.engine.InvalidatePasswordResetToken(ctx, "acme", issued.ID, "password changed"); err != nil {
		t.Fatalf("InvalidatePasswordResetToken failed: %v", err)
	}
	if _, err := env.engine.ConsumePasswordResetToken(ctx, "acme", plaintext); !errors.Is(err, ErrAlreadyInvalidated) {
		t.Fatalf("expected ErrAlreadyInvalidated, got %v", err)
	}
}
