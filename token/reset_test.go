package token

import (
	"errors"
	"testing"
	"time"
)

func issueTestReset(t *testing.T, ttl time.Duration) *ResetToken {
	t.Helper()

	tok, plaintext, err := IssueReset(testNow(), "u1", "acme", ttl)
	if err != nil {
		t.Fatalf("IssueReset failed: %v", err)
	}
	if plaintext == "" {
		t.Fatal("expected non-empty plaintext credential")
	}
	return tok
}

func TestResetExpiresAfterLifetime(t *testing.T) {
	tok := issueTestReset(t, time.Hour)

	if err := tok.ValidateCanBeUsed(testNow().Add(59 * time.Minute)); err != nil {
		t.Fatalf("expected token to be usable inside its lifetime, got %v", err)
	}

	err := tok.ValidateCanBeUsed(testNow().Add(61 * time.Minute))
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired after lifetime, got %v", err)
	}
}

func TestResetMarkUsedOnce(t *testing.T) {
	tok := issueTestReset(t, time.Hour)

	if err := tok.MarkUsed(testNow(), "203.0.113.9"); err != nil {
		t.Fatalf("MarkUsed failed: %v", err)
	}
	if tok.State != ResetUsed {
		t.Fatalf("expected Used state, got %v", tok.State)
	}

	if err := tok.MarkUsed(testNow(), ""); !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed on second use, got %v", err)
	}
}

func TestResetValidationOrder(t *testing.T) {
	// An expired used token reports used, not expired; the same holds for
	// invalidated. Clients are told what happened to the token first.
	used := issueTestReset(t, time.Hour)
	if err := used.MarkUsed(testNow(), ""); err != nil {
		t.Fatalf("MarkUsed failed: %v", err)
	}
	if err := used.ValidateCanBeUsed(testNow().Add(24 * time.Hour)); !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed before expiry check, got %v", err)
	}

	invalidated := issueTestReset(t, time.Hour)
	if err := invalidated.Invalidate(testNow(), "password changed elsewhere"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if err := invalidated.ValidateCanBeUsed(testNow().Add(24 * time.Hour)); !errors.Is(err, ErrAlreadyInvalidated) {
		t.Fatalf("expected ErrAlreadyInvalidated before expiry check, got %v", err)
	}
}

func TestResetInvalidateIsTerminal(t *testing.T) {
	tok := issueTestReset(t, time.Hour)

	if err := tok.Invalidate(testNow(), "admin request"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if tok.InvalidReason != "admin request" {
		t.Fatalf("expected invalidation reason, got %q", tok.InvalidReason)
	}

	if err := tok.Invalidate(testNow(), "again"); !errors.Is(err, ErrAlreadyInvalidated) {
		t.Fatalf("expected ErrAlreadyInvalidated, got %v", err)
	}
	if err := tok.MarkUsed(testNow(), ""); !errors.Is(err, ErrAlreadyInvalidated) {
		t.Fatalf("expected ErrAlreadyInvalidated on use after invalidate, got %v", err)
	}

	used := issueTestReset(t, time.Hour)
	if err := used.MarkUsed(testNow(), ""); err != nil {
		t.Fatalf("MarkUsed failed: %v", err)
	}
	if err := used.Invalidate(testNow(), "late"); !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed on invalidate after use, got %v", err)
	}
}
