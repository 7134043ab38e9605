package token

import (
	"time"

	"github.com/tenantsec/accesscore/internal"
)

// ResetState defines a public type used by accesscore APIs.
//
// ResetState instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ResetState uint8

const (
	// ResetActive is an exported constant or variable used by the access control core.
	ResetActive ResetState = iota
	// ResetUsed is an exported constant or variable used by the access control core.
	ResetUsed
	// ResetInvalidated is an exported constant or variable used by the access control core.
	ResetInvalidated
)

// ResetToken is a single-use password-reset credential artifact.
//
// ResetToken instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ResetToken struct {
	ID       string
	UserID   string
	TenantID string

	SecretHash [32]byte

	CreatedAt int64
	ExpiresAt int64

	State         ResetState
	UsedAt        int64
	ActorIP       string
	InvalidatedAt int64
	InvalidReason string
}

// IssueReset creates an active reset token and returns it together with the
// opaque plaintext credential, which is never persisted.
func IssueReset(now time.Time, userID, tenantID string, ttl time.Duration) (*ResetToken, string, error) {
	secret, err := internal.NewSecret()
	if err != nil {
		return nil, "", err
	}

	id := internal.NewTokenID()
	plaintext, err := internal.EncodeToken(id, secret)
	if err != nil {
		return nil, "", err
	}

	return &ResetToken{
		ID:         id,
		UserID:     userID,
		TenantID:   tenantID,
		SecretHash: internal.HashSecret(secret),
		CreatedAt:  now.Unix(),
		ExpiresAt:  now.Add(ttl).Unix(),
		State:      ResetActive,
	}, plaintext, nil
}

// Expired reports whether the token's lifetime has elapsed at now.
func (t *ResetToken) Expired(now time.Time) bool {
	return now.Unix() > t.ExpiresAt
}

// ValidateCanBeUsed checks, in order, used-state, invalidated-state, then
// expiry, and reports the first violated condition. The ordering matters:
// clients must be told a token was consumed or cancelled before being told it
// has merely expired.
func (t *ResetToken) ValidateCanBeUsed(now time.Time) error {
	if t.State == ResetUsed {
		return ErrAlreadyUsed
	}
	if t.State == ResetInvalidated {
		return ErrAlreadyInvalidated
	}
	if t.Expired(now) {
		return ErrExpired
	}
	return nil
}

// MarkUsed transitions Active -> Used after [ResetToken.ValidateCanBeUsed]
// passes. Used is absorbing.
func (t *ResetToken) MarkUsed(now time.Time, actorIP string) error {
	if err := t.ValidateCanBeUsed(now); err != nil {
		return err
	}

	t.State = ResetUsed
	t.UsedAt = now.Unix()
	t.ActorIP = actorIP
	return nil
}

// Invalidate transitions Active -> Invalidated with a reason (e.g. the user
// completed a password change through another channel). Terminal states are
// absorbing.
func (t *ResetToken) Invalidate(now time.Time, reason string) error {
	if t.State == ResetUsed {
		return ErrAlreadyUsed
	}
	if t.State == ResetInvalidated {
		return ErrAlreadyInvalidated
	}

	t.State = ResetInvalidated
	t.InvalidatedAt = now.Unix()
	t.InvalidReason = reason
	return nil
}
