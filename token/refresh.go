package token

import (
	"errors"
	"time"

	"github.com/tenantsec/accesscore/internal"
)

var (
	// ErrAlreadyUsed is an exported constant or variable used by the access control core.
	ErrAlreadyUsed = errors.New("token already used")
	// ErrAlreadyRevoked is an exported constant or variable used by the access control core.
	ErrAlreadyRevoked = errors.New("token already revoked")
	// ErrAlreadyInvalidated is an exported constant or variable used by the access control core.
	ErrAlreadyInvalidated = errors.New("token already invalidated")
	// ErrExpired is an exported constant or variable used by the access control core.
	ErrExpired = errors.New("token expired")
	// ErrNotFound is an exported constant or variable used by the access control core.
	ErrNotFound = errors.New("token not found")
	// ErrSecretMismatch is an exported constant or variable used by the access control core.
	ErrSecretMismatch = errors.New("token secret mismatch")
)

// RefreshState defines a public type used by accesscore APIs.
//
// RefreshState instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshState uint8

const (
	// RefreshActive is an exported constant or variable used by the access control core.
	RefreshActive RefreshState = iota
	// RefreshUsed is an exported constant or variable used by the access control core.
	RefreshUsed
	// RefreshRevoked is an exported constant or variable used by the access control core.
	RefreshRevoked
)

// RefreshToken is a single-use rotating credential artifact. ReplacedByID
// links to the successor issued when the token was rotated, forming the
// rotation chain used to investigate stolen-token replays.
//
// RefreshToken instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshToken struct {
	ID       string
	UserID   string
	TenantID string

	SecretHash [32]byte

	CreatedAt int64
	ExpiresAt int64

	State        RefreshState
	UsedAt       int64
	ReplacedByID string
	RevokedAt    int64
	RevokeReason string
	ActorIP      string
}

// IssueRefresh creates an active refresh token and returns it together with
// the opaque plaintext credential. The plaintext is never persisted; callers
// must hand it to the client and drop it.
func IssueRefresh(now time.Time, userID, tenantID string, ttl time.Duration) (*RefreshToken, string, error) {
	secret, err := internal.NewSecret()
	if err != nil {
		return nil, "", err
	}

	id := internal.NewTokenID()
	plaintext, err := internal.EncodeToken(id, secret)
	if err != nil {
		return nil, "", err
	}

	return &RefreshToken{
		ID:         id,
		UserID:     userID,
		TenantID:   tenantID,
		SecretHash: internal.HashSecret(secret),
		CreatedAt:  now.Unix(),
		ExpiresAt:  now.Add(ttl).Unix(),
		State:      RefreshActive,
	}, plaintext, nil
}

// Expired reports whether the token's lifetime has elapsed at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.Unix() > t.ExpiresAt
}

// MarkUsed transitions Active -> Used, recording the replacement token that
// continues the rotation chain. Terminal states are absorbing: a Used token
// fails with [ErrAlreadyUsed] (the replay signal) and a Revoked token with
// [ErrAlreadyRevoked]. An Active token past expiry fails with [ErrExpired].
func (t *RefreshToken) MarkUsed(now time.Time, replacementID, actorIP string) error {
	switch t.State {
	case RefreshUsed:
		return ErrAlreadyUsed
	case RefreshRevoked:
		return ErrAlreadyRevoked
	}
	if t.Expired(now) {
		return ErrExpired
	}

	t.State = RefreshUsed
	t.UsedAt = now.Unix()
	t.ReplacedByID = replacementID
	t.ActorIP = actorIP
	return nil
}

// Revoke transitions Active -> Revoked with a reason and the acting caller's
// IP. Terminal states are absorbing, mirroring [RefreshToken.MarkUsed].
func (t *RefreshToken) Revoke(now time.Time, reason, actorIP string) error {
	switch t.State {
	case RefreshUsed:
		return ErrAlreadyUsed
	case RefreshRevoked:
		return ErrAlreadyRevoked
	}

	t.State = RefreshRevoked
	t.RevokedAt = now.Unix()
	t.RevokeReason = reason
	t.ActorIP = actorIP
	return nil
}
