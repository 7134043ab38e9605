package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
)

const (
	// SecretSize is the raw entropy carried by every credential secret.
	SecretSize = 32

	tokenRawSize = 16 + SecretSize // uuid bytes + secret
)

// Secret is the raw random material behind a refresh or reset token.
type Secret [SecretSize]byte

// NewSecret generates a cryptographically random [Secret].
func NewSecret() (Secret, error) {
	var secret Secret
	_, err := rand.Read(secret[:])
	return secret, err
}

// HashSecret computes the storage hash of a secret. Only this hash is ever
// persisted.
func HashSecret(secret Secret) [32]byte {
	return sha256.Sum256(secret[:])
}

// HashesEqual compares two secret hashes in constant time.
func HashesEqual(a, b [32]byte) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

// NewTokenID generates a random token identifier.
func NewTokenID() string {
	return uuid.NewString()
}

// EncodeToken packs a token ID and its secret into the opaque string handed
// to the caller exactly once at issuance.
func EncodeToken(tokenID string, secret Secret) (string, error) {
	id, err := uuid.Parse(tokenID)
	if err != nil {
		return "", err
	}

	var raw [tokenRawSize]byte
	copy(raw[:16], id[:])
	copy(raw[16:], secret[:])

	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// DecodeToken unpacks an opaque token string into its ID and secret.
func DecodeToken(token string) (string, Secret, error) {
	var secret Secret

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", secret, err
	}
	if len(raw) != tokenRawSize {
		return "", secret, errors.New("invalid token size")
	}

	id, err := uuid.FromBytes(raw[:16])
	if err != nil {
		return "", secret, err
	}
	copy(secret[:], raw[16:])

	return id.String(), secret, nil
}
