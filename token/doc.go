// Package token implements the credential lifecycle: rotating refresh tokens
// and single-use password-reset tokens. Both artifacts store only a SHA-256
// hash of their secret; the plaintext is returned exactly once at issuance.
//
// State machines are absorbing: a token that reaches Used, Revoked, or
// Invalidated can never transition again, and presenting a Used refresh token
// is surfaced as ErrAlreadyUsed so callers can treat it as a replay signal
// distinct from ordinary invalid-token errors.
//
// The Redis-backed [Store] provides the single-writer guarantee for rotation:
// two callers racing to rotate the same token resolve through an optimistic
// WATCH transaction, so exactly one wins and the other observes the terminal
// state.
package token
