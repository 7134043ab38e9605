// Package session tracks live login contexts: a versioned binary session
// record, validity and idle-timeout checks computed lazily against a supplied
// instant, idempotent revocation, and a Redis-backed store with a per-user
// session index and per-tenant counters.
//
// Idle sessions are reported, never auto-revoked; the embedder decides
// whether idleness triggers revocation. Extending expiration and refreshing
// activity are distinct operations touching distinct windows (liveness vs
// idle) and must not be conflated.
package session
