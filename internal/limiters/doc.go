// Package limiters provides the Redis-backed failure counters behind the
// account security guard.
//
// # Limiters
//
//   - [LockoutLimiter] — per-tenant, per-user failed login counter with a
//     rolling TTL window.
//
// All limiters are nil-safe: calling any method on a nil receiver returns nil.
//
// # Architecture boundaries
//
// Each limiter owns its own Redis key namespace and error types. Policy
// thresholds come from Config structs supplied at construction time.
//
// # What this package must NOT do
//
//   - Import accesscore or any sibling package.
//   - Make policy decisions beyond counting — the engine decides consequences.
package limiters
