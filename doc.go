// Package accesscore provides the identity-and-access-control core for a
// multi-tenant application: default-deny permission resolution over roles and
// group hierarchies, rotating opaque refresh tokens with replay detection,
// password-reset tokens, per-method MFA state machines, Redis-backed session
// controls, and account lockout with schedule gating.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// accesscore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (Tenant, UserRecord, AuditEvent, MetricsSnapshot). Secret
// handling and atomic counter plumbing live under internal/ and are never
// exported. Persistence of principals, roles, groups, and MFA methods is the
// embedder's responsibility, supplied through the [UserProvider] and
// [permission.Directory] interfaces.
//
// # What this package must NOT do
//
//   - Store a plaintext credential secret. Issuance returns the secret exactly
//     once; only a SHA-256 hash is persisted.
//   - Conflate a policy Deny with a caller error. Authorize returns Deny as a
//     normal outcome; ErrTenantMismatch and ErrPrincipalNotFound are errors.
//   - Run background sweepers. Expiry, lockout, and idle timeouts are computed
//     lazily against the injected [Clock].
package accesscore
