// Package mfa implements per-user, per-method multi-factor state machines:
// enrollment, verification, enable/disable, failure lockout, and the
// single-primary rule.
//
// The method lifecycle is Unverified&Disabled -> Verified&Disabled ->
// Enabled -> Disabled. Enabling requires prior verification; setting primary
// requires Enabled. A Locked sub-state applies independently once failed
// attempts reach the configured threshold and clears on successful
// verification.
//
// Cross-method invariants (one primary per user, auto-promotion) operate on
// the full method collection inside one transactional boundary supplied by
// the caller; see [EnableMethod], [DisableMethod], and [SetPrimary].
package mfa
