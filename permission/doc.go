// Package permission implements the authorization model: permission grants
// attached to roles and groups, effective group membership windows, the
// tenant-safe group hierarchy, and the default-deny resolution engine.
//
// A grant only ever adds access. There is no deny grant type, so adding a
// grant can never remove access gained elsewhere; the resolver's decision is
// grant-existence, not grant-ranking.
package permission
