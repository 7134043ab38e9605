package permission

import "strings"

// Grant defines a public type used by accesscore APIs.
//
// Grant instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Grant struct {
	Resource string
	Action   string
	Scope    string // empty = wildcard
	Priority int
	Active   bool
}

// GrantSource identifies whether a matched grant came from a role or a group.
type GrantSource uint8

const (
	// SourceRole is an exported constant or variable used by the access control core.
	SourceRole GrantSource = iota
	// SourceGroup is an exported constant or variable used by the access control core.
	SourceGroup
)

// MatchedGrant pairs a matching grant with its source for administrative
// conflict display. Priority ordering is informational only and never
// influences the allow/deny decision.
type MatchedGrant struct {
	Grant   Grant
	Source  GrantSource
	RoleID  string
	GroupID string
}

func (g Grant) matchesTarget(resource, action string) bool {
	return strings.EqualFold(g.Resource, resource) && strings.EqualFold(g.Action, action)
}

// MatchesRole reports whether the grant, interpreted under role-grant rules,
// covers the request. An unscoped grant is a wildcard; a scoped grant requires
// the requested scope to equal the grant scope.
func (g Grant) MatchesRole(resource, action, scope string) bool {
	if !g.Active || !g.matchesTarget(resource, action) {
		return false
	}
	if g.Scope == "" {
		return true
	}
	return strings.EqualFold(g.Scope, scope)
}

// MatchesGroup reports whether the grant, interpreted under group-grant rules,
// covers the request. Group matching is wildcard-on-either-side: an unscoped
// grant matches any requested scope, and an unscoped request matches any
// grant. This is deliberately more permissive than [Grant.MatchesRole]; the
// asymmetry is preserved from the original policy and pinned by tests. Do not
// unify the two without revisiting that policy.
func (g Grant) MatchesGroup(resource, action, scope string) bool {
	if !g.Active || !g.matchesTarget(resource, action) {
		return false
	}
	if g.Scope == "" || scope == "" {
		return true
	}
	return strings.EqualFold(g.Scope, scope)
}
