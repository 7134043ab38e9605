package permission

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	// ErrPrincipalNotFound is an exported constant or variable used by the access control core.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrTenantMismatch is an exported constant or variable used by the access control core.
	ErrTenantMismatch = errors.New("tenant mismatch")
)

// Decision is the outcome of an authorization request. Deny is a normal
// successful outcome, not an error.
type Decision uint8

const (
	// Deny is an exported constant or variable used by the access control core.
	Deny Decision = iota
	// Allow is an exported constant or variable used by the access control core.
	Allow
)

// String describes the string operation and its observable behavior.
func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Principal is the resolver's view of a user: its tenant and role
// assignments. An empty TenantID marks a platform-level principal.
type Principal struct {
	ID       string
	TenantID string
	RoleIDs  []string
}

// Role defines a public type used by accesscore APIs.
//
// Role instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Role struct {
	ID       string
	TenantID string // empty = platform role
	Name     string
	Grants   []Grant
	Active   bool
}

// Directory is the persistence gateway the resolver reads from. All lookups
// are tenant-scoped by the caller's principal.
type Directory interface {
	Principal(ctx context.Context, principalID string) (*Principal, error)
	Role(ctx context.Context, tenantID, roleID string) (*Role, error)
	Memberships(ctx context.Context, tenantID, principalID string) ([]Membership, error)
	Group(ctx context.Context, tenantID, groupID string) (*Group, error)
}

// AccessRequest describes one authorization question: may the principal
// perform Action on Resource, optionally narrowed by Scope, within
// ResourceTenantID.
type AccessRequest struct {
	PrincipalID      string
	ResourceTenantID string
	Resource         string
	Action           string
	Scope            string
}

// Resolver is the permission resolution engine. It is stateless; every
// decision reads the directory at the injected clock's current instant.
//
// Resolver instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Resolver struct {
	dir Directory
	now func() time.Time
}

// NewResolver creates a [Resolver] over the given directory. now supplies the
// instant used for effective-membership checks and must not be nil.
func NewResolver(dir Directory, now func() time.Time) *Resolver {
	return &Resolver{dir: dir, now: now}
}

// Authorize decides an [AccessRequest] under the default-deny rule: the
// request is [Allow] iff at least one active role or group grant matches.
//
// [ErrPrincipalNotFound] and [ErrTenantMismatch] are caller errors and must
// not be interpreted as a policy [Deny].
func (r *Resolver) Authorize(ctx context.Context, req AccessRequest) (Decision, error) {
	matches, err := r.resolve(ctx, req, true)
	if err != nil {
		return Deny, err
	}
	if len(matches) > 0 {
		return Allow, nil
	}
	return Deny, nil
}

// MatchingGrants returns every active grant matching the request, ordered by
// descending priority for administrative conflict display. The ordering is
// informational; callers must not use it to suppress a lower-priority grant.
func (r *Resolver) MatchingGrants(ctx context.Context, req AccessRequest) ([]MatchedGrant, error) {
	matches, err := r.resolve(ctx, req, false)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Grant.Priority > matches[j].Grant.Priority
	})
	return matches, nil
}

func (r *Resolver) resolve(ctx context.Context, req AccessRequest, firstMatchOnly bool) ([]MatchedGrant, error) {
	principal, err := r.dir.Principal(ctx, req.PrincipalID)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, ErrPrincipalNotFound
	}

	// Platform principals (no tenant) may be evaluated against any resource
	// tenant; tenant-bound principals only against their own.
	if principal.TenantID != "" && !strings.EqualFold(principal.TenantID, req.ResourceTenantID) {
		return nil, ErrTenantMismatch
	}

	var matches []MatchedGrant

	for _, roleID := range principal.RoleIDs {
		role, err := r.dir.Role(ctx, principal.TenantID, roleID)
		if err != nil {
			return nil, err
		}
		if role == nil || !role.Active {
			continue
		}
		for _, grant := range role.Grants {
			if !grant.MatchesRole(req.Resource, req.Action, req.Scope) {
				continue
			}
			matches = append(matches, MatchedGrant{Grant: grant, Source: SourceRole, RoleID: role.ID})
			if firstMatchOnly {
				return matches, nil
			}
		}
	}

	now := r.now()
	memberships, err := r.dir.Memberships(ctx, principal.TenantID, principal.ID)
	if err != nil {
		return nil, err
	}

	for _, membership := range memberships {
		if !membership.EffectiveAt(now) {
			continue
		}
		group, err := r.dir.Group(ctx, principal.TenantID, membership.GroupID)
		if err != nil {
			return nil, err
		}
		if group == nil || !group.Active {
			continue
		}
		for _, grant := range group.Grants {
			if !grant.MatchesGroup(req.Resource, req.Action, req.Scope) {
				continue
			}
			matches = append(matches, MatchedGrant{Grant: grant, Source: SourceGroup, GroupID: group.ID})
			if firstMatchOnly {
				return matches, nil
			}
		}
	}

	return matches, nil
}
