package accesscore

import (
	"strings"
	"time"
)

// AssertTenantAccess validates that an operation issued by a caller in
// callerTenantID may touch an entity owned by entityTenantID. The compare is
// case-insensitive. An empty entityTenantID marks a platform-scoped entity,
// reachable only by platform-scoped callers (empty callerTenantID). Every
// mutating entity operation routes through this check before side effects.
func AssertTenantAccess(entityTenantID, callerTenantID string) error {
	if entityTenantID == "" && callerTenantID == "" {
		return nil
	}
	if strings.EqualFold(entityTenantID, callerTenantID) {
		return nil
	}
	return ErrTenantMismatch
}

// Tenant is an isolated customer boundary. Tenant values are treated as
// immutable; state transitions return a new value instead of mutating in
// place, so a stale copy can never observe a half-applied change.
type Tenant struct {
	ID          string
	DisplayName string
	Active      bool
	Suspended   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTenant constructs an active, unsuspended tenant.
func NewTenant(id, displayName string, now time.Time) Tenant {
	return Tenant{
		ID:          id,
		DisplayName: displayName,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Usable reports whether principals of this tenant may act at all.
func (t Tenant) Usable() bool {
	return t.Active && !t.Suspended
}

// Deactivate returns a copy of the tenant with the active flag cleared.
func (t Tenant) Deactivate(now time.Time) Tenant {
	t.Active = false
	t.UpdatedAt = now
	return t
}

// Suspend returns a copy of the tenant marked suspended. Suspension is
// reversible; deactivation and suspension are independent flags.
func (t Tenant) Suspend(now time.Time) Tenant {
	t.Suspended = true
	t.UpdatedAt = now
	return t
}

// Reactivate returns a copy of the tenant with both the suspended and
// inactive states cleared.
func (t Tenant) Reactivate(now time.Time) Tenant {
	t.Active = true
	t.Suspended = false
	t.UpdatedAt = now
	return t
}

// AssertUsable returns the most specific failure for a tenant that cannot
// currently act: suspension wins over deactivation.
func (t Tenant) AssertUsable() error {
	if t.Suspended {
		return ErrTenantSuspended
	}
	if !t.Active {
		return ErrTenantInactive
	}
	return nil
}
