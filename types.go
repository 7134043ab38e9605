package accesscore

import (
	"context"
	"time"

	"github.com/tenantsec/accesscore/mfa"
)

// AccountStatus represents the lifecycle state of a user account.
type AccountStatus uint8

const (
	// AccountActive is an exported constant or variable used by the access control core.
	AccountActive AccountStatus = iota
	// AccountPendingVerification is an exported constant or variable used by the access control core.
	AccountPendingVerification
	// AccountDisabled is an exported constant or variable used by the access control core.
	AccountDisabled
	// AccountLocked is an exported constant or variable used by the access control core.
	AccountLocked
	// AccountDeleted is an exported constant or variable used by the access control core.
	AccountDeleted
)

// WorkingDayMask is a 7-bit set of weekdays on which a user may log in.
// Bit 0 is Sunday, matching time.Weekday numbering.
type WorkingDayMask uint8

// Has describes the has operation and its observable behavior.
func (m WorkingDayMask) Has(day time.Weekday) bool {
	return m&(1<<uint(day)) != 0
}

// Add describes the add operation and its observable behavior.
func (m *WorkingDayMask) Add(day time.Weekday) {
	*m |= 1 << uint(day)
}

// Remove describes the remove operation and its observable behavior.
func (m *WorkingDayMask) Remove(day time.Weekday) {
	*m &^= 1 << uint(day)
}

// WeekdaysMask is the conventional Monday-through-Friday working set.
func WeekdaysMask() WorkingDayMask {
	var m WorkingDayMask
	for day := time.Monday; day <= time.Friday; day++ {
		m.Add(day)
	}
	return m
}

// AuditInfo records who created and last changed an entity and when.
// A capability record attached by composition to the entities that need it.
type AuditInfo struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// TenantScope carries the owning tenant of a tenant-scoped entity.
type TenantScope struct {
	TenantID string
}

// SoftDeleteState marks an entity as logically deleted without removing the
// record.
type SoftDeleteState struct {
	Deleted   bool
	DeletedAt time.Time
	DeletedBy string
}

// TimeOffRecord is an approved absence window during which login is denied.
// Until is inclusive at day granularity; callers pass the end of the last
// covered day.
type TimeOffRecord struct {
	From     time.Time
	Until    time.Time
	Approved bool
	Active   bool
}

// Covers reports whether the record gates logins at the given instant. Only
// active, approved records gate.
func (r TimeOffRecord) Covers(now time.Time) bool {
	if !r.Active || !r.Approved {
		return false
	}
	if now.Before(r.From) {
		return false
	}
	return !now.After(r.Until)
}

// UserRecord is the security-state slice of an account as seen by the
// engine. The engine never reads credentials; it only gates whether the
// account may act and tracks failure counters.
type UserRecord struct {
	UserID              string
	TenantID            string
	Status              AccountStatus
	FailedLoginAttempts int
	LockoutExpiresAt    time.Time
	EnforceWorkingDays  bool
	WorkingDays         WorkingDayMask
}

// UserProvider is the interface callers implement to connect the engine to
// their user database. It covers security-state lookup and persistence plus
// MFA method storage; credential verification stays on the caller's side.
type UserProvider interface {
	GetUserByID(ctx context.Context, tenantID, userID string) (UserRecord, error)
	UpdateSecurityState(ctx context.Context, record UserRecord) error
	TimeOffForUser(ctx context.Context, tenantID, userID string) ([]TimeOffRecord, error)
	MFAMethods(ctx context.Context, tenantID, userID string) ([]*mfa.Method, error)
	SaveMFAMethods(ctx context.Context, tenantID, userID string, methods []*mfa.Method) error
}
