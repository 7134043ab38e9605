package permission

import "time"

// Membership defines a public type used by accesscore APIs.
//
// Membership instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Membership struct {
	UserID  string
	GroupID string
	Active  bool

	// Optional effective-date window. Nil bounds are open.
	EffectiveFrom  *time.Time
	EffectiveUntil *time.Time
}

// EffectiveAt reports whether the membership is active and inside its
// effective-date window at the given instant. EffectiveUntil is exclusive.
func (m Membership) EffectiveAt(now time.Time) bool {
	if !m.Active {
		return false
	}
	if m.EffectiveFrom != nil && now.Before(*m.EffectiveFrom) {
		return false
	}
	if m.EffectiveUntil != nil && !now.Before(*m.EffectiveUntil) {
		return false
	}
	return true
}
