package accesscore

import "time"

// Clock supplies the current time to every time-sensitive decision made by
// the access control core. Production code uses [SystemClock]; tests inject
// a fixed or stepping implementation so expiry, lockout windows, and
// membership effectivity can be exercised deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by time.Now.
type SystemClock struct{}

// Now describes the now operation and its observable behavior.
func (SystemClock) Now() time.Time { return time.Now() }
