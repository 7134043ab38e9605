package mfa

// MethodType identifies one second-factor mechanism.
type MethodType uint8

const (
	// MethodAuthenticator is an exported constant or variable used by the access control core.
	MethodAuthenticator MethodType = iota
	// MethodSMS is an exported constant or variable used by the access control core.
	MethodSMS
	// MethodEmail is an exported constant or variable used by the access control core.
	MethodEmail
	// MethodBackupCodes is an exported constant or variable used by the access control core.
	MethodBackupCodes

	methodTypeCount
)

// String describes the string operation and its observable behavior.
func (t MethodType) String() string {
	switch t {
	case MethodAuthenticator:
		return "authenticator"
	case MethodSMS:
		return "sms"
	case MethodEmail:
		return "email"
	case MethodBackupCodes:
		return "backup_codes"
	default:
		return "unknown"
	}
}

// MethodSet is a flag set of enabled method types. Has, Add, and Remove are
// the only mutation surface; the bitwise representation stays internal.
type MethodSet uint8

// Has reports whether the set contains the method type.
func (m *MethodSet) Has(t MethodType) bool {
	if t >= methodTypeCount {
		return false
	}
	return (*m & (1 << t)) != 0
}

// Add inserts the method type into the set.
func (m *MethodSet) Add(t MethodType) {
	if t >= methodTypeCount {
		return
	}
	*m |= (1 << t)
}

// Remove deletes the method type from the set.
func (m *MethodSet) Remove(t MethodType) {
	if t >= methodTypeCount {
		return
	}
	*m &^= (1 << t)
}

// Count returns the number of method types in the set.
func (m MethodSet) Count() int {
	count := 0
	for t := MethodType(0); t < methodTypeCount; t++ {
		if (m & (1 << t)) != 0 {
			count++
		}
	}
	return count
}
