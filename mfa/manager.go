package mfa

// Collection-level operations. Each takes the user's full method slice so the
// single-primary invariant is maintained inside one transactional boundary
// supplied by the caller: mutate, then persist the slice atomically.

// EnableMethod enables the target method within the user's collection and
// auto-promotes it to primary when no primary exists or it is the user's only
// enabled method. It fails with [ErrDuplicatePrimaryConflict] if the
// collection already violates the single-primary invariant.
func EnableMethod(methods []*Method, target *Method) error {
	if target == nil {
		return ErrMethodNotFound
	}
	if err := assertSinglePrimary(methods); err != nil {
		return err
	}
	if err := target.Enable(); err != nil {
		return err
	}

	if primaryOf(methods) == nil || enabledCount(methods) == 1 {
		target.Primary = true
	}
	return nil
}

// DisableMethod disables the target method. When the disabled method was
// primary, the primary pointer is cleared with it; no other method is
// auto-promoted.
func DisableMethod(methods []*Method, target *Method) error {
	if target == nil {
		return ErrMethodNotFound
	}
	target.Disable()
	return assertSinglePrimary(methods)
}

// SetPrimary marks the target method as the user's primary second factor,
// demoting any previous primary. A method that is not enabled fails with
// [ErrInvalidStateTransition].
func SetPrimary(methods []*Method, target *Method) error {
	if target == nil {
		return ErrMethodNotFound
	}
	if !target.Enabled {
		return ErrInvalidStateTransition
	}

	for _, m := range methods {
		if m != target {
			m.Primary = false
		}
	}
	target.Primary = true
	return nil
}

// PrimaryMethod returns the user's primary method, or nil when none is set.
func PrimaryMethod(methods []*Method) *Method {
	return primaryOf(methods)
}

// EnabledSet returns the flag set of currently enabled method types.
func EnabledSet(methods []*Method) MethodSet {
	var set MethodSet
	for _, m := range methods {
		if m.Enabled {
			set.Add(m.Type)
		}
	}
	return set
}

func primaryOf(methods []*Method) *Method {
	for _, m := range methods {
		if m.Primary {
			return m
		}
	}
	return nil
}

func enabledCount(methods []*Method) int {
	count := 0
	for _, m := range methods {
		if m.Enabled {
			count++
		}
	}
	return count
}

func assertSinglePrimary(methods []*Method) error {
	seen := false
	for _, m := range methods {
		if !m.Primary {
			continue
		}
		if seen {
			return ErrDuplicatePrimaryConflict
		}
		seen = true
	}
	return nil
}
