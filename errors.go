package accesscore

import (
	"errors"

	"github.com/tenantsec/accesscore/mfa"
	"github.com/tenantsec/accesscore/permission"
	"github.com/tenantsec/accesscore/session"
	"github.com/tenantsec/accesscore/token"
)

var (
	// ErrNotFound is an exported constant or variable used by the access control core.
	ErrNotFound = errors.New("not found")
	// ErrInvalid is an exported constant or variable used by the access control core.
	ErrInvalid = errors.New("invalid request")
	// ErrLockedOut is an exported constant or variable used by the access control core.
	ErrLockedOut = errors.New("account locked out")
	// ErrOutsideWorkingDays is an exported constant or variable used by the access control core.
	ErrOutsideWorkingDays = errors.New("login outside permitted working days")
	// ErrTimeOffActive is an exported constant or variable used by the access control core.
	ErrTimeOffActive = errors.New("approved time off active")
	// ErrAlreadyInitialized is an exported constant or variable used by the access control core.
	ErrAlreadyInitialized = errors.New("already initialized")
	// ErrConfigUnavailable is an exported constant or variable used by the access control core.
	ErrConfigUnavailable = errors.New("configuration backend unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the access control core.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrTenantSuspended is an exported constant or variable used by the access control core.
	ErrTenantSuspended = errors.New("tenant suspended")
	// ErrTenantInactive is an exported constant or variable used by the access control core.
	ErrTenantInactive = errors.New("tenant inactive")
)

// Sentinels owned by subpackages are re-exported here so callers holding only
// the root package can match every failure mode with errors.Is.
var (
	// ErrTenantMismatch is an exported constant or variable used by the access control core.
	ErrTenantMismatch = permission.ErrTenantMismatch
	// ErrPrincipalNotFound is an exported constant or variable used by the access control core.
	ErrPrincipalNotFound = permission.ErrPrincipalNotFound
	// ErrCyclicGroupReference is an exported constant or variable used by the access control core.
	ErrCyclicGroupReference = permission.ErrCyclicGroupReference
	// ErrCorruptHierarchy is an exported constant or variable used by the access control core.
	ErrCorruptHierarchy = permission.ErrCorruptHierarchy
	// ErrGroupNotFound is an exported constant or variable used by the access control core.
	ErrGroupNotFound = permission.ErrGroupNotFound

	// ErrAlreadyUsed is an exported constant or variable used by the access control core.
	ErrAlreadyUsed = token.ErrAlreadyUsed
	// ErrReplayDetected is an exported constant or variable used by the access control core.
	// A used refresh token presented again is, by definition, a replay.
	ErrReplayDetected = token.ErrAlreadyUsed
	// ErrAlreadyRevoked is an exported constant or variable used by the access control core.
	ErrAlreadyRevoked = token.ErrAlreadyRevoked
	// ErrAlreadyInvalidated is an exported constant or variable used by the access control core.
	ErrAlreadyInvalidated = token.ErrAlreadyInvalidated
	// ErrExpired is an exported constant or variable used by the access control core.
	ErrExpired = token.ErrExpired
	// ErrTokenNotFound is an exported constant or variable used by the access control core.
	ErrTokenNotFound = token.ErrNotFound
	// ErrSecretMismatch is an exported constant or variable used by the access control core.
	ErrSecretMismatch = token.ErrSecretMismatch
	// ErrTokenUnavailable is an exported constant or variable used by the access control core.
	ErrTokenUnavailable = token.ErrUnavailable

	// ErrInvalidStateTransition is an exported constant or variable used by the access control core.
	ErrInvalidStateTransition = mfa.ErrInvalidStateTransition
	// ErrDuplicatePrimaryConflict is an exported constant or variable used by the access control core.
	ErrDuplicatePrimaryConflict = mfa.ErrDuplicatePrimaryConflict
	// ErrMethodLocked is an exported constant or variable used by the access control core.
	ErrMethodLocked = mfa.ErrMethodLocked
	// ErrMethodNotFound is an exported constant or variable used by the access control core.
	ErrMethodNotFound = mfa.ErrMethodNotFound

	// ErrSessionNotFound is an exported constant or variable used by the access control core.
	ErrSessionNotFound = session.ErrSessionNotFound
	// ErrSessionUnavailable is an exported constant or variable used by the access control core.
	ErrSessionUnavailable = session.ErrRedisUnavailable
)
