package accesscore

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tenantsec/accesscore/internal/limiters"
	"github.com/tenantsec/accesscore/permission"
	"github.com/tenantsec/accesscore/session"
	"github.com/tenantsec/accesscore/token"
)

// Engine defines a public type used by accesscore APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	resolver     *permission.Resolver
	hierarchy    *permission.Hierarchy
	directory    permission.Directory
	tokenStore   *token.Store
	sessionStore *session.Store
	lockout      *limiters.LockoutLimiter
	mfaLimiter   *limiters.MFAFailureLimiter
	audit        *auditDispatcher
	metrics      *Metrics
	clock        Clock
	userProvider UserProvider
	redis        redis.UniversalClient
}

func (e *Engine) now() time.Time {
	if e == nil || e.clock == nil {
		return time.Now()
	}
	return e.clock.Now()
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Hierarchy exposes the group hierarchy manager built over the configured
// directory.
func (e *Engine) Hierarchy() *permission.Hierarchy {
	if e == nil {
		return nil
	}
	return e.hierarchy
}
