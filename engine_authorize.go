package accesscore

import (
	"context"
	"time"

	"github.com/tenantsec/accesscore/permission"
)

// Authorize runs one permission resolution under the default-deny rule.
// [permission.Deny] is a normal outcome; an error means the question itself
// was malformed (unknown principal, cross-tenant request) and must not be
// treated as a policy decision.
//
// Authorize may return an error when input validation, dependency calls, or security checks fail.
// Authorize does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Authorize(ctx context.Context, req permission.AccessRequest) (permission.Decision, error) {
	if e == nil || e.resolver == nil {
		return permission.Deny, ErrEngineNotReady
	}
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricAuthorizeLatency, time.Since(start)) }()
	}

	decision, err := e.resolver.Authorize(ctx, req)
	if err != nil {
		e.metricInc(MetricAuthorizeError)
		e.emitAudit(ctx, auditEventAuthorizeError, false, req.PrincipalID, req.ResourceTenantID, "", err, func() map[string]string {
			return map[string]string{
				"resource": req.Resource,
				"action":   req.Action,
				"scope":    req.Scope,
			}
		})
		return permission.Deny, err
	}

	if decision == permission.Allow {
		e.metricInc(MetricAuthorizeAllow)
		e.emitAudit(ctx, auditEventAuthorizeAllow, true, req.PrincipalID, req.ResourceTenantID, "", nil, func() map[string]string {
			return map[string]string{
				"resource": req.Resource,
				"action":   req.Action,
				"scope":    req.Scope,
			}
		})
	} else {
		e.metricInc(MetricAuthorizeDeny)
		e.emitAudit(ctx, auditEventAuthorizeDeny, true, req.PrincipalID, req.ResourceTenantID, "", nil, func() map[string]string {
			return map[string]string{
				"resource": req.Resource,
				"action":   req.Action,
				"scope":    req.Scope,
			}
		})
	}

	return decision, nil
}

// MatchingGrants describes the matchinggrants operation and its observable behavior.
//
// MatchingGrants may return an error when input validation, dependency calls, or security checks fail.
// MatchingGrants does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MatchingGrants(ctx context.Context, req permission.AccessRequest) ([]permission.MatchedGrant, error) {
	if e == nil || e.resolver == nil {
		return nil, ErrEngineNotReady
	}
	return e.resolver.MatchingGrants(ctx, req)
}

// SetGroupParent reparents a group after the tenant guard and the cycle
// checks pass. The caller tenant comes from ctx; a platform caller may
// reparent groups in any tenant.
//
// SetGroupParent may return an error when input validation, dependency calls, or security checks fail.
// SetGroupParent does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SetGroupParent(ctx context.Context, group *permission.Group, newParentID string) error {
	if e == nil || e.hierarchy == nil {
		return ErrEngineNotReady
	}
	if group == nil {
		return ErrInvalid
	}
	if caller := tenantIDFromContext(ctx); caller != "" {
		if err := AssertTenantAccess(group.TenantID, caller); err != nil {
			e.emitAudit(ctx, auditEventGroupReparented, false, "", group.TenantID, "", err, nil)
			return err
		}
	}

	err := e.hierarchy.SetParent(ctx, group, newParentID)
	e.emitAudit(ctx, auditEventGroupReparented, err == nil, "", group.TenantID, "", err, func() map[string]string {
		return map[string]string{
			"group_id":   group.ID,
			"new_parent": newParentID,
		}
	})
	return err
}
