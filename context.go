package accesscore

import "context"

type clientIPContextKey struct{}
type tenantIDContextKey struct{}
type actorIDContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine records
// it on audit events and token revocations.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithTenantID attaches the caller's tenant identifier to ctx. Every
// tenant-scoped engine operation resolves the caller tenant from here; an
// empty value means the caller is platform-scoped.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDContextKey{}, tenantID)
}

// WithActorID attaches the identifier of the acting principal to ctx. Used
// for audit attribution on administrative operations.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDContextKey{}, actorID)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func actorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	actorID, _ := ctx.Value(actorIDContextKey{}).(string)
	return actorID
}

func tenantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	tenantID, _ := ctx.Value(tenantIDContextKey{}).(string)
	return tenantID
}
