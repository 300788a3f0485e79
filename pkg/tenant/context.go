package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey struct{}

// WithTenant stores the resolved tenant record in the context. It does not
// bind the scope; the lifecycle middleware does both.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext returns the tenant record stored by WithTenant.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	return t, ok && t != nil
}

// IDFromContext returns the bound tenant id, falling back to the stored record.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if id, ok := Current(ctx); ok {
		return id, true
	}
	if t, ok := FromContext(ctx); ok {
		return t.ID, true
	}
	return uuid.Nil, false
}

// LoggerExtractor returns a logger context extractor that adds the tenant
// currently bound to the scope as "tenant_id".
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := Current(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
