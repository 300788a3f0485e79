package requestid

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type contextKey struct{}

// WithContext stores id in ctx. chi's middleware.GetReqID sees the same value.
func WithContext(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, contextKey{}, id)
	return context.WithValue(ctx, chimw.RequestIDKey, id)
}

// FromContext returns the request ID or "" when none is set.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
