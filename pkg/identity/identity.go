package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/shutterdesk/core/pkg/jwt"
	"github.com/shutterdesk/core/pkg/tenant"
)

// Source records how a tenant was resolved.
type Source string

const (
	SourceToken     Source = "token"
	SourceSubdomain Source = "subdomain"
)

// Identity is the resolved tenant of a request and, for token requests, the
// authenticated claims and the raw token they were decoded from.
type Identity struct {
	TenantID uuid.UUID
	Tenant   *tenant.Tenant
	Source   Source
	Claims   *jwt.Claims
	Token    string
}

// Authenticated reports whether the identity came from a verified token.
func (i *Identity) Authenticated() bool {
	return i != nil && i.Source == SourceToken && i.Claims != nil
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok && id != nil
}
