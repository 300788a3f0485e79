package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shutterdesk/core/pkg/jwt"
	"github.com/shutterdesk/core/pkg/logger"
	"github.com/shutterdesk/core/pkg/tenant"
)

// TokenDecoder verifies a token of the given kind. *jwt.Issuer implements it.
type TokenDecoder interface {
	Decode(ctx context.Context, token string, kind jwt.Kind) (*jwt.Claims, error)
}

// Resolver resolves request identities.
type Resolver struct {
	tokens  TokenDecoder
	tenants tenant.Provider
	hosts   tenant.Resolver
	extract jwt.TokenExtractorFunc
	logger  *slog.Logger
}

type Option func(*Resolver)

// WithHostResolver replaces the subdomain resolver, e.g. with one pinned to
// the platform's base domain or a header resolver for local development.
func WithHostResolver(r tenant.Resolver) Option {
	return func(res *Resolver) {
		if r != nil {
			res.hosts = r
		}
	}
}

// WithTokenExtractor replaces the bearer header extractor.
func WithTokenExtractor(fn jwt.TokenExtractorFunc) Option {
	return func(res *Resolver) {
		if fn != nil {
			res.extract = fn
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(res *Resolver) {
		if l != nil {
			res.logger = l
		}
	}
}

func NewResolver(tokens TokenDecoder, tenants tenant.Provider, opts ...Option) *Resolver {
	r := &Resolver{
		tokens:  tokens,
		tenants: tenants,
		hosts:   tenant.NewSubdomainResolver(""),
		extract: jwt.BearerTokenExtractor,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the identity of req, or nil with a nil error when the
// request names no tenant at all. Token errors, unknown or inactive tenants
// and malformed hosts are returned as errors.
func (r *Resolver) Resolve(req *http.Request) (*Identity, error) {
	ctx := req.Context()

	raw, err := r.extract(req)
	switch {
	case err == nil:
		return r.fromToken(ctx, req, raw)
	case !errors.Is(err, jwt.ErrMissingToken):
		return nil, err
	}

	sub, err := r.hosts.Resolve(req)
	if err != nil {
		return nil, err
	}
	if sub == "" {
		return nil, nil
	}

	t, err := r.tenants.GetBySubdomain(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := checkActive(t); err != nil {
		return nil, err
	}
	return &Identity{TenantID: t.ID, Tenant: t, Source: SourceSubdomain}, nil
}

func (r *Resolver) fromToken(ctx context.Context, req *http.Request, raw string) (*Identity, error) {
	claims, err := r.tokens.Decode(ctx, raw, jwt.KindAccess)
	if err != nil {
		r.logger.DebugContext(ctx, "token rejected",
			logger.Host(req.Host),
			logger.Error(err),
			logger.Component("identity"),
		)
		return nil, err
	}

	t, err := r.tenants.GetByID(ctx, claims.Tenant)
	if err != nil {
		return nil, err
	}
	if err := checkActive(t); err != nil {
		return nil, err
	}

	if sub, err := r.hosts.Resolve(req); err == nil && sub != "" && sub != t.Subdomain {
		r.logger.WarnContext(ctx, "token tenant differs from host subdomain, using token",
			logger.TenantID(t.ID),
			slog.String("host_subdomain", sub),
			logger.Component("identity"),
		)
	}

	return &Identity{TenantID: t.ID, Tenant: t, Source: SourceToken, Claims: claims, Token: raw}, nil
}

func checkActive(t *tenant.Tenant) error {
	if !t.Active {
		return fmt.Errorf("%w: %s", tenant.ErrInactiveTenant, t.Subdomain)
	}
	return nil
}
