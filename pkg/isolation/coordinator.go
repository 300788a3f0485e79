package isolation

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shutterdesk/core/pkg/identity"
	"github.com/shutterdesk/core/pkg/jwt"
	"github.com/shutterdesk/core/pkg/logger"
	"github.com/shutterdesk/core/pkg/rbac"
	"github.com/shutterdesk/core/pkg/tenant"
)

// IdentityResolver resolves the tenant and claims of a request.
// *identity.Resolver implements it.
type IdentityResolver interface {
	Resolve(r *http.Request) (*identity.Identity, error)
}

// PrincipalLoader loads the subject behind an authenticated identity. It runs
// with the tenant already bound, so it may query tenant-scoped tables.
type PrincipalLoader func(ctx context.Context, id *identity.Identity) (rbac.Subject, error)

// ErrorHandler writes the response for a request the coordinator rejects.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Coordinator runs every request through the same sequence: resolve the
// identity, bind the tenant to a fresh per-request scope, load the principal,
// call the next handler and clear the scope on every exit path.
type Coordinator struct {
	resolver      IdentityResolver
	loadPrincipal PrincipalLoader
	onError       ErrorHandler
	timeout       time.Duration
	log           *slog.Logger
}

type Option func(*Coordinator)

// WithPrincipalLoader sets the loader called for authenticated identities.
// Without one, the coordinator binds the tenant and claims only.
func WithPrincipalLoader(fn PrincipalLoader) Option {
	return func(c *Coordinator) {
		c.loadPrincipal = fn
	}
}

func WithErrorHandler(fn ErrorHandler) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.onError = fn
		}
	}
}

// WithTimeout bounds the whole request, business logic included.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.timeout = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

func New(resolver IdentityResolver, opts ...Option) *Coordinator {
	c := &Coordinator{
		resolver: resolver,
		onError:  DefaultErrorHandler,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.Component("isolation"))
	return c
}

// Required rejects requests whose identity cannot be resolved, before any
// tenant-scoped connection can be acquired.
func (c *Coordinator) Required() func(http.Handler) http.Handler {
	return c.middleware(true)
}

// Optional binds the tenant when the request names one and otherwise lets
// the request through unbound. Resolution failures are logged, not returned.
func (c *Coordinator) Optional() func(http.Handler) http.Handler {
	return c.middleware(false)
}

// RequireAuthenticated rejects requests without an authenticated principal.
// It must run after Required or Optional.
func (c *Coordinator) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := identity.FromContext(r.Context()); !ok || !id.Authenticated() {
				c.onError(w, r, ErrUnauthenticated)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ErrorHandler returns the handler the coordinator reports rejections to,
// for use by later middleware such as rbac.RequirePermission.
func (c *Coordinator) ErrorHandler() ErrorHandler {
	return c.onError
}

func (c *Coordinator) middleware(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, scope := tenant.NewScope(r.Context())
			defer scope.Clear()

			if c.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, c.timeout)
				defer cancel()
			}
			r = r.WithContext(ctx)

			bound, err := c.establish(r, scope)
			if err != nil {
				scope.Clear()
				if required {
					c.log.WarnContext(ctx, "request rejected",
						logger.Error(err),
						slog.String("path", r.URL.Path),
					)
					c.onError(w, r, err)
					return
				}
				c.log.DebugContext(ctx, "continuing without tenant",
					logger.Error(err),
					slog.String("path", r.URL.Path),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(bound))
		})
	}
}

// establish resolves the identity, binds scope and returns the context the
// handler runs with.
func (c *Coordinator) establish(r *http.Request, scope *tenant.Scope) (context.Context, error) {
	ctx := r.Context()

	id, err := c.resolver.Resolve(r)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, ErrTenantRequired
	}

	if err := scope.Bind(id.TenantID); err != nil {
		return nil, err
	}
	if id.Tenant != nil {
		ctx = tenant.WithTenant(ctx, id.Tenant)
	}
	ctx = identity.WithIdentity(ctx, id)
	if id.Claims != nil {
		ctx = jwt.SetToken(jwt.SetClaims(ctx, id.Claims), id.Token)
	}

	if id.Authenticated() && c.loadPrincipal != nil {
		subject, err := c.loadPrincipal(ctx, id)
		if err != nil {
			return nil, err
		}
		ctx = rbac.WithSubject(ctx, subject)
	}

	c.log.DebugContext(ctx, "tenant bound", logger.Source(string(id.Source)))
	return ctx, nil
}
