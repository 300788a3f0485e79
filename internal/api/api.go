// Package api is the HTTP surface of the service: authentication endpoints,
// the current user, tenant user administration and orders.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/shutterdesk/core/pkg/auth"
	"github.com/shutterdesk/core/pkg/handler"
	"github.com/shutterdesk/core/pkg/httpserver"
	"github.com/shutterdesk/core/pkg/isolation"
	"github.com/shutterdesk/core/pkg/logger"
	"github.com/shutterdesk/core/pkg/ratelimiter"
	"github.com/shutterdesk/core/pkg/rbac"
	"github.com/shutterdesk/core/pkg/requestid"
	"github.com/shutterdesk/core/pkg/store"
)

// AuthService is the part of *auth.Service the API calls.
type AuthService interface {
	Login(ctx context.Context, subdomain, email, password string) (*auth.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	ForgotPassword(ctx context.Context, subdomain, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	Principal(ctx context.Context, email string) (*auth.User, error)

	CreateUser(ctx context.Context, in auth.NewUser) (*auth.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*auth.User, error)
	ChangeRole(ctx context.Context, id uuid.UUID, role rbac.Role) (*auth.User, error)
	GrantPermissions(ctx context.Context, id uuid.UUID, perms ...rbac.Permission) (*auth.User, error)
	RevokePermissions(ctx context.Context, id uuid.UUID, perms ...rbac.Permission) (*auth.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error
	DeactivateUser(ctx context.Context, id uuid.UUID) error
}

// OrderStore is the part of *store.OrderStore the API calls.
type OrderStore interface {
	List(ctx context.Context) ([]store.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*store.Order, error)
	Create(ctx context.Context, o *store.Order) error
}

var (
	_ AuthService = (*auth.Service)(nil)
	_ OrderStore  = (*store.OrderStore)(nil)
)

// Config wires the router.
type Config struct {
	Auth     AuthService
	Orders   OrderStore
	Identity isolation.IdentityResolver
	// Health answers /healthz. Defaults to a liveness handler.
	Health http.Handler
	Logger *slog.Logger
	// Isolation options are appended to the ones NewRouter sets.
	Isolation []isolation.Option
	// AuthLimiter throttles login and password reset per studio host and
	// client IP. Nil disables throttling.
	AuthLimiter *ratelimiter.Bucket
}

type api struct {
	auth    AuthService
	orders  OrderStore
	log     *slog.Logger
	onError handler.ErrorHandler[handler.Context]
}

// NewRouter builds the chi router. Every route except /healthz runs through
// the isolation coordinator: auth endpoints as optional routes, everything
// else as tenant-required.
func NewRouter(cfg Config) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	a := &api{
		auth:    cfg.Auth,
		orders:  cfg.Orders,
		log:     log,
		onError: handler.NewErrorHandler(log, mapError, isolation.MapError),
	}

	opts := append([]isolation.Option{
		isolation.WithPrincipalLoader(PrincipalLoader(cfg.Auth)),
		isolation.WithErrorHandler(a.reject),
		isolation.WithLogger(log),
	}, cfg.Isolation...)
	coord := isolation.New(cfg.Identity, opts...)
	deny := rbac.ErrorHandler(coord.ErrorHandler())

	health := cfg.Health
	if health == nil {
		health = httpserver.HealthCheckHandler(log)
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Method(http.MethodGet, "/healthz", health)

	throttle := func(scope string) func(http.Handler) http.Handler {
		if cfg.AuthLimiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		key := ratelimiter.Composite(ratelimiter.ByHost, ratelimiter.ByClientIP)
		return ratelimiter.Middleware(cfg.AuthLimiter, scope, key, a.reject)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Use(coord.Optional())
		r.With(throttle("login")).Post("/login", wrap(a, a.login, jsonBody))
		r.Post("/refresh", wrap(a, a.refresh, jsonBody))
		r.Post("/logout", wrap(a, a.logout, optionalJSONBody))
		r.With(throttle("forgot")).Post("/forgot-password", wrap(a, a.forgotPassword, jsonBody))
		r.With(throttle("reset")).Post("/reset-password", wrap(a, a.resetPassword, jsonBody))
	})

	r.Group(func(r chi.Router) {
		r.Use(coord.Required())
		r.Use(coord.RequireAuthenticated())

		r.Get("/me", wrap(a, a.me))
		r.Put("/me/password", wrap(a, a.changeOwnPassword, jsonBody))

		r.Route("/orders", func(r chi.Router) {
			r.With(rbac.RequirePermission(deny, rbac.OrderRead)).Get("/", wrap(a, a.listOrders))
			r.With(rbac.RequirePermission(deny, rbac.OrderRead)).Get("/{id}", wrap(a, a.getOrder, pathParams))
			r.With(rbac.RequirePermission(deny, rbac.OrderCreate)).Post("/", wrap(a, a.createOrder, jsonBody))
		})

		r.Route("/users", func(r chi.Router) {
			r.With(rbac.RequirePermission(deny, rbac.UserCreate)).Post("/", wrap(a, a.createUser, jsonBody))
			r.With(rbac.RequirePermission(deny, rbac.UserRead)).Get("/{id}", wrap(a, a.getUser, pathParams))
			r.With(rbac.RequirePermission(deny, rbac.UserUpdate)).Put("/{id}/role", wrap(a, a.changeRole, pathParams, jsonBody))
			r.With(rbac.RequirePermission(deny, rbac.UserUpdate)).Patch("/{id}/permissions", wrap(a, a.updatePermissions, pathParams, jsonBody))
			r.With(rbac.RequirePermission(deny, rbac.UserDelete)).Delete("/{id}", wrap(a, a.deactivateUser, pathParams))
		})
	})

	return r
}

// reject renders coordinator and permission failures with the same envelope
// and logging as handler errors.
func (a *api) reject(w http.ResponseWriter, r *http.Request, err error) {
	a.onError(handler.NewContext(w, r), err)
}
