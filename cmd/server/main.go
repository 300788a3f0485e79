// Command server runs the shutterdesk API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/shutterdesk/core/internal/api"
	"github.com/shutterdesk/core/internal/db"
	"github.com/shutterdesk/core/pkg/auth"
	"github.com/shutterdesk/core/pkg/email"
	"github.com/shutterdesk/core/pkg/httpserver"
	"github.com/shutterdesk/core/pkg/identity"
	"github.com/shutterdesk/core/pkg/isolation"
	"github.com/shutterdesk/core/pkg/jwt"
	"github.com/shutterdesk/core/pkg/logger"
	"github.com/shutterdesk/core/pkg/pg"
	"github.com/shutterdesk/core/pkg/ratelimiter"
	"github.com/shutterdesk/core/pkg/rbac"
	"github.com/shutterdesk/core/pkg/redis"
	"github.com/shutterdesk/core/pkg/requestid"
	"github.com/shutterdesk/core/pkg/store"
	"github.com/shutterdesk/core/pkg/tenant"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	log := logger.New(append(s.log.Options(),
		logger.WithContextExtractors(requestid.LoggerExtractor(), tenant.LoggerExtractor()),
	)...)
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, s.pg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if s.pg.MigrationsPath == "" {
		s.pg.MigrationsPath = db.MigrationsDir
	}
	if err := pg.Migrate(ctx, pool, s.pg, db.Migrations, log); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, s.redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	conns := pg.NewBinder(pool,
		pg.WithResetTimeout(s.pg.TenantResetTimeout),
		pg.WithBinderLogger(log.With(logger.Component("pg"))),
	)

	tenants := store.NewTenantStore(conns)
	users := store.NewUserStore(conns)
	orders := store.NewOrderStore(conns)

	var provider tenant.Provider = tenants
	if s.app.TenantCacheTTL > 0 {
		var cache tenant.Cache
		switch s.app.TenantCache {
		case "memory":
			cache = tenant.NewInMemoryCacheWithSize(s.app.TenantCacheSize)
		case "redis":
			cache = redis.NewTenantCache(rdb, s.redis.KeyPrefix, log.With(logger.Component("tenant_cache")))
		default:
			return fmt.Errorf("unknown TENANT_CACHE %q", s.app.TenantCache)
		}
		defer cache.Close()
		provider = tenant.NewCachedProvider(tenants, cache, s.app.TenantCacheTTL)
	}

	authz, err := loadAuthorizer(ctx, s.app.RolesFile)
	if err != nil {
		return err
	}

	signer, err := jwt.NewFromString(s.app.JWTSecret)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	issuerOpts := []jwt.IssuerOption{
		jwt.WithIssuerName(s.app.JWTIssuer),
		jwt.WithAccessTTL(s.app.JWTAccessTTL),
		jwt.WithRefreshTTL(s.app.JWTRefreshTTL),
		jwt.WithLogger(log.With(logger.Component("jwt"))),
	}
	if s.app.DenylistEnabled {
		issuerOpts = append(issuerOpts, jwt.WithDenylist(redis.NewDenylist(rdb, s.redis.KeyPrefix)))
	}
	issuer := jwt.NewIssuer(signer, issuerOpts...)

	mailer, err := email.New(s.email)
	if err != nil {
		return fmt.Errorf("email: %w", err)
	}

	authOpts := []auth.Option{
		auth.WithLogger(log.With(logger.Component("auth"))),
		auth.WithMailer(mailer, auth.SubdomainLinks{Scheme: s.app.LinkScheme, BaseDomain: s.app.BaseDomain}),
	}
	if s.app.PasswordResetSecret != "" {
		authOpts = append(authOpts, auth.WithPasswordReset(s.app.PasswordResetSecret, s.app.PasswordResetTTL))
	}
	authSvc := auth.NewService(users, provider, issuer, authz, authOpts...)

	var hosts tenant.Resolver = tenant.NewSubdomainResolver(s.app.BaseDomain)
	if s.app.TenantHeader != "" {
		hosts = tenant.NewCompositeResolver(hosts, tenant.NewHeaderResolver(s.app.TenantHeader))
	}
	extract := jwt.TokenExtractorFunc(jwt.BearerTokenExtractor)
	if s.app.AccessCookieName != "" {
		extract = jwt.FirstOf(jwt.BearerTokenExtractor, jwt.CookieTokenExtractor(s.app.AccessCookieName))
	}
	resolver := identity.NewResolver(issuer, provider,
		identity.WithHostResolver(hosts),
		identity.WithTokenExtractor(extract),
		identity.WithLogger(log.With(logger.Component("identity"))),
	)

	var limiter *ratelimiter.Bucket
	if s.app.AuthRateLimitEnabled {
		limiter, err = ratelimiter.NewBucket(redis.NewRateLimitStore(rdb, s.redis.KeyPrefix), s.app.AuthRateLimit)
		if err != nil {
			return fmt.Errorf("auth rate limit: %w", err)
		}
	}

	router := api.NewRouter(api.Config{
		Auth:     authSvc,
		Orders:   orders,
		Identity: resolver,
		Health:   httpserver.HealthCheckHandler(log, pg.Healthcheck(pool), redis.Healthcheck(rdb)),
		Logger:   log,
		Isolation: []isolation.Option{
			isolation.WithTimeout(s.app.RequestTimeout),
		},
		AuthLimiter: limiter,
	})

	srv := httpserver.NewFromConfig(s.http,
		httpserver.WithLogger(log.With(logger.Component("http"))),
		httpserver.WithStartHook(func(l *slog.Logger, addr net.Addr) { l.Info("listening", slog.String("addr", addr.String())) }),
	)
	if err := srv.Run(ctx, router); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func loadAuthorizer(ctx context.Context, rolesFile string) (*rbac.Authorizer, error) {
	if rolesFile == "" {
		return rbac.DefaultAuthorizer(), nil
	}
	authz, err := rbac.NewAuthorizer(ctx, rbac.NewYAMLFileSource(rolesFile))
	if err != nil {
		return nil, fmt.Errorf("rbac: %w", err)
	}
	return authz, nil
}
