package main

import (
	"fmt"
	"time"

	"github.com/shutterdesk/core/pkg/config"
	"github.com/shutterdesk/core/pkg/email"
	"github.com/shutterdesk/core/pkg/httpserver"
	"github.com/shutterdesk/core/pkg/logger"
	"github.com/shutterdesk/core/pkg/pg"
	"github.com/shutterdesk/core/pkg/ratelimiter"
	"github.com/shutterdesk/core/pkg/redis"
)

// appConfig holds the settings owned by this binary.
type appConfig struct {
	BaseDomain     string        `env:"BASE_DOMAIN" envDefault:"shutterdesk.app"`
	LinkScheme     string        `env:"LINK_SCHEME" envDefault:"https"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	RolesFile      string        `env:"RBAC_ROLES_FILE"`

	// TenantHeader, when set, names a header consulted after the subdomain.
	TenantHeader     string        `env:"TENANT_HEADER"`
	TenantCache      string        `env:"TENANT_CACHE" envDefault:"redis"`
	TenantCacheTTL   time.Duration `env:"TENANT_CACHE_TTL" envDefault:"1m"`
	TenantCacheSize  int           `env:"TENANT_CACHE_SIZE" envDefault:"1000"`
	AccessCookieName string        `env:"AUTH_ACCESS_COOKIE"`

	JWTSecret     string        `env:"JWT_SECRET,required"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"shutterdesk"`
	JWTAccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"24h"`
	JWTRefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`

	DenylistEnabled bool `env:"AUTH_DENYLIST_ENABLED" envDefault:"true"`

	PasswordResetSecret string        `env:"PASSWORD_RESET_SECRET"`
	PasswordResetTTL    time.Duration `env:"PASSWORD_RESET_TTL" envDefault:"1h"`

	AuthRateLimitEnabled bool               `env:"AUTH_RATE_LIMIT_ENABLED" envDefault:"true"`
	AuthRateLimit        ratelimiter.Config `envPrefix:"AUTH_RATE_LIMIT_"`
}

type settings struct {
	app   appConfig
	log   logger.Config
	pg    pg.Config
	redis redis.Config
	http  httpserver.Config
	email email.Config
}

func loadSettings() (settings, error) {
	var s settings
	if err := config.Load(&s.app); err != nil {
		return s, fmt.Errorf("app config: %w", err)
	}
	if err := config.Load(&s.log); err != nil {
		return s, fmt.Errorf("logger config: %w", err)
	}
	if err := config.Load(&s.pg); err != nil {
		return s, fmt.Errorf("postgres config: %w", err)
	}
	if err := config.Load(&s.redis); err != nil {
		return s, fmt.Errorf("redis config: %w", err)
	}
	if err := config.Load(&s.http); err != nil {
		return s, fmt.Errorf("http config: %w", err)
	}
	if err := config.Load(&s.email); err != nil {
		return s, fmt.Errorf("email config: %w", err)
	}
	return s, nil
}
