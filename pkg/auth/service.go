package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"

	"github.com/shutterdesk/core/pkg/email"
	"github.com/shutterdesk/core/pkg/jwt"
	"github.com/shutterdesk/core/pkg/logger"
	"github.com/shutterdesk/core/pkg/rbac"
	"github.com/shutterdesk/core/pkg/tenant"
	"github.com/shutterdesk/core/pkg/validator"
)

const DefaultResetTokenTTL = time.Hour

// Service implements login, token refresh, logout, user administration and
// password reset for tenant users.
type Service struct {
	users   UserStorage
	tenants tenant.Provider
	issuer  *jwt.Issuer
	authz   *rbac.Authorizer

	mailer      email.EmailSender
	links       LinkBuilder
	resetSecret string
	resetTTL    time.Duration

	bcryptCost       int
	passwordStrength validator.PasswordStrengthConfig
	now              func() time.Time
	logger           *slog.Logger
}

type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// WithPasswordStrength sets custom password strength requirements.
func WithPasswordStrength(cfg validator.PasswordStrengthConfig) Option {
	return func(s *Service) {
		s.passwordStrength = cfg
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMailer enables outgoing email: welcome messages on CreateUser and
// password reset links.
func WithMailer(sender email.EmailSender, links LinkBuilder) Option {
	return func(s *Service) {
		s.mailer = sender
		s.links = links
	}
}

// WithPasswordReset sets the signing secret and lifetime of reset tokens.
// ForgotPassword and ResetPassword return ErrPasswordResetDisabled until
// both a secret and a mailer are configured.
func WithPasswordReset(secret string, ttl time.Duration) Option {
	return func(s *Service) {
		s.resetSecret = secret
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

// NewService wires the service. authz supplies the role defaults snapshotted
// into each user's permission set.
func NewService(users UserStorage, tenants tenant.Provider, issuer *jwt.Issuer, authz *rbac.Authorizer, opts ...Option) *Service {
	s := &Service{
		users:            users,
		tenants:          tenants,
		issuer:           issuer,
		authz:            authz,
		resetTTL:         DefaultResetTokenTTL,
		bcryptCost:       bcrypt.DefaultCost,
		passwordStrength: validator.DefaultPasswordStrength(),
		now:              time.Now,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates email and password within the tenant owning subdomain.
// Unknown tenants, unknown users, inactive users and wrong passwords all
// return ErrInvalidCredentials; an inactive tenant also matches
// tenant.ErrInactiveTenant.
func (s *Service) Login(ctx context.Context, subdomain, emailAddr, password string) (*TokenResponse, error) {
	t, err := s.tenantBySubdomain(ctx, subdomain)
	if err != nil {
		s.logger.DebugContext(ctx, "login rejected: tenant lookup failed",
			slog.String("subdomain", subdomain),
			logger.Error(err),
			logger.Component("auth"),
		)
		return nil, errors.Join(ErrInvalidCredentials, err)
	}

	var user *User
	err = tenant.Run(ctx, t.ID, func(ctx context.Context) error {
		u, err := s.users.GetUserByEmail(ctx, normalizeEmail(emailAddr))
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return ErrInvalidCredentials
			}
			return fmt.Errorf("failed to load user: %w", err)
		}
		if !u.Active {
			return ErrInvalidCredentials
		}

		hash, err := s.users.GetPasswordHash(ctx, u.ID)
		if err != nil {
			return ErrInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
			return ErrInvalidCredentials
		}

		now := s.now().UTC()
		if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
			s.logger.WarnContext(ctx, "failed to record last login",
				logger.UserID(u.ID),
				logger.Error(err),
				logger.Component("auth"),
			)
		} else {
			u.LastLoginAt = &now
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.respond(ctx, t, user)
}

// Refresh exchanges a refresh token for a new token pair. The user is
// reloaded so the new tokens carry the current role. When revocation is
// enabled the presented refresh token is consumed first, so only one of
// several concurrent refreshes with the same token succeeds.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := s.issuer.Decode(ctx, refreshToken, jwt.KindRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.issuer.Consume(ctx, claims); err != nil {
		return nil, err
	}

	t, err := s.tenants.GetByID(ctx, claims.Tenant)
	if err != nil {
		return nil, errors.Join(ErrUnauthorized, err)
	}
	if !t.Active {
		return nil, errors.Join(ErrUnauthorized, tenant.ErrInactiveTenant)
	}

	var user *User
	err = tenant.Run(ctx, t.ID, func(ctx context.Context) error {
		u, err := s.activeUserByEmail(ctx, claims.Subject)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.respond(ctx, t, user)
}

// Logout revokes the given tokens for their remaining lifetime. Tokens that
// are already invalid are ignored. Without a denylist this is a no-op and the
// client is expected to drop its tokens.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if !s.issuer.RevocationEnabled() {
		return nil
	}

	var errs []error
	for _, tk := range []struct {
		raw  string
		kind jwt.Kind
	}{{accessToken, jwt.KindAccess}, {refreshToken, jwt.KindRefresh}} {
		if tk.raw == "" {
			continue
		}
		claims, err := s.issuer.Decode(ctx, tk.raw, tk.kind)
		if err != nil {
			s.logger.DebugContext(ctx, "logout: skipping invalid token",
				logger.TokenKind(tk.kind),
				logger.Error(err),
				logger.Component("auth"),
			)
			continue
		}
		if err := s.issuer.Revoke(ctx, claims); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Principal loads the active user identified by email in the tenant bound
// to ctx. It backs the request principal after token authentication.
func (s *Service) Principal(ctx context.Context, emailAddr string) (*User, error) {
	if _, err := tenant.MustCurrent(ctx); err != nil {
		return nil, err
	}
	return s.activeUserByEmail(ctx, emailAddr)
}

func (s *Service) activeUserByEmail(ctx context.Context, emailAddr string) (*User, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, errors.Join(ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !u.Active {
		return nil, errors.Join(ErrUnauthorized, ErrUserInactive)
	}
	return u, nil
}

func (s *Service) respond(ctx context.Context, t *tenant.Tenant, u *User) (*TokenResponse, error) {
	pair, err := s.issuer.IssuePair(u.Email, t.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	s.logger.InfoContext(ctx, "tokens issued",
		logger.TenantID(t.ID),
		logger.UserID(u.ID),
		logger.Role(u.Role),
		logger.Component("auth"),
	)
	return &TokenResponse{TokenPair: pair, User: NewProfile(u)}, nil
}

func (s *Service) tenantBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	sub, err := tenant.NormalizeSubdomain(subdomain)
	if err != nil {
		return nil, err
	}
	t, err := s.tenants.GetBySubdomain(ctx, sub)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		return nil, tenant.ErrInactiveTenant
	}
	return t, nil
}

func normalizeEmail(e string) string {
	return cases.Fold().String(strings.TrimSpace(e))
}
