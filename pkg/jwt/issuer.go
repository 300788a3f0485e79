package jwt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Denylist records revoked token ids until they would have expired anyway.
type Denylist interface {
	// Revoke reports true only for the call that first recorded tokenID.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenPair is the result of a successful authentication.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	ExpiresIn        int64     `json:"expires_in"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// Issuer mints and checks the access and refresh tokens of the platform.
type Issuer struct {
	svc        *Service
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	newID      func() string
	denylist   Denylist
	logger     *slog.Logger
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithAccessTTL sets the lifetime of access tokens.
func WithAccessTTL(d time.Duration) IssuerOption {
	return func(i *Issuer) {
		if d > 0 {
			i.accessTTL = d
		}
	}
}

// WithRefreshTTL sets the lifetime of refresh tokens.
func WithRefreshTTL(d time.Duration) IssuerOption {
	return func(i *Issuer) {
		if d > 0 {
			i.refreshTTL = d
		}
	}
}

// WithIssuerName sets the iss claim.
func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) { i.issuer = name }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// WithDenylist enables revocation checks. Without one, Revoke is a no-op
// and tokens stay valid until they expire.
func WithDenylist(d Denylist) IssuerOption {
	return func(i *Issuer) { i.denylist = d }
}

// WithLogger sets the logger used for denylist failures.
func WithLogger(l *slog.Logger) IssuerOption {
	return func(i *Issuer) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewIssuer creates an Issuer on top of svc.
func NewIssuer(svc *Service, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		svc:        svc,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// AccessTTL returns the configured access token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// Issue mints a single token of the given kind.
func (i *Issuer) Issue(subject string, tenantID uuid.UUID, role string, kind Kind) (string, error) {
	token, _, err := i.issue(subject, tenantID, role, kind)
	return token, err
}

// IssuePair mints an access token and a refresh token for the same identity.
func (i *Issuer) IssuePair(subject string, tenantID uuid.UUID, role string) (TokenPair, error) {
	access, accessExp, err := i.issue(subject, tenantID, role, KindAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := i.issue(subject, tenantID, role, KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresIn:        int64(i.accessTTL / time.Second),
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (i *Issuer) issue(subject string, tenantID uuid.UUID, role string, kind Kind) (string, time.Time, error) {
	if subject == "" || tenantID == uuid.Nil || role == "" {
		return "", time.Time{}, ErrMissingClaims
	}
	if !kind.Valid() {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrKindMismatch, kind)
	}

	ttl := i.accessTTL
	if kind == KindRefresh {
		ttl = i.refreshTTL
	}
	now := i.now()
	exp := now.Add(ttl)

	token, err := i.svc.Generate(Claims{
		StandardClaims: StandardClaims{
			ID:        i.newID(),
			Subject:   subject,
			Issuer:    i.issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: exp.Unix(),
		},
		Tenant: tenantID,
		Role:   role,
		Kind:   kind,
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// ValidateAndDecode verifies signature, expiry and revocation of a token of
// either kind and returns its claims.
func (i *Issuer) ValidateAndDecode(ctx context.Context, token string) (*Claims, error) {
	var c Claims
	if err := i.svc.parse(token, &c, i.now()); err != nil {
		return nil, err
	}
	if i.issuer != "" && c.Issuer != i.issuer {
		return nil, ErrInvalidClaims
	}
	if err := i.checkRevoked(ctx, c.ID); err != nil {
		return nil, err
	}
	return &c, nil
}

// Decode is ValidateAndDecode that additionally requires the token kind.
func (i *Issuer) Decode(ctx context.Context, token string, kind Kind) (*Claims, error) {
	c, err := i.ValidateAndDecode(ctx, token)
	if err != nil {
		return nil, err
	}
	if c.Kind != kind {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrKindMismatch, kind, c.Kind)
	}
	return c, nil
}

// Validate reports whether token is currently acceptable. Any failure,
// including a denylist outage, counts as invalid.
func (i *Issuer) Validate(ctx context.Context, token string) bool {
	_, err := i.ValidateAndDecode(ctx, token)
	return err == nil
}

// Revoke denylists the token until its natural expiry. It is a no-op when
// no denylist is configured or the token already expired.
func (i *Issuer) Revoke(ctx context.Context, c *Claims) error {
	if i.denylist == nil || c == nil || c.ID == "" {
		return nil
	}
	ttl := c.Remaining(i.now())
	if ttl <= 0 {
		return nil
	}
	_, err := i.denylist.Revoke(ctx, c.ID, ttl)
	return err
}

// Consume revokes the token and fails with ErrRevokedToken when another
// caller revoked it first, which makes refresh tokens single-use. Without
// a denylist it only checks that the token has not expired.
func (i *Issuer) Consume(ctx context.Context, c *Claims) error {
	if c == nil || c.ID == "" {
		return ErrInvalidClaims
	}
	ttl := c.Remaining(i.now())
	if ttl <= 0 {
		return ErrExpiredToken
	}
	if i.denylist == nil {
		return nil
	}
	first, err := i.denylist.Revoke(ctx, c.ID, ttl)
	if err != nil {
		i.logger.WarnContext(ctx, "denylist write failed, rejecting token", slog.Any("error", err))
		return errors.Join(ErrRevokedToken, err)
	}
	if !first {
		return ErrRevokedToken
	}
	return nil
}

// RevocationEnabled reports whether a denylist is configured.
func (i *Issuer) RevocationEnabled() bool { return i.denylist != nil }

func (i *Issuer) checkRevoked(ctx context.Context, id string) error {
	if i.denylist == nil {
		return nil
	}
	if id == "" {
		return ErrInvalidClaims
	}
	revoked, err := i.denylist.IsRevoked(ctx, id)
	if err != nil {
		i.logger.WarnContext(ctx, "denylist lookup failed, rejecting token", slog.Any("error", err))
		return errors.Join(ErrRevokedToken, err)
	}
	if revoked {
		return ErrRevokedToken
	}
	return nil
}
