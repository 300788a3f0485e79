package jwt_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shutterdesk/core/pkg/jwt"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemDenylist() *memDenylist {
	return &memDenylist{revoked: map[string]time.Duration{}}
}

func (d *memDenylist) Revoke(_ context.Context, id string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.revoked[id]; ok {
		return false, nil
	}
	d.revoked[id] = ttl
	return true, nil
}

func (d *memDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[id]
	return ok, nil
}

// farFuture is well past the fixed test clock.
var farFuture = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

func newTestIssuer(t *testing.T, opts ...jwt.IssuerOption) (*jwt.Issuer, *fakeClock) {
	t.Helper()
	svc, err := jwt.NewFromString("test-signing-key-with-enough-bytes")
	require.NoError(t, err)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]jwt.IssuerOption{jwt.WithClock(clock.Now)}, opts...)
	return jwt.NewIssuer(svc, opts...), clock
}

func TestIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer, _ := newTestIssuer(t)
	tenantID := uuid.New()

	token, err := issuer.Issue("a@x.com", tenantID, "ADMIN", jwt.KindAccess)
	require.NoError(t, err)

	ctx := context.Background()
	assert.True(t, issuer.Validate(ctx, token))

	claims, err := issuer.ValidateAndDecode(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, tenantID, claims.Tenant)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, jwt.KindAccess, claims.Kind)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, int64(24*time.Hour/time.Second), claims.ExpiresAt-claims.IssuedAt)
}

func TestIssuer_Expired(t *testing.T) {
	t.Parallel()

	issuer, clock := newTestIssuer(t, jwt.WithAccessTTL(time.Hour))
	token, err := issuer.Issue("a@x.com", uuid.New(), "STAFF", jwt.KindAccess)
	require.NoError(t, err)

	clock.Advance(time.Hour)

	ctx := context.Background()
	assert.False(t, issuer.Validate(ctx, token))
	_, err = issuer.Decode(ctx, token, jwt.KindAccess)
	assert.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestIssuer_KindMismatch(t *testing.T) {
	t.Parallel()

	issuer, _ := newTestIssuer(t)
	pair, err := issuer.IssuePair("a@x.com", uuid.New(), "CLIENT")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(86400), pair.ExpiresIn)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

	ctx := context.Background()

	_, err = issuer.Decode(ctx, pair.RefreshToken, jwt.KindAccess)
	assert.ErrorIs(t, err, jwt.ErrKindMismatch)

	_, err = issuer.Decode(ctx, pair.AccessToken, jwt.KindRefresh)
	assert.ErrorIs(t, err, jwt.ErrKindMismatch)

	refresh, err := issuer.Decode(ctx, pair.RefreshToken, jwt.KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, jwt.KindRefresh, refresh.Kind)
}

func TestIssuer_IssueRejectsIncompleteIdentity(t *testing.T) {
	t.Parallel()

	issuer, _ := newTestIssuer(t)

	_, err := issuer.Issue("", uuid.New(), "ADMIN", jwt.KindAccess)
	assert.ErrorIs(t, err, jwt.ErrMissingClaims)
	_, err = issuer.Issue("a@x.com", uuid.Nil, "ADMIN", jwt.KindAccess)
	assert.ErrorIs(t, err, jwt.ErrMissingClaims)
	_, err = issuer.Issue("a@x.com", uuid.New(), "ADMIN", jwt.Kind("session"))
	assert.ErrorIs(t, err, jwt.ErrKindMismatch)
}

func TestIssuer_RejectsForeignTokens(t *testing.T) {
	t.Parallel()

	issuer, _ := newTestIssuer(t, jwt.WithIssuerName("shutterdesk"))
	svc, err := jwt.NewFromString("test-signing-key-with-enough-bytes")
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("claims without tenant", func(t *testing.T) {
		t.Parallel()
		token, err := svc.Generate(jwt.Claims{
			StandardClaims: jwt.StandardClaims{Subject: "a@x.com", Issuer: "shutterdesk", ExpiresAt: farFuture},
			Role:           "ADMIN",
			Kind:           jwt.KindAccess,
		})
		require.NoError(t, err)
		_, err = issuer.ValidateAndDecode(ctx, token)
		assert.ErrorIs(t, err, jwt.ErrInvalidClaims)
	})

	t.Run("claims without kind", func(t *testing.T) {
		t.Parallel()
		token, err := svc.Generate(jwt.Claims{
			StandardClaims: jwt.StandardClaims{Subject: "a@x.com", Issuer: "shutterdesk", ExpiresAt: farFuture},
			Tenant:         uuid.New(),
			Role:           "ADMIN",
		})
		require.NoError(t, err)
		_, err = issuer.ValidateAndDecode(ctx, token)
		assert.ErrorIs(t, err, jwt.ErrKindMismatch)
	})

	t.Run("other issuer", func(t *testing.T) {
		t.Parallel()
		token, err := svc.Generate(jwt.Claims{
			StandardClaims: jwt.StandardClaims{Subject: "a@x.com", Issuer: "elsewhere", ExpiresAt: farFuture},
			Tenant:         uuid.New(),
			Role:           "ADMIN",
			Kind:           jwt.KindAccess,
		})
		require.NoError(t, err)
		_, err = issuer.ValidateAndDecode(ctx, token)
		assert.ErrorIs(t, err, jwt.ErrInvalidClaims)
	})

	t.Run("unexpected algorithm", func(t *testing.T) {
		t.Parallel()
		enc := base64.RawURLEncoding
		payload := enc.EncodeToString([]byte(`{"typ":"JWT","alg":"HS512"}`)) + "." +
			enc.EncodeToString([]byte(`{"sub":"a@x.com"}`))
		h := hmac.New(sha256.New, []byte("test-signing-key-with-enough-bytes"))
		h.Write([]byte(payload))
		token := payload + "." + enc.EncodeToString(h.Sum(nil))

		_, err := issuer.ValidateAndDecode(ctx, token)
		assert.ErrorIs(t, err, jwt.ErrUnexpectedSigningMethod)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		assert.False(t, issuer.Validate(ctx, "not-a-token"))
	})
}

func TestIssuer_Revoke(t *testing.T) {
	t.Parallel()

	t.Run("denylisted token is rejected", func(t *testing.T) {
		t.Parallel()
		deny := newMemDenylist()
		issuer, clock := newTestIssuer(t, jwt.WithDenylist(deny))
		ctx := context.Background()

		token, err := issuer.Issue("a@x.com", uuid.New(), "ADMIN", jwt.KindAccess)
		require.NoError(t, err)
		claims, err := issuer.ValidateAndDecode(ctx, token)
		require.NoError(t, err)

		clock.Advance(time.Hour)
		require.NoError(t, issuer.Revoke(ctx, claims))
		assert.Equal(t, 23*time.Hour, deny.revoked[claims.ID], "ttl is the remaining lifetime")

		_, err = issuer.ValidateAndDecode(ctx, token)
		assert.ErrorIs(t, err, jwt.ErrRevokedToken)
	})

	t.Run("denylist outage fails closed", func(t *testing.T) {
		t.Parallel()
		deny := newMemDenylist()
		deny.err = errors.New("connection refused")
		issuer, _ := newTestIssuer(t, jwt.WithDenylist(deny))

		token, err := issuer.Issue("a@x.com", uuid.New(), "ADMIN", jwt.KindAccess)
		require.NoError(t, err)
		assert.False(t, issuer.Validate(context.Background(), token))
	})

	t.Run("without denylist revoke is a no-op", func(t *testing.T) {
		t.Parallel()
		issuer, _ := newTestIssuer(t)
		ctx := context.Background()

		token, err := issuer.Issue("a@x.com", uuid.New(), "ADMIN", jwt.KindAccess)
		require.NoError(t, err)
		claims, err := issuer.ValidateAndDecode(ctx, token)
		require.NoError(t, err)

		require.NoError(t, issuer.Revoke(ctx, claims))
		assert.False(t, issuer.RevocationEnabled())
		assert.True(t, issuer.Validate(ctx, token))
	})
}

func TestIssuer_Consume(t *testing.T) {
	t.Parallel()

	t.Run("second consume is rejected", func(t *testing.T) {
		t.Parallel()
		deny := newMemDenylist()
		issuer, clock := newTestIssuer(t, jwt.WithDenylist(deny))
		ctx := context.Background()

		pair, err := issuer.IssuePair("a@x.com", uuid.New(), "ADMIN")
		require.NoError(t, err)
		claims, err := issuer.Decode(ctx, pair.RefreshToken, jwt.KindRefresh)
		require.NoError(t, err)

		clock.Advance(time.Hour)
		require.NoError(t, issuer.Consume(ctx, claims))
		assert.Equal(t, jwt.DefaultRefreshTTL-time.Hour, deny.revoked[claims.ID])
		assert.ErrorIs(t, issuer.Consume(ctx, claims), jwt.ErrRevokedToken)

		_, err = issuer.Decode(ctx, pair.RefreshToken, jwt.KindRefresh)
		assert.ErrorIs(t, err, jwt.ErrRevokedToken)
	})

	t.Run("expired claims", func(t *testing.T) {
		t.Parallel()
		issuer, clock := newTestIssuer(t, jwt.WithDenylist(newMemDenylist()))
		ctx := context.Background()

		pair, err := issuer.IssuePair("a@x.com", uuid.New(), "ADMIN")
		require.NoError(t, err)
		claims, err := issuer.Decode(ctx, pair.RefreshToken, jwt.KindRefresh)
		require.NoError(t, err)

		clock.Advance(jwt.DefaultRefreshTTL + time.Second)
		assert.ErrorIs(t, issuer.Consume(ctx, claims), jwt.ErrExpiredToken)
	})

	t.Run("without denylist any live token passes", func(t *testing.T) {
		t.Parallel()
		issuer, _ := newTestIssuer(t)
		ctx := context.Background()

		pair, err := issuer.IssuePair("a@x.com", uuid.New(), "ADMIN")
		require.NoError(t, err)
		claims, err := issuer.Decode(ctx, pair.RefreshToken, jwt.KindRefresh)
		require.NoError(t, err)

		require.NoError(t, issuer.Consume(ctx, claims))
		require.NoError(t, issuer.Consume(ctx, claims))
		assert.ErrorIs(t, issuer.Consume(ctx, nil), jwt.ErrInvalidClaims)
	})
}
