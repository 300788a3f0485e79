package auth_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shutterdesk/core/pkg/auth"
	"github.com/shutterdesk/core/pkg/jwt"
	"github.com/shutterdesk/core/pkg/rbac"
	"github.com/shutterdesk/core/pkg/tenant"
)

func TestService_Login(t *testing.T) {
	t.Parallel()

	t.Run("issues a token pair scoped to the tenant", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		user := f.newUser(t, rbac.RoleAdmin)
		f.users.On("GetUserByEmail", boundTo(f.tenant.ID), "ana@clientco.com").Return(user, nil)
		f.users.On("GetPasswordHash", boundTo(f.tenant.ID), user.ID).Return(hashOf(t, testPassword), nil)
		f.users.On("UpdateLastLogin", boundTo(f.tenant.ID), user.ID, f.clock.Now()).Return(nil)

		ctx := context.Background()
		resp, err := f.svc.Login(ctx, "ClientCo", "  Ana@ClientCo.com ", testPassword)
		require.NoError(t, err)

		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, int64(86400), resp.ExpiresIn)
		assert.Equal(t, user.ID, resp.User.ID)
		assert.Equal(t, "Ana Lima", resp.User.FullName)
		assert.True(t, resp.User.Permissions.Has(rbac.OrderCreate))
		require.NotNil(t, resp.User.LastLoginAt)
		assert.Equal(t, f.clock.Now(), *resp.User.LastLoginAt)

		claims, err := f.issuer.Decode(ctx, resp.AccessToken, jwt.KindAccess)
		require.NoError(t, err)
		assert.Equal(t, "ana@clientco.com", claims.Subject)
		assert.Equal(t, f.tenant.ID, claims.Tenant)
		assert.Equal(t, "ADMIN", claims.Role)

		_, err = f.issuer.Decode(ctx, resp.RefreshToken, jwt.KindRefresh)
		require.NoError(t, err)

		_, bound := tenant.Current(ctx)
		assert.False(t, bound)
		f.users.AssertExpectations(t)
	})

	t.Run("last login failure does not block login", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		user := f.newUser(t, rbac.RoleStaff)
		f.users.On("GetUserByEmail", boundTo(f.tenant.ID), user.Email).Return(user, nil)
		f.users.On("GetPasswordHash", boundTo(f.tenant.ID), user.ID).Return(hashOf(t, testPassword), nil)
		f.users.On("UpdateLastLogin", mock.Anything, user.ID, mock.Anything).Return(errors.New("db down"))

		resp, err := f.svc.Login(context.Background(), "clientco", user.Email, testPassword)
		require.NoError(t, err)
		assert.Nil(t, resp.User.LastLoginAt)
	})

	tests := []struct {
		name      string
		subdomain string
		setup     func(t *testing.T, f *fixture)
		password  string
		wantErrs  []error
	}{
		{
			name:      "wrong password",
			subdomain: "clientco",
			password:  "Wrong-Pass-123",
			setup: func(t *testing.T, f *fixture) {
				u := f.newUser(t, rbac.RoleClient)
				f.users.On("GetUserByEmail", mock.Anything, u.Email).Return(u, nil)
				f.users.On("GetPasswordHash", mock.Anything, u.ID).Return(hashOf(t, testPassword), nil)
			},
			wantErrs: []error{auth.ErrInvalidCredentials},
		},
		{
			name:      "unknown user",
			subdomain: "clientco",
			password:  testPassword,
			setup: func(t *testing.T, f *fixture) {
				f.users.On("GetUserByEmail", mock.Anything, "ana@clientco.com").Return(nil, auth.ErrUserNotFound)
			},
			wantErrs: []error{auth.ErrInvalidCredentials},
		},
		{
			name:      "inactive user",
			subdomain: "clientco",
			password:  testPassword,
			setup: func(t *testing.T, f *fixture) {
				u := f.newUser(t, rbac.RoleClient)
				u.Active = false
				f.users.On("GetUserByEmail", mock.Anything, u.Email).Return(u, nil)
			},
			wantErrs: []error{auth.ErrInvalidCredentials},
		},
		{
			name:      "unknown tenant",
			subdomain: "nobody",
			password:  testPassword,
			setup:     func(*testing.T, *fixture) {},
			wantErrs:  []error{auth.ErrInvalidCredentials, tenant.ErrTenantNotFound},
		},
		{
			name:      "inactive tenant",
			subdomain: "gone",
			password:  testPassword,
			setup:     func(*testing.T, *fixture) {},
			wantErrs:  []error{auth.ErrInvalidCredentials, tenant.ErrInactiveTenant},
		},
		{
			name:      "malformed subdomain",
			subdomain: "not a label",
			password:  testPassword,
			setup:     func(*testing.T, *fixture) {},
			wantErrs:  []error{auth.ErrInvalidCredentials, tenant.ErrInvalidIdentifier},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			tt.setup(t, f)

			resp, err := f.svc.Login(context.Background(), tt.subdomain, "ana@clientco.com", tt.password)
			assert.Nil(t, resp)
			for _, want := range tt.wantErrs {
				assert.ErrorIs(t, err, want)
			}
			f.users.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("rotates the pair and uses the current role", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		user := f.newUser(t, rbac.RoleStaff)
		ctx := context.Background()

		pair, err := f.issuer.IssuePair(user.Email, f.tenant.ID, string(rbac.RoleAdmin))
		require.NoError(t, err)

		f.users.On("GetUserByEmail", boundTo(f.tenant.ID), user.Email).Return(user, nil)

		f.clock.Advance(time.Hour)
		resp, err := f.svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		claims, err := f.issuer.Decode(ctx, resp.AccessToken, jwt.KindAccess)
		require.NoError(t, err)
		assert.Equal(t, "STAFF", claims.Role)
		assert.NotEqual(t, pair.RefreshToken, resp.RefreshToken)

		_, err = f.svc.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, jwt.ErrRevokedToken)
		assert.Equal(t, 1, f.denylist.Len())
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		pair, err := f.issuer.IssuePair("ana@clientco.com", f.tenant.ID, "ADMIN")
		require.NoError(t, err)

		_, err = f.svc.Refresh(context.Background(), pair.AccessToken)
		assert.ErrorIs(t, err, jwt.ErrKindMismatch)
		f.users.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		pair, err := f.issuer.IssuePair("ana@clientco.com", f.tenant.ID, "ADMIN")
		require.NoError(t, err)

		f.clock.Advance(jwt.DefaultRefreshTTL + time.Second)
		_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("deactivated user", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		user := f.newUser(t, rbac.RoleClient)
		user.Active = false
		f.users.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

		pair, err := f.issuer.IssuePair(user.Email, f.tenant.ID, "CLIENT")
		require.NoError(t, err)

		_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
		assert.ErrorIs(t, err, auth.ErrUserInactive)
		assert.Equal(t, 1, f.denylist.Len(), "the token is spent even when the refresh fails")
	})

	t.Run("concurrent refreshes redeem the token once", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		user := f.newUser(t, rbac.RoleStaff)
		f.users.On("GetUserByEmail", boundTo(f.tenant.ID), user.Email).
			After(20*time.Millisecond).Return(user, nil)

		pair, err := f.issuer.IssuePair(user.Email, f.tenant.ID, "STAFF")
		require.NoError(t, err)

		const callers = 8
		var (
			wg        sync.WaitGroup
			succeeded atomic.Int32
			revoked   atomic.Int32
		)
		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
				switch {
				case err == nil:
					succeeded.Add(1)
				case errors.Is(err, jwt.ErrRevokedToken):
					revoked.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), succeeded.Load())
		assert.Equal(t, int32(callers-1), revoked.Load())
	})

	t.Run("inactive tenant", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		pair, err := f.issuer.IssuePair("ana@gone.com", f.inactive.ID, "ADMIN")
		require.NoError(t, err)

		_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
		assert.ErrorIs(t, err, tenant.ErrInactiveTenant)
	})
}

func TestService_Logout(t *testing.T) {
	t.Parallel()

	t.Run("revokes both tokens", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()
		pair, err := f.issuer.IssuePair("ana@clientco.com", f.tenant.ID, "ADMIN")
		require.NoError(t, err)

		require.NoError(t, f.svc.Logout(ctx, pair.AccessToken, pair.RefreshToken))
		assert.False(t, f.issuer.Validate(ctx, pair.AccessToken))
		assert.False(t, f.issuer.Validate(ctx, pair.RefreshToken))
		assert.Equal(t, 2, f.denylist.Len())
	})

	t.Run("invalid and swapped tokens are ignored", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		pair, err := f.issuer.IssuePair("ana@clientco.com", f.tenant.ID, "ADMIN")
		require.NoError(t, err)

		require.NoError(t, f.svc.Logout(context.Background(), pair.RefreshToken, "garbage"))
		assert.Zero(t, f.denylist.Len())
	})

	t.Run("no denylist is a no-op", func(t *testing.T) {
		t.Parallel()

		signer, err := jwt.NewFromString("another-signing-key-0123456789ab")
		require.NoError(t, err)
		issuer := jwt.NewIssuer(signer)
		svc := auth.NewService(&MockUserStorage{}, &stubTenants{}, issuer, rbac.DefaultAuthorizer())

		pair, err := issuer.IssuePair("ana@clientco.com", uuid.New(), "ADMIN")
		require.NoError(t, err)
		require.NoError(t, svc.Logout(context.Background(), pair.AccessToken, pair.RefreshToken))
		assert.True(t, issuer.Validate(context.Background(), pair.AccessToken))
	})
}

func TestService_Principal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.newUser(t, rbac.RoleClient)
	f.users.On("GetUserByEmail", boundTo(f.tenant.ID), user.Email).Return(user, nil)

	_, err := f.svc.Principal(context.Background(), user.Email)
	assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)

	got, err := f.svc.Principal(f.bound(t), user.Email)
	require.NoError(t, err)
	assert.False(t, rbac.HasPermission(got, rbac.OrderCreate))
	assert.True(t, rbac.HasPermission(got, rbac.PhotoRead))
}
