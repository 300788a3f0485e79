package auth_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shutterdesk/core/pkg/auth"
	"github.com/shutterdesk/core/pkg/email"
	"github.com/shutterdesk/core/pkg/rbac"
)

var resetLinkRe = regexp.MustCompile(`https://clientco\.example\.com/reset-password\?token=([A-Za-z0-9_\-.]+)`)

func newResetFixture(t *testing.T) (*fixture, *MockEmailSender) {
	t.Helper()
	mailer := &MockEmailSender{}
	f := newFixture(t,
		auth.WithMailer(mailer, auth.SubdomainLinks{BaseDomain: "example.com"}),
		auth.WithPasswordReset("reset-secret-0123456789abcdef", 30*time.Minute),
	)
	return f, mailer
}

// requestReset runs ForgotPassword and returns the token from the mailed link.
func requestReset(t *testing.T, f *fixture, mailer *MockEmailSender, user *auth.User, hash []byte) string {
	t.Helper()

	f.users.On("GetUserByEmail", boundTo(f.tenant.ID), user.Email).Return(user, nil).Once()
	f.users.On("GetPasswordHash", boundTo(f.tenant.ID), user.ID).Return(hash, nil).Once()

	var sent email.SendEmailParams
	mailer.On("SendEmail", mock.Anything, mock.AnythingOfType("email.SendEmailParams")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(email.SendEmailParams) }).
		Return(nil).Once()

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "clientco", user.Email))
	assert.Equal(t, user.Email, sent.SendTo)
	assert.Equal(t, email.TagPasswordReset, sent.Tag)
	assert.Contains(t, sent.BodyHTML, "30m0s")

	m := resetLinkRe.FindStringSubmatch(sent.BodyHTML)
	require.Len(t, m, 2, "reset link not found in %q", sent.BodyHTML)
	return m[1]
}

func TestService_PasswordReset(t *testing.T) {
	t.Parallel()

	t.Run("token resets the password once", func(t *testing.T) {
		t.Parallel()

		f, mailer := newResetFixture(t)
		user := f.newUser(t, rbac.RoleStaff)
		oldHash := hashOf(t, testPassword)
		tok := requestReset(t, f, mailer, user, oldHash)

		var newHash []byte
		f.users.On("GetUserByID", boundTo(f.tenant.ID), user.ID).Return(user, nil)
		f.users.On("GetPasswordHash", boundTo(f.tenant.ID), user.ID).Return(oldHash, nil).Once()
		f.users.On("UpdatePasswordHash", boundTo(f.tenant.ID), user.ID, mock.AnythingOfType("[]uint8")).
			Run(func(args mock.Arguments) { newHash = args.Get(2).([]byte) }).
			Return(nil).Once()

		require.NoError(t, f.svc.ResetPassword(context.Background(), tok, "Brand-New-Pass9"))
		require.NoError(t, bcrypt.CompareHashAndPassword(newHash, []byte("Brand-New-Pass9")))

		f.users.On("GetPasswordHash", mock.Anything, user.ID).Return(newHash, nil).Once()
		err := f.svc.ResetPassword(context.Background(), tok, "Another-Pass77")
		assert.ErrorIs(t, err, auth.ErrTokenAlreadyUsed)
		f.users.AssertNumberOfCalls(t, "UpdatePasswordHash", 1)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		f, mailer := newResetFixture(t)
		user := f.newUser(t, rbac.RoleStaff)
		tok := requestReset(t, f, mailer, user, hashOf(t, testPassword))

		f.clock.Advance(31 * time.Minute)
		assert.ErrorIs(t, f.svc.ResetPassword(context.Background(), tok, "Brand-New-Pass9"), auth.ErrTokenExpired)
	})

	t.Run("tampered token", func(t *testing.T) {
		t.Parallel()

		f, mailer := newResetFixture(t)
		user := f.newUser(t, rbac.RoleStaff)
		tok := requestReset(t, f, mailer, user, hashOf(t, testPassword))

		assert.ErrorIs(t, f.svc.ResetPassword(context.Background(), "x"+tok, "Brand-New-Pass9"), auth.ErrTokenInvalid)
		assert.ErrorIs(t, f.svc.ResetPassword(context.Background(), "garbage", "Brand-New-Pass9"), auth.ErrTokenInvalid)
	})

	t.Run("unknown email and tenant are silent", func(t *testing.T) {
		t.Parallel()

		f, mailer := newResetFixture(t)
		f.users.On("GetUserByEmail", mock.Anything, "nobody@clientco.com").Return(nil, auth.ErrUserNotFound)

		require.NoError(t, f.svc.ForgotPassword(context.Background(), "clientco", "nobody@clientco.com"))
		require.NoError(t, f.svc.ForgotPassword(context.Background(), "unknown", "ana@clientco.com"))
		require.NoError(t, f.svc.ForgotPassword(context.Background(), "gone", "ana@clientco.com"))
		mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})

	t.Run("inactive user gets nothing", func(t *testing.T) {
		t.Parallel()

		f, mailer := newResetFixture(t)
		user := f.newUser(t, rbac.RoleStaff)
		user.Active = false
		f.users.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

		require.NoError(t, f.svc.ForgotPassword(context.Background(), "clientco", user.Email))
		mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})

	t.Run("user deactivated after the token was issued", func(t *testing.T) {
		t.Parallel()

		f, mailer := newResetFixture(t)
		user := f.newUser(t, rbac.RoleStaff)
		tok := requestReset(t, f, mailer, user, hashOf(t, testPassword))

		deactivated := *user
		deactivated.Active = false
		f.users.On("GetUserByID", boundTo(f.tenant.ID), user.ID).Return(&deactivated, nil).Once()

		err := f.svc.ResetPassword(context.Background(), tok, "Brand-New-Pass9")
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
		assert.ErrorIs(t, err, auth.ErrUserInactive)
		f.users.AssertNotCalled(t, "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("disabled without configuration", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		assert.ErrorIs(t, f.svc.ForgotPassword(context.Background(), "clientco", "ana@clientco.com"), auth.ErrPasswordResetDisabled)
		assert.ErrorIs(t, f.svc.ResetPassword(context.Background(), "tok", "Brand-New-Pass9"), auth.ErrPasswordResetDisabled)
	})
}
