package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/shutterdesk/core/pkg/auth"
	"github.com/shutterdesk/core/pkg/handler"
	"github.com/shutterdesk/core/pkg/identity"
	"github.com/shutterdesk/core/pkg/isolation"
	"github.com/shutterdesk/core/pkg/jwt"
	"github.com/shutterdesk/core/pkg/rbac"
	"github.com/shutterdesk/core/pkg/tenant"
	"github.com/shutterdesk/core/pkg/validator"
)

// PrincipalLoader loads the user named by the token subject. Missing or
// inactive users fail authentication.
func PrincipalLoader(svc AuthService) isolation.PrincipalLoader {
	return func(ctx context.Context, id *identity.Identity) (rbac.Subject, error) {
		u, err := svc.Principal(ctx, id.Claims.Subject)
		if errors.Is(err, auth.ErrUnauthorized) {
			return nil, errors.Join(isolation.ErrUnauthenticated, err)
		}
		if err != nil {
			return nil, err
		}
		return u, nil
	}
}

type loginRequest struct {
	Subdomain string `json:"subdomain"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// subdomainFor falls back to the tenant resolved from the host.
func subdomainFor(ctx context.Context, given string) string {
	if given != "" {
		return given
	}
	if t, ok := tenant.FromContext(ctx); ok {
		return t.Subdomain
	}
	return ""
}

func (a *api) login(ctx handler.Context, req loginRequest) handler.Response {
	sub := subdomainFor(ctx, req.Subdomain)
	if err := validator.Apply(
		validator.RequiredString("subdomain", sub),
		validator.RequiredString("email", req.Email),
		validator.RequiredString("password", req.Password),
	); err != nil {
		return fail(err)
	}

	resp, err := a.auth.Login(ctx, sub, req.Email, req.Password)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(resp)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (a *api) refresh(ctx handler.Context, req refreshRequest) handler.Response {
	if err := validator.Apply(validator.RequiredString("refresh_token", req.RefreshToken)); err != nil {
		return fail(err)
	}
	resp, err := a.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(resp)
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// logout revokes the access token the request authenticated with and, when
// given, the refresh token.
func (a *api) logout(ctx handler.Context, req logoutRequest) handler.Response {
	access, ok := jwt.GetToken(ctx)
	if !ok && req.RefreshToken == "" {
		return fail(errors.Join(isolation.ErrUnauthenticated, jwt.ErrMissingToken))
	}
	if err := a.auth.Logout(ctx, access, req.RefreshToken); err != nil {
		return fail(err)
	}
	return handler.Empty()
}

type forgotPasswordRequest struct {
	Subdomain string `json:"subdomain"`
	Email     string `json:"email"`
}

// forgotPassword always answers 202 so callers cannot probe for accounts.
func (a *api) forgotPassword(ctx handler.Context, req forgotPasswordRequest) handler.Response {
	sub := subdomainFor(ctx, req.Subdomain)
	if err := validator.Apply(
		validator.RequiredString("subdomain", sub),
		validator.ValidEmail("email", req.Email),
	); err != nil {
		return fail(err)
	}
	if err := a.auth.ForgotPassword(ctx, sub, req.Email); err != nil {
		return fail(err)
	}
	return handler.EmptyWithStatus(http.StatusAccepted)
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (a *api) resetPassword(ctx handler.Context, req resetPasswordRequest) handler.Response {
	if err := validator.Apply(
		validator.RequiredString("token", req.Token),
		validator.RequiredString("password", req.Password),
	); err != nil {
		return fail(err)
	}
	if err := a.auth.ResetPassword(ctx, req.Token, req.Password); err != nil {
		return fail(err)
	}
	return handler.Empty()
}
