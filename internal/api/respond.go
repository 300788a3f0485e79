package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shutterdesk/core/pkg/auth"
	"github.com/shutterdesk/core/pkg/binder"
	"github.com/shutterdesk/core/pkg/handler"
	"github.com/shutterdesk/core/pkg/ratelimiter"
	"github.com/shutterdesk/core/pkg/rbac"
	"github.com/shutterdesk/core/pkg/store"
	"github.com/shutterdesk/core/pkg/tenant"
)

var (
	jsonBody   handler.Bind = binder.JSON()
	pathParams handler.Bind = binder.Path(chi.URLParam)
)

// optionalJSONBody binds a JSON body when the request has one.
func optionalJSONBody(r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	return jsonBody(r, v)
}

func wrap[R any](a *api, fn handler.HandlerFunc[handler.Context, R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(fn,
		handler.WithBinders[handler.Context, R](binders...),
		handler.WithErrorHandler[handler.Context, R](a.onError),
	)
}

// failure hands err to the error handler configured by wrap.
type failure struct{ err error }

func (f failure) Render(http.ResponseWriter, *http.Request) error { return f.err }

func fail(err error) handler.Response { return failure{err: err} }

var (
	errInvalidCredentials = handler.NewHTTPError(http.StatusUnauthorized, "invalid_credentials")
	errUnauthenticated    = handler.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	errUserInactive       = handler.NewHTTPError(http.StatusForbidden, "user_inactive")
	errQuotaExceeded      = handler.NewHTTPError(http.StatusForbidden, "quota_exceeded")
	errInvalidResetToken  = handler.NewHTTPError(http.StatusBadRequest, "invalid_reset_token")
	errResetDisabled      = handler.NewHTTPError(http.StatusNotImplemented, "password_reset_disabled")
	errInvalidPermission  = handler.NewHTTPError(http.StatusBadRequest, "invalid_permission")
	errInvalidRole        = handler.NewHTTPError(http.StatusBadRequest, "invalid_role")
)

// mapError maps the service and store errors. It runs before
// isolation.MapError, so a login against an unknown tenant reports
// invalid credentials rather than an unknown tenant.
func mapError(err error) (handler.HTTPError, bool) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return errInvalidCredentials, true
	case errors.Is(err, auth.ErrUnauthorized):
		return errUnauthenticated, true
	case errors.Is(err, auth.ErrUserInactive):
		return errUserInactive, true
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, store.ErrOrderNotFound):
		return handler.ErrNotFound, true
	case errors.Is(err, auth.ErrEmailAlreadyExists), errors.Is(err, store.ErrDuplicateOrder):
		return handler.ErrConflict, true
	case errors.Is(err, tenant.ErrQuotaExceeded):
		return errQuotaExceeded, true
	case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenAlreadyUsed):
		return errInvalidResetToken, true
	case errors.Is(err, auth.ErrPasswordResetDisabled):
		return errResetDisabled, true
	case errors.Is(err, rbac.ErrUnknownPermission):
		return errInvalidPermission, true
	case errors.Is(err, rbac.ErrInvalidRole):
		return errInvalidRole, true
	case errors.Is(err, ratelimiter.ErrLimitExceeded):
		return handler.ErrTooManyRequests, true
	}
	return handler.HTTPError{}, false
}
