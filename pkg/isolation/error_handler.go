package isolation

import (
	"errors"
	"net/http"

	"github.com/shutterdesk/core/pkg/handler"
	"github.com/shutterdesk/core/pkg/jwt"
	"github.com/shutterdesk/core/pkg/pg"
	"github.com/shutterdesk/core/pkg/rbac"
	"github.com/shutterdesk/core/pkg/tenant"
)

var (
	errUnauthenticated = handler.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	errTenantInactive  = handler.NewHTTPError(http.StatusForbidden, "tenant_inactive")
	errForbidden       = handler.NewHTTPError(http.StatusForbidden, "forbidden")
)

// MapError maps resolution, token, permission and binder errors to HTTP
// errors. All token and resolution failures share one 401 key; the precise
// cause is only logged. Binder failures are checked first and map to 500.
func MapError(err error) (handler.HTTPError, bool) {
	switch {
	case errors.Is(err, pg.ErrTenantBind), errors.Is(err, pg.ErrTenantReset), errors.Is(err, pg.ErrAcquireConn):
		return handler.ErrInternalServerError, true
	case errors.Is(err, tenant.ErrInactiveTenant):
		return errTenantInactive, true
	case errors.Is(err, rbac.ErrInsufficientPermissions):
		return errForbidden, true
	case errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, tenant.ErrTenantNotFound),
		errors.Is(err, tenant.ErrInvalidIdentifier),
		errors.Is(err, tenant.ErrNoTenantInContext),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, rbac.ErrNoSubject):
		return errUnauthenticated, true
	}
	return handler.HTTPError{}, false
}

// DefaultErrorHandler writes a JSON error envelope with the status MapError
// assigns; unknown errors become 500. Unauthenticated responses carry a
// Bearer challenge.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	resolved := handler.Classify(err, MapError)

	var httpErr handler.HTTPError
	if errors.As(resolved, &httpErr) && httpErr.Code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	_ = handler.JSONError(resolved).Render(w, r)
}
