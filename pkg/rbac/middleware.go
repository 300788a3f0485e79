package rbac

import (
	"errors"
	"net/http"
)

// ErrorHandler writes the response for a failed permission check.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// RequirePermission rejects requests whose subject lacks any of perms.
// A nil handler responds 401 when no subject is present and 403 otherwise.
func RequirePermission(onError ErrorHandler, perms ...Permission) func(http.Handler) http.Handler {
	if onError == nil {
		onError = defaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := Require(r.Context(), perms...); err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, ErrNoSubject) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}
