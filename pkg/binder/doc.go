// Package binder decodes HTTP request data into typed request structs.
//
// Binders have the signature func(*http.Request, any) error and are handed
// to handler.Wrap:
//
//	type LoginRequest struct {
//		Subdomain string `json:"subdomain"`
//		Email     string `json:"email"`
//		Password  string `json:"password"`
//	}
//
//	r.Post("/auth/login", handler.Wrap(login,
//		handler.WithBinders[handler.Context, LoginRequest](binder.JSON()),
//	))
//
// JSON decodes the body in strict mode (unknown fields are rejected) with a
// 1 MB limit and trims surrounding whitespace from every string field. Path
// reads router parameters through an extractor such as chi.URLParam, using
// the `path` struct tag.
//
// Every failure wraps one of the package errors so callers can map it to a
// 400 or 415 response with errors.Is.
package binder
