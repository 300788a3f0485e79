// Package handler provides typed HTTP handlers that render JSON.
//
// A HandlerFunc receives a Context (the request context plus the request and
// response writer) and a request value already decoded by binders, and
// returns a Response:
//
//	type orderRequest struct {
//		ID uuid.UUID `path:"id"`
//	}
//
//	getOrder := func(ctx handler.Context, req orderRequest) handler.Response {
//		o, err := orders.Get(ctx, req.ID)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(o)
//	}
//
//	r.Get("/orders/{id}", handler.Wrap(getOrder,
//		handler.WithBinders[handler.Context, orderRequest](binder.Path(chi.URLParam)),
//	))
//
// Responses use one envelope:
//
//	{"data": ..., "meta": {...}, "error": {"code": "...", "message": "...", "details": {...}}}
//
// Errors are HTTPError values (status plus a stable key) or validation
// errors, which become 422 with per-field details. NewErrorHandler accepts
// ErrorMapper functions that translate domain errors, so packages keep their
// sentinel errors and the HTTP layer decides the status. Unmapped errors are
// answered with a generic 500 and only logged.
package handler
