package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/shutterdesk/core/pkg/logger"
	"github.com/shutterdesk/core/pkg/requestid"
	"github.com/shutterdesk/core/pkg/validator"
)

// ErrorMapper translates a domain error into an HTTPError. It reports false
// for errors it does not know.
type ErrorMapper func(err error) (HTTPError, bool)

// NewErrorHandler returns an ErrorHandler that renders JSON error responses.
// Mappers are tried in order; an error no mapper knows and that carries no
// HTTPError or validation error is answered with a generic 500 so internal
// messages never reach the client. Client errors are logged at warn level,
// server errors at error level.
func NewErrorHandler(log *slog.Logger, mappers ...ErrorMapper) ErrorHandler[Context] {
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Component("error_handler"))

	return func(ctx Context, err error) {
		r := ctx.Request()
		resolved := Classify(err, mappers...)

		status := http.StatusInternalServerError
		_ = errorToDetail(resolved, &status)

		level := slog.LevelError
		if status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.LogAttrs(r.Context(), level, "request error",
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		var opts []JSONOption
		if id := requestid.FromContext(r.Context()); id != "" {
			opts = append(opts, WithJSONMeta(map[string]any{"request_id": id}))
		}
		if renderErr := JSONError(resolved, opts...).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
		}
	}
}

// Classify returns the error to render for err: the first mapper match,
// err itself when it already carries an HTTPError or validation error, or
// ErrInternalServerError otherwise.
func Classify(err error, mappers ...ErrorMapper) error {
	var valErr ValidationError
	if errors.As(err, &valErr) || validator.IsValidationError(err) {
		return err
	}
	for _, m := range mappers {
		if he, ok := m(err); ok {
			return he
		}
	}
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return ErrInternalServerError
}
