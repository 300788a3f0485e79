package binder

import (
	"fmt"
	"net/http"
)

// Path creates a path parameter binder. extractor returns the raw value of
// one named parameter, e.g. chi.URLParam.
//
//	type OrderRequest struct {
//		ID uuid.UUID `path:"id"`
//	}
//
// Only fields with a path tag are bound, so a struct can also carry a JSON
// body. Supported field types are the basic kinds, pointers to them and
// types implementing encoding.TextUnmarshaler such as uuid.UUID.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrFailedToParsePath)
		}
		return bindTagged(v, "path", func(name string) (string, bool) {
			value := extractor(r, name)
			return value, value != ""
		}, ErrFailedToParsePath)
	}
}
