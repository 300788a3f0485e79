package binder_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shutterdesk/core/pkg/binder"
)

func mapExtractor(params map[string]string) func(*http.Request, string) string {
	return func(_ *http.Request, name string) string { return params[name] }
}

func TestPath(t *testing.T) {
	t.Parallel()

	type basic struct {
		ID       string  `path:"id"`
		Page     int     `path:"page"`
		Ratio    float64 `path:"ratio"`
		Archived bool    `path:"archived"`
		Limit    *uint   `path:"limit"`
		Internal string  `path:"-"`
		Slug     string
	}

	t.Run("basic kinds", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		extract := mapExtractor(map[string]string{
			"id": "ord-1", "page": "3", "ratio": "0.5", "archived": "true",
			"limit": "20", "Internal": "nope", "slug": "spring-wedding",
		})

		var got basic
		require.NoError(t, binder.Path(extract)(req, &got))
		assert.Equal(t, "ord-1", got.ID)
		assert.Equal(t, 3, got.Page)
		assert.InDelta(t, 0.5, got.Ratio, 1e-9)
		assert.True(t, got.Archived)
		require.NotNil(t, got.Limit)
		assert.Equal(t, uint(20), *got.Limit)
		assert.Empty(t, got.Internal)
		assert.Empty(t, got.Slug, "untagged fields are not bound")
	})

	t.Run("missing params keep existing values", func(t *testing.T) {
		t.Parallel()
		got := basic{ID: "keep"}
		require.NoError(t, binder.Path(mapExtractor(nil))(httptest.NewRequest(http.MethodGet, "/", nil), &got))
		assert.Equal(t, "keep", got.ID)
		assert.Nil(t, got.Limit)
	})

	t.Run("text unmarshaler", func(t *testing.T) {
		t.Parallel()
		type orderRequest struct {
			ID uuid.UUID `path:"id"`
		}
		id := uuid.New()

		var got orderRequest
		err := binder.Path(mapExtractor(map[string]string{"id": id.String()}))(httptest.NewRequest(http.MethodGet, "/", nil), &got)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)

		err = binder.Path(mapExtractor(map[string]string{"id": "not-a-uuid"}))(httptest.NewRequest(http.MethodGet, "/", nil), &got)
		require.ErrorIs(t, err, binder.ErrFailedToParsePath)
	})

	t.Run("chi url params", func(t *testing.T) {
		t.Parallel()
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", "ord-7")
		req := httptest.NewRequest(http.MethodGet, "/orders/ord-7", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		var got basic
		require.NoError(t, binder.Path(chi.URLParam)(req, &got))
		assert.Equal(t, "ord-7", got.ID)
	})

	errTests := []struct {
		name    string
		extract func(*http.Request, string) string
		target  any
	}{
		{"nil extractor", nil, &basic{}},
		{"nil target", mapExtractor(nil), (*basic)(nil)},
		{"non-pointer target", mapExtractor(nil), basic{}},
		{"pointer to non-struct", mapExtractor(nil), new(string)},
		{"invalid int", mapExtractor(map[string]string{"page": "two"}), &basic{}},
		{"invalid bool", mapExtractor(map[string]string{"archived": "yes"}), &basic{}},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := binder.Path(tt.extract)(httptest.NewRequest(http.MethodGet, "/", nil), tt.target)
			require.ErrorIs(t, err, binder.ErrFailedToParsePath)
		})
	}
}
