package binder_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shutterdesk/core/pkg/binder"
)

type loginRequest struct {
	Subdomain string `json:"subdomain"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func newJSONRequest(body, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()
		req := newJSONRequest(`{"subdomain":"clientco","email":"ann@clientco.com","password":"secret"}`, "application/json")

		var got loginRequest
		require.NoError(t, binder.JSON()(req, &got))
		assert.Equal(t, loginRequest{Subdomain: "clientco", Email: "ann@clientco.com", Password: "secret"}, got)
	})

	t.Run("charset parameter accepted", func(t *testing.T) {
		t.Parallel()
		req := newJSONRequest(`{"email":"ann@clientco.com"}`, "application/json; charset=utf-8")

		var got loginRequest
		require.NoError(t, binder.JSON()(req, &got))
		assert.Equal(t, "ann@clientco.com", got.Email)
	})

	t.Run("trims string fields", func(t *testing.T) {
		t.Parallel()
		req := newJSONRequest(`{"subdomain":"  clientco ","email":"\tann@clientco.com\n"}`, "application/json")

		var got loginRequest
		require.NoError(t, binder.JSON()(req, &got))
		assert.Equal(t, "clientco", got.Subdomain)
		assert.Equal(t, "ann@clientco.com", got.Email)
	})

	t.Run("nested and slice strings trimmed", func(t *testing.T) {
		t.Parallel()
		type grant struct {
			Permissions []string `json:"permissions"`
			Note        *string  `json:"note"`
		}
		req := newJSONRequest(`{"permissions":[" order:read ","photo:upload"],"note":" hi "}`, "application/json")

		var got grant
		require.NoError(t, binder.JSON()(req, &got))
		assert.Equal(t, []string{"order:read", "photo:upload"}, got.Permissions)
		require.NotNil(t, got.Note)
		assert.Equal(t, "hi", *got.Note)
	})

	tests := []struct {
		name        string
		body        string
		contentType string
		wantErr     error
	}{
		{"missing content type", `{}`, "", binder.ErrMissingContentType},
		{"wrong content type", `{}`, "text/plain", binder.ErrUnsupportedMediaType},
		{"empty body", ``, "application/json", binder.ErrFailedToParseJSON},
		{"syntax error", `{"email":`, "application/json", binder.ErrFailedToParseJSON},
		{"type mismatch", `{"email":42}`, "application/json", binder.ErrFailedToParseJSON},
		{"unknown field", `{"email":"a@b.co","admin":true}`, "application/json", binder.ErrFailedToParseJSON},
		{"trailing data", `{"email":"a@b.co"}{"email":"c@d.co"}`, "application/json", binder.ErrFailedToParseJSON},
		{"oversized body", `{"password":"` + strings.Repeat("x", binder.DefaultMaxJSONSize) + `"}`, "application/json", binder.ErrFailedToParseJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got loginRequest
			err := binder.JSON()(newJSONRequest(tt.body, tt.contentType), &got)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
