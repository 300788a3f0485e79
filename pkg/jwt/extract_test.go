package jwt_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shutterdesk/core/pkg/jwt"
)

func TestBearerTokenExtractor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"case insensitive scheme", "bearer abc", "abc", nil},
		{"missing", "", "", jwt.ErrMissingToken},
		{"wrong scheme", "Basic dXNlcjpwYXNz", "", jwt.ErrMalformedToken},
		{"no token", "Bearer ", "", jwt.ErrMalformedToken},
		{"no space", "Bearerabc", "", jwt.ErrMalformedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, err := jwt.BearerTokenExtractor(req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirstOf(t *testing.T) {
	t.Parallel()

	extract := jwt.FirstOf(jwt.BearerTokenExtractor, jwt.CookieTokenExtractor("access_token"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "from-cookie"})
	got, err := extract(req)
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", got)

	req.Header.Set("Authorization", "Bearer from-header")
	got, err = extract(req)
	require.NoError(t, err)
	assert.Equal(t, "from-header", got)

	req.Header.Set("Authorization", "Token nope")
	_, err = extract(req)
	assert.ErrorIs(t, err, jwt.ErrMalformedToken, "a malformed header is not skipped")

	_, err = extract(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, jwt.ErrMissingToken)
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, ok := jwt.GetClaims(ctx)
	assert.False(t, ok)

	claims := &jwt.Claims{Role: "ADMIN"}
	ctx = jwt.SetClaims(jwt.SetToken(ctx, "raw"), claims)

	got, ok := jwt.GetClaims(ctx)
	require.True(t, ok)
	assert.Same(t, claims, got)

	token, ok := jwt.GetToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "raw", token)
}
