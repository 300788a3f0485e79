package token_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shutterdesk/core/pkg/token"
)

type resetPayload struct {
	UserID string `json:"uid"`
	Exp    int64  `json:"exp"`
}

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()

	in := resetPayload{UserID: "u-1", Exp: 1893456000}
	tok, err := token.Generate(in, "secret")
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(tok, "."))

	out, err := token.Parse[resetPayload](tok, "secret")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	tok, err := token.Generate(resetPayload{UserID: "u-1"}, "secret")
	require.NoError(t, err)
	enc, sig, _ := strings.Cut(tok, ".")

	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"uid":"admin"}`)) + "." + sig

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{"wrong secret", tok, "other", token.ErrSignatureInvalid},
		{"forged payload", forged, "secret", token.ErrSignatureInvalid},
		{"no separator", enc, "secret", token.ErrInvalidToken},
		{"extra segment", tok + ".x", "secret", token.ErrInvalidToken},
		{"bad payload encoding", "!!!." + sig, "secret", token.ErrInvalidToken},
		{"bad signature encoding", enc + ".!!!", "secret", token.ErrInvalidToken},
		{"empty", "", "secret", token.ErrInvalidToken},
		{"empty secret", tok, "", token.ErrEmptySecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := token.Parse[resetPayload](tt.token, tt.secret)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.ErrorIs(t, token.ErrSignatureInvalid, token.ErrInvalidToken)
}

func TestGenerate_EmptySecret(t *testing.T) {
	t.Parallel()
	_, err := token.Generate(resetPayload{}, "")
	assert.ErrorIs(t, err, token.ErrEmptySecret)
}
