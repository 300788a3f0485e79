package token

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Parse verifies the signature of token and decodes its payload into T.
// Payloads are only decoded after the signature matched.
func Parse[T any](token, secret string) (T, error) {
	var payload T
	if secret == "" {
		return payload, ErrEmptySecret
	}

	enc, encSig, ok := strings.Cut(token, ".")
	if !ok || enc == "" || encSig == "" || strings.Contains(encSig, ".") {
		return payload, ErrInvalidToken
	}
	data, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return payload, fmt.Errorf("%w: payload encoding", ErrInvalidToken)
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return payload, fmt.Errorf("%w: signature encoding", ErrInvalidToken)
	}

	if !hmac.Equal(sig, sign(data, secret)) {
		return payload, ErrSignatureInvalid
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return payload, nil
}
