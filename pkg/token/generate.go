package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
)

// Generate encodes payload as JSON and signs it with HMAC-SHA256. The
// result is "<payload>.<signature>", both base64url without padding.
func Generate[T any](payload T, secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data) + "." +
		base64.RawURLEncoding.EncodeToString(sign(data, secret)), nil
}

func sign(data []byte, secret string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return h.Sum(nil)
}
