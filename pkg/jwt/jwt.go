package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	HeaderType      = "JWT"
	HeaderAlgorithm = "HS256"
)

// Header is the JOSE header of a token.
type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// StandardClaims holds the registered claims of RFC 7519. Temporal claims are
// Unix seconds; zero values are treated as unset.
type StandardClaims struct {
	ID        string `json:"jti,omitempty"`
	Subject   string `json:"sub,omitempty"`
	Issuer    string `json:"iss,omitempty"`
	Audience  string `json:"aud,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	NotBefore int64  `json:"nbf,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

// ValidAt checks the temporal claims against now.
func (c StandardClaims) ValidAt(now time.Time) error {
	ts := now.Unix()
	if c.ExpiresAt > 0 && ts >= c.ExpiresAt {
		return ErrExpiredToken
	}
	if c.NotBefore > 0 && ts < c.NotBefore {
		return ErrNotYetValid
	}
	return nil
}

// Service signs and verifies HS256 tokens with a single in-memory key.
type Service struct {
	signingKey []byte
	now        func() time.Time
}

// New creates a Service. The key should be at least 32 random bytes.
func New(signingKey []byte) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	return &Service{signingKey: signingKey, now: time.Now}, nil
}

// NewFromString is New for string keys read from configuration.
func NewFromString(signingKey string) (*Service, error) {
	return New([]byte(signingKey))
}

// Generate serializes claims and signs them.
func (s *Service) Generate(claims any) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}

	headerJSON, err := json.Marshal(Header{Type: HeaderType, Algorithm: HeaderAlgorithm})
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	return payload + "." + s.sign(payload), nil
}

// Parse verifies the signature, then decodes claims and checks temporal
// validity when claims implement ValidAt. Every failure wraps ErrInvalidToken.
func (s *Service) Parse(token string, claims any) error {
	return s.parse(token, claims, s.now())
}

func (s *Service) parse(token string, claims any, now time.Time) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ErrMalformedToken
	}

	payload := parts[0] + "." + parts[1]
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(s.sign(payload))) != 1 {
		return ErrInvalidSignature
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return fmt.Errorf("%w: header: %v", ErrMalformedToken, err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return fmt.Errorf("%w: header: %v", ErrMalformedToken, err)
	}
	if header.Algorithm != HeaderAlgorithm {
		return ErrUnexpectedSigningMethod
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return fmt.Errorf("%w: claims: %v", ErrMalformedToken, err)
	}
	if err := json.Unmarshal(claimsJSON, claims); err != nil {
		return fmt.Errorf("%w: claims: %v", ErrMalformedToken, err)
	}

	if v, ok := claims.(interface{ ValidAt(time.Time) error }); ok {
		if err := v.ValidAt(now); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) sign(payload string) string {
	h := hmac.New(sha256.New, s.signingKey)
	h.Write([]byte(payload))
	return base64URLEncode(h.Sum(nil))
}

func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
