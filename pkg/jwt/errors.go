package jwt

import (
	"errors"
	"fmt"
)

// ErrInvalidToken matches every token rejection. The specific causes below
// wrap it, so callers may test for either.
var ErrInvalidToken = errors.New("jwt: invalid token")

var (
	ErrMalformedToken          = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrExpiredToken            = fmt.Errorf("%w: token is expired", ErrInvalidToken)
	ErrNotYetValid             = fmt.Errorf("%w: token is not valid yet", ErrInvalidToken)
	ErrInvalidSignature        = fmt.Errorf("%w: invalid signature", ErrInvalidToken)
	ErrUnexpectedSigningMethod = fmt.Errorf("%w: unexpected signing method", ErrInvalidToken)
	ErrKindMismatch            = fmt.Errorf("%w: token kind mismatch", ErrInvalidToken)
	ErrInvalidClaims           = fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	ErrRevokedToken            = fmt.Errorf("%w: token has been revoked", ErrInvalidToken)
	ErrMissingToken            = fmt.Errorf("%w: no token in request", ErrInvalidToken)
)

var (
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	ErrMissingClaims     = errors.New("jwt: missing claims")
)
