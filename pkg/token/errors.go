package token

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrSignatureInvalid = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrEmptySecret      = errors.New("token secret is empty")
)
