package ratelimiter

import "errors"

var (
	ErrInvalidConfig     = errors.New("ratelimiter: invalid configuration")
	ErrInvalidTokenCount = errors.New("ratelimiter: token count must be positive")
	ErrLimitExceeded     = errors.New("ratelimiter: limit exceeded")
)
