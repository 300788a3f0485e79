package auth

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserInactive       = errors.New("user is inactive")
)

// Password reset errors
var (
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenInvalid          = errors.New("invalid token")
	ErrTokenAlreadyUsed      = errors.New("token already used")
	ErrPasswordResetDisabled = errors.New("password reset is not configured")
)
