package scopes

import (
	"errors"
	"fmt"
)

// ErrInvalidScope is returned when a scope does not follow the "resource:action" format.
var ErrInvalidScope = errors.New("scopes: invalid scope format")

// InvalidScopeError names the offending scope.
type InvalidScopeError struct {
	Scope string
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidScope, e.Scope)
}

func (e *InvalidScopeError) Unwrap() error { return ErrInvalidScope }
