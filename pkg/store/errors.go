package store

import "errors"

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order number already exists")
	ErrInvalidPlan    = errors.New("invalid plan")
)
