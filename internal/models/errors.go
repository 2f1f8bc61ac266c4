package models

import "errors"

// Domain error values. Repositories and services wrap these with context via
// fmt.Errorf("...: %w", err); handlers map them to HTTP statuses with
// errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOutOfStock         = errors.New("out of stock or insufficient quantity")
	ErrInvalidOrderState  = errors.New("only pending orders can be cancelled")
	ErrInvalidOrderStatus = errors.New("invalid order status")
)
