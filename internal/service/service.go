// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// Service errors.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrTripNotFound        = errors.New("trip not found")
	ErrFavoriteNotFound    = errors.New("favorite not found")
	ErrFavoriteExists      = errors.New("this address is already in your favorites")
	ErrHomeAddressNotFound = errors.New("home address not set")
	ErrEmailExists         = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	// ErrBackendOperation wraps data backend failures. The action is aborted
	// and not retried.
	ErrBackendOperation = errors.New("backend operation failed")
)

func newID() string {
	return ulid.Make().String()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func backend(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBackendOperation, op, err)
}
