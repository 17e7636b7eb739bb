// Package errs defines the error kinds shared across whoisthat packages.
//
// Callers match with errors.Is; the wrapped message carries the detail.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrArgument   = errors.New("invalid argument")
)

// ErrIncompatibleCredentials is returned when only one of username and
// password is available for the reddit client.
var ErrIncompatibleCredentials = fmt.Errorf("%w: incompatible client_username and client_password for reddit client", ErrArgument)

// Validation wraps ErrValidation with a formatted message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
