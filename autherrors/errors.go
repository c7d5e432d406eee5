package autherrors

import (
	"errors"
	"fmt"
)

// Common error kinds returned by the session and API client packages.
// Callers match them with errors.Is / errors.As rather than inspecting
// message text.
var (
	// Transport errors
	ErrNetwork = errors.New("network error")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountUnverified  = errors.New("account is not verified")
	ErrUnauthenticated    = errors.New("no active session")

	// Session errors
	ErrSessionExpired = errors.New("session expired")

	// Local precondition errors
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// ValidationError carries the most specific validation message the backend
// returned for a failed submission. Field is empty for non-field errors.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
