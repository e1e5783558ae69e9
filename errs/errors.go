// Package errs provides the error taxonomy shared across the data-access
// layer. It includes sentinel errors, typed errors carrying failure context,
// and helper predicates for classification with errors.Is / errors.As.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNotConnected is returned when a query or exec is attempted while
	// the store connection is down. Callers must reconnect.
	ErrNotConnected = errors.New("store connection is not available")

	// ErrNotFound indicates a referenced entity id does not exist. It is
	// distinguished from validation failures because it depends on store
	// state, not caller input.
	ErrNotFound = errors.New("record not found")
)

// ConnectionError reports exhausted retries while establishing a store
// connection. It carries the last underlying failure.
type ConnectionError struct {
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError wraps a statement rejected by the store. It is propagated
// verbatim to the caller; no retry happens at this layer.
type QueryError struct {
	Statement string
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %s: %v", e.Statement, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ValidationError reports caller-supplied data failing a field-level rule.
// It never reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on field %q: %s", e.Field, e.Reason)
}

// AuthError reports a credential or session failure. The message is
// deliberately opaque: it must not reveal whether the account exists.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }

// NewAuthError returns the canonical opaque credential failure.
func NewAuthError() *AuthError {
	return &AuthError{Reason: "invalid credentials"}
}

// NotFound wraps ErrNotFound with the entity kind and id that was missing.
func NotFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err is a field validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAuth reports whether err is a credential or session failure.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
