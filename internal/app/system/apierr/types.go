// Package apierr defines the error kinds handlers return and how each one
// is written to the client.
package apierr

import "fmt"

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

// ValidationError is malformed caller input: a bad identifier, an
// out-of-enum value, or an unparseable body.
type ValidationError struct {
	ErrorMessage
}

// NotFoundError is a keyed lookup that required a match and found none.
type NotFoundError struct {
	ErrorMessage
}

// DatabaseError wraps a store failure with the operation that hit it.
type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// StartupConfigError is a configuration problem that must stop the process
// before it starts serving.
type StartupConfigError struct {
	ErrorMessage
	Key string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewDatabaseError(operation string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("%s: %v", operation, err)},
		Operation:    operation,
		Err:          err,
	}
}

func NewStartupConfigError(key, message string) *StartupConfigError {
	return &StartupConfigError{
		ErrorMessage: ErrorMessage{Message: message},
		Key:          key,
	}
}
