package config

import "fmt"

// ValidationError indicates one option or config file value is invalid.
// Err holds the underlying failure when the value was rejected by a parser
// or by the metrics configuration checks.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error returns a user-facing validation error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap exposes the underlying failure.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ConflictError indicates two options cannot be used together.
type ConflictError struct {
	Left  string
	Right string
}

// Error returns a user-facing conflict error message.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("options %s and %s cannot be used together", e.Left, e.Right)
}

// NewValidationError constructs a validation error.
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// InvalidValue turns a parse or check failure for field into a validation
// error that still matches the cause with errors.Is.
func InvalidValue(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{
		Field:   field,
		Message: err.Error(),
		Err:     err,
	}
}

// NewConflictError constructs an option conflict error.
func NewConflictError(left, right string) error {
	return &ConflictError{
		Left:  left,
		Right: right,
	}
}

// WrapError adds config operation context while preserving the original error.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("config %s: %w", op, err)
}
