package filter

import (
	"errors"
	"fmt"
)

// ConfigError is returned when system matrices or initial conditions
// violate the model dimensions fixed at construction.
type ConfigError struct {
	// Op is the operation which failed
	Op string
	// Err is the underlying error
	Err error
}

// Error implements error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// InputError is returned when a measurement or control vector
// has the wrong length or contains non-finite values.
type InputError struct {
	// Name is the name of the offending input
	Name string
	// Err is the underlying error
	Err error
}

// Error implements error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("input %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *InputError) Unwrap() error { return e.Err }

// NumericalError is returned when the innovation covariance
// can not be inverted reliably.
type NumericalError struct {
	// Cond is the condition number of the innovation covariance
	Cond float64
	// Err is the underlying error
	Err error
}

// Error implements error interface.
func (e *NumericalError) Error() string {
	return fmt.Sprintf("numerical: condition number %g: %v", e.Cond, e.Err)
}

// Unwrap returns the underlying error.
func (e *NumericalError) Unwrap() error { return e.Err }

// NewConfigError returns ConfigError for operation op.
func NewConfigError(op string, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Op: op, Err: fmt.Errorf(format, args...)}
}

// NewInputError returns InputError for input name.
func NewInputError(name string, format string, args ...interface{}) *InputError {
	return &InputError{Name: name, Err: fmt.Errorf(format, args...)}
}

// IsConfig reports whether err is or wraps a ConfigError.
func IsConfig(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsInput reports whether err is or wraps an InputError.
func IsInput(err error) bool {
	var e *InputError
	return errors.As(err, &e)
}

// IsNumerical reports whether err is or wraps a NumericalError.
func IsNumerical(err error) bool {
	var e *NumericalError
	return errors.As(err, &e)
}
