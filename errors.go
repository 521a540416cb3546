package ambience

import (
	"errors"
	"fmt"
)

// Common errors returned or reported by supervisors
var (
	// ErrConfig marks every configuration error raised at construction
	ErrConfig = errors.New("ambience: invalid configuration")

	// ErrNoStartCommand indicates a command set without a start command
	ErrNoStartCommand = fmt.Errorf("%w: start command is required", ErrConfig)

	// ErrNoController indicates a controller configuration without a command
	ErrNoController = fmt.Errorf("%w: controller command is required", ErrConfig)

	// ErrCommandFailed indicates an external command exited abnormally
	ErrCommandFailed = errors.New("ambience: command failed")

	// ErrNotAttached indicates a protocol operation was issued with no controller
	ErrNotAttached = errors.New("ambience: operation not supported while offline")

	// ErrController wraps an ERROR line reported by a controller
	ErrController = errors.New("ambience: controller error")

	// ErrControllerExited indicates the controller died without being unloaded
	ErrControllerExited = errors.New("ambience: controller exited unexpectedly")

	// ErrUnknownContainer indicates a Manager operation named an unregistered id
	ErrUnknownContainer = errors.New("ambience: unknown container")

	// ErrDuplicateContainer indicates a Manager already holds the id
	ErrDuplicateContainer = errors.New("ambience: container already registered")
)

// OpError represents an error from a supervisor operation
type OpError struct {
	// Op is the operation that failed
	Op Operation
	// ID is the container the supervisor is responsible for
	ID string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *OpError) Error() string {
	return fmt.Sprintf("ambience %s %q: %v", e.Op.String(), e.ID, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *OpError) Unwrap() error {
	return e.Err
}

// MultiError aggregates multiple errors from bulk operations
type MultiError struct {
	// Errors contains all accumulated errors
	Errors []error
}

// Error returns a summary of the accumulated errors
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred", len(m.Errors))
}

// Add appends an error to the collection if it's not nil
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// Unwrap exposes the accumulated errors to errors.Is and errors.As
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Err returns nil if no errors occurred, otherwise returns the MultiError itself
func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}
