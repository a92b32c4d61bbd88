// Package evented provides the aggregate plumbing shared by the storefront:
// command rejection errors, validation helpers, event books and state
// reconstruction, and the gRPC server bootstrap.
package evented

import (
	"errors"
	"fmt"
)

// StatusCode represents the category of a command rejection.
type StatusCode int

const (
	StatusInvalidArgument StatusCode = iota
	StatusFailedPrecondition
	StatusNotFound
)

func (s StatusCode) String() string {
	switch s {
	case StatusInvalidArgument:
		return "INVALID_ARGUMENT"
	case StatusFailedPrecondition:
		return "FAILED_PRECONDITION"
	case StatusNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// CommandError is returned when a command is rejected by business logic.
type CommandError struct {
	Code    StatusCode
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}

// NewInvalidArgument creates a CommandError for invalid input.
func NewInvalidArgument(message string) *CommandError {
	return &CommandError{Code: StatusInvalidArgument, Message: message}
}

// NewInvalidArgumentf creates an invalid-input CommandError with a formatted message.
func NewInvalidArgumentf(format string, args ...interface{}) *CommandError {
	return &CommandError{Code: StatusInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NewFailedPrecondition creates a CommandError for violated preconditions.
func NewFailedPrecondition(message string) *CommandError {
	return &CommandError{Code: StatusFailedPrecondition, Message: message}
}

// NewNotFoundf creates a CommandError for a missing session or product.
func NewNotFoundf(format string, args ...interface{}) *CommandError {
	return &CommandError{Code: StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// AsCommandError extracts a CommandError from an error chain.
func AsCommandError(err error) *CommandError {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr
	}
	return nil
}

// IsValidation reports whether err rejects malformed caller input.
func IsValidation(err error) bool {
	cmdErr := AsCommandError(err)
	return cmdErr != nil && cmdErr.Code == StatusInvalidArgument
}

// IsNotFound reports whether err names a session or product that does not exist.
func IsNotFound(err error) bool {
	cmdErr := AsCommandError(err)
	return cmdErr != nil && cmdErr.Code == StatusNotFound
}

// IsFailedPrecondition reports whether err rejects a command the cart
// cannot absorb in its current state.
func IsFailedPrecondition(err error) bool {
	cmdErr := AsCommandError(err)
	return cmdErr != nil && cmdErr.Code == StatusFailedPrecondition
}
