// Package gridreduce structured error types
package gridreduce

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Memory errors
	ErrTypeMemory ErrorType = iota
	// Invalid argument errors, raised before any work is enqueued
	ErrTypeInvalidArg
	// Execution errors, raised by a launch that failed while running
	ErrTypeExecution
	// Device errors
	ErrTypeDevice
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gridreduce %s error in %s: %s (caused by: %v)",
			e.Type, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("gridreduce %s error in %s: %s", e.Type, e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeMemory:
		return "Memory"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeExecution:
		return "Execution"
	case ErrTypeDevice:
		return "Device"
	default:
		return "Unknown"
	}
}

// NewMemoryError creates a memory-related error
func NewMemoryError(op string, message string, err error) error {
	return &Error{
		Type:    ErrTypeMemory,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &Error{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: message,
	}
}

// NewExecutionError creates an execution error
func NewExecutionError(op string, message string, err error) error {
	return &Error{
		Type:    ErrTypeExecution,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewDeviceError creates a device error
func NewDeviceError(op string, message string) error {
	return &Error{
		Type:    ErrTypeDevice,
		Op:      op,
		Message: message,
	}
}

var (
	// ErrInvalidDevice indicates invalid device ID
	ErrInvalidDevice = NewDeviceError("SetDevice", "invalid device ID")

	// ErrQueueClosed indicates a submission to a queue that was already closed
	ErrQueueClosed = NewExecutionError("Submit", "queue is closed", nil)
)

func errorType(err error) (ErrorType, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Type, true
	}
	return 0, false
}

// IsInvalidArgError checks if an error, or any error it wraps, is an
// invalid argument error
func IsInvalidArgError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeInvalidArg
}

// IsExecutionError checks if an error, or any error it wraps, is an
// execution error
func IsExecutionError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeExecution
}

// IsMemoryError checks if an error, or any error it wraps, is a memory error
func IsMemoryError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeMemory
}

// IsDeviceError checks if an error, or any error it wraps, is a device error
func IsDeviceError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeDevice
}
