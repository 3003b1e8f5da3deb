package conformd

import (
	"errors"
	"fmt"
)

// RuntimeError represents an operational error that should lead to exit
// code 2: configuration errors, unreadable plan or profile files, engine
// faults. It never indicates a defect in the target server.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError.
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError.
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// ConformanceError represents a failed conformance verdict (exit code 1):
// the run completed and the target did not conform.
type ConformanceError struct {
	Message string
}

func (e *ConformanceError) Error() string {
	return fmt.Sprintf("conformance failure: %s", e.Message)
}

// NewConformanceError creates a new ConformanceError.
func NewConformanceError(message string) *ConformanceError {
	return &ConformanceError{Message: message}
}

// IsConformanceError checks if the error is or wraps a ConformanceError.
func IsConformanceError(err error) bool {
	var confErr *ConformanceError
	return err != nil && errors.As(err, &confErr)
}
