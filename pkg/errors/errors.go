// Package errors provides structured error handling for scenepool
package errors

import (
	"errors"
	"runtime"

	stringpool "github.com/scenekit/scenepool/pkg/strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal system errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeDisposed represents operations attempted on a disposed pool
	// or collection
	ErrorTypeDisposed ErrorType = "disposed"
	// ErrorTypeNotOwned represents an instance returned to a pool that did
	// not create it
	ErrorTypeNotOwned ErrorType = "not_owned"
	// ErrorTypeNotActive represents a return of an instance that is not
	// currently checked out
	ErrorTypeNotActive ErrorType = "not_active"
	// ErrorTypeInvalidAccess represents reading a handle after invalidation
	ErrorTypeInvalidAccess ErrorType = "invalid_access"
	// ErrorTypeNullPrototype represents an acquire against an absent
	// prototype reference
	ErrorTypeNullPrototype ErrorType = "null_prototype"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return stringpool.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return stringpool.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsContractViolation reports whether the error indicates a caller bug
// (wrong pool, instance not checked out). These are assertion-class failures
// meant to be caught in testing rather than handled at runtime.
func IsContractViolation(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	switch e.Type {
	case ErrorTypeNotOwned, ErrorTypeNotActive:
		return true
	default:
		return false
	}
}

// IsRecoverable reports whether the caller can degrade gracefully: the
// resource is simply gone (disposed pool, invalid handle) or was never there
// (null prototype).
func IsRecoverable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	switch e.Type {
	case ErrorTypeDisposed, ErrorTypeInvalidAccess, ErrorTypeNullPrototype:
		return true
	default:
		return false
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
