// Package toolerrors provides structured error types for tool invocation
// failures. ToolError preserves error chains and supports errors.Is/As
// while staying serializable across the hook subprocess boundary.
package toolerrors

import (
	"errors"
	"fmt"
)

// ToolError represents a structured tool failure that preserves a message
// and causal context while still implementing the standard error
// interface. Tool errors may be nested via Cause to retain diagnostics
// across hook round-trips and failure-response synthesis.
type ToolError struct {
	// Message is the human-readable summary of the failure.
	Message string
	// Cause links to the underlying tool error, enabling error chains
	// with errors.Is/As.
	Cause *ToolError
}

// New constructs a ToolError with the provided message. Use when the
// failure does not wrap an underlying error but still requires
// structured reporting.
func New(message string) *ToolError {
	if message == "" {
		message = "tool error"
	}
	return &ToolError{Message: message}
}

// NewWithCause constructs a ToolError that wraps an underlying error. The
// cause is converted into a ToolError chain so metadata survives
// serialization while still supporting errors.Is/As through Unwrap.
func NewWithCause(message string, cause error) *ToolError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &ToolError{
		Message: message,
		Cause:   FromError(cause),
	}
}

// FromError converts an arbitrary error into a ToolError chain.
func FromError(err error) *ToolError {
	if err == nil {
		return nil
	}
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return &ToolError{
		Message: err.Error(),
		Cause:   FromError(errors.Unwrap(err)),
	}
}

// Errorf formats according to a format specifier and returns the result
// as a ToolError.
func Errorf(format string, args ...any) *ToolError {
	return New(fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap returns the underlying tool error to support errors.Is/As.
func (e *ToolError) Unwrap() error {
	if e == nil {
		return nil
	}
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// Fatal marks a handler failure as turn-aborting (spec §7: Fatal errors
// surface out of dispatch and are never converted to model-visible
// outputs).
type Fatal struct {
	*ToolError
}

// NewFatal wraps a message as a Fatal dispatch error.
func NewFatal(message string) *Fatal {
	return &Fatal{ToolError: New(message)}
}

// NewFatalWithCause wraps an underlying error as a Fatal dispatch error.
func NewFatalWithCause(message string, cause error) *Fatal {
	return &Fatal{ToolError: NewWithCause(message, cause)}
}

// RespondToModel marks a handler failure as recoverable at the tool level
// (spec §7): dispatch catches it and synthesizes a failure response item
// so the model can see the error and decide how to recover.
type RespondToModel struct {
	*ToolError
}

// NewRespondToModel wraps a message as a RespondToModel dispatch error.
func NewRespondToModel(message string) *RespondToModel {
	return &RespondToModel{ToolError: New(message)}
}

// NewRespondToModelWithCause wraps an underlying error as a
// RespondToModel dispatch error.
func NewRespondToModelWithCause(message string, cause error) *RespondToModel {
	return &RespondToModel{ToolError: NewWithCause(message, cause)}
}

// MissingLocalShellCallID reports a LocalShellCall model item that
// supplied neither an `id` nor a `call_id` (spec §4.1).
type MissingLocalShellCallID struct {
	*ToolError
}

// NewMissingLocalShellCallID constructs the router classification error.
func NewMissingLocalShellCallID() *MissingLocalShellCallID {
	return &MissingLocalShellCallID{ToolError: New("local shell call is missing both id and call_id")}
}
