// Package kernelerrors provides the typed error taxonomy for the geometric kernel.
//
// Routine numerical failures inside the kernel (offset retries, boolean
// fallbacks) are never reported through this package: they surface as
// warnings on the operation's result record. KernelError is reserved for
// invariant-breaking conditions that the validation pipeline must see.
package kernelerrors

import (
	"fmt"
	"time"
)

// Kind is the error taxonomy from the validation pipeline design. It names a
// class of geometric failure, not a Go type.
type Kind string

const (
	DegenerateGeometry  Kind = "degenerate-geometry"
	SelfIntersection    Kind = "self-intersection"
	NumericalInstability Kind = "numerical-instability"
	TopologyError       Kind = "topology-error"
	DuplicateVertices   Kind = "duplicate-vertices"
	BooleanFailure      Kind = "boolean-failure"
	OffsetFailure       Kind = "offset-failure"
	ToleranceExceeded   Kind = "tolerance-exceeded"
	ComplexityExceeded  Kind = "complexity-exceeded"
	InvalidParameter    Kind = "invalid-parameter"
	ValidationFailure   Kind = "validation-failure"
)

// KernelError is the standardized error carried out of the kernel for
// structural (non-recoverable-by-retry) failures.
type KernelError struct {
	Kind        Kind
	Operation   string
	Message     string
	InputSummary string
	SuggestedFix string
	Recoverable bool
	Timestamp   time.Time
	Cause       error
}

// Error implements the error interface.
func (e *KernelError) Error() string {
	if e.InputSummary != "" {
		return fmt.Sprintf("[%s] %s: %s (input: %s)", e.Kind, e.Operation, e.Message, e.InputSummary)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Operation, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *KernelError) Unwrap() error {
	return e.Cause
}

// New constructs a KernelError, stamping the current time.
func New(kind Kind, operation, message string) *KernelError {
	return &KernelError{
		Kind:      kind,
		Operation: operation,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithInput attaches a short summary of the offending input.
func (e *KernelError) WithInput(summary string) *KernelError {
	e.InputSummary = summary
	return e
}

// WithFix attaches a suggested-fix string.
func (e *KernelError) WithFix(fix string) *KernelError {
	e.SuggestedFix = fix
	return e
}

// WithCause wraps an underlying error.
func (e *KernelError) WithCause(cause error) *KernelError {
	e.Cause = cause
	return e
}

// Recoverably marks the error as recoverable by the validation pipeline.
func (e *KernelError) Recoverably() *KernelError {
	e.Recoverable = true
	return e
}

// BooleanFailureErr is the typed error the boolean operations engine builds
// when both the primary and the relaxed-tolerance retry fail; the engine
// reports its Error() text in the Result's warnings rather than returning it.
func BooleanFailureErr(operation, message string) *KernelError {
	return New(BooleanFailure, operation, message).WithFix("retry with relaxed tolerance or simplify inputs first").Recoverably()
}

// OffsetFailureErr is raised when the offset engine's fallback path itself
// could not produce a usable curve (degenerate input).
func OffsetFailureErr(operation, message string) *KernelError {
	return New(OffsetFailure, operation, message).WithFix("check baseline for fewer than 2 points or non-positive distance")
}
