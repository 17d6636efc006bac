// Package apperror gives every solver a single structured error type
// instead of ad-hoc fmt.Errorf strings, so callers can distinguish a
// malformed Problem from an infeasible one from an internal solver bug
// with a single errors.As check.
package apperror

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the specific failure behind an Error.
type ErrorCode string

const (
	// Validation errors, raised before a solve ever starts.
	CodeMalformedDimensions ErrorCode = "MALFORMED_DIMENSIONS"
	CodeInvalidMinMax       ErrorCode = "INVALID_MIN_MAX"
	CodeInvalidConstraint   ErrorCode = "INVALID_CONSTRAINT"
	CodeLockConflict        ErrorCode = "LOCK_CONFLICT"
	CodeInvalidProbLimit    ErrorCode = "INVALID_PROB_LIMIT"
	CodeNilInput            ErrorCode = "NIL_INPUT"

	// Infeasible: the Problem is well-formed but no assignment satisfies
	// its hard constraints.
	CodeInfeasibleQuota ErrorCode = "INFEASIBLE_QUOTA"
	CodeInfeasibleFlow  ErrorCode = "INFEASIBLE_FLOW"
	CodeInfeasibleLP    ErrorCode = "INFEASIBLE_LP"
	CodeInfeasibleSwap  ErrorCode = "INFEASIBLE_SWAP"

	// SolverError: an internal invariant broke mid-solve.
	CodeNegativeCycle   ErrorCode = "NEGATIVE_CYCLE"
	CodeNumericOverflow ErrorCode = "NUMERIC_OVERFLOW"
	CodeLPUnbounded     ErrorCode = "LP_UNBOUNDED"
	CodeBvNInvariant    ErrorCode = "BVN_INVARIANT_VIOLATION"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"

	// Cancelled: the caller's context was cancelled mid-solve.
	CodeCancelled ErrorCode = "CANCELLED"
)

// Severity ranks how serious an error is, independent of its Code.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is the structured error every package in pkg/assign returns.
type Error struct {
	Code     ErrorCode
	Message  string
	Field    string
	Details  map[string]any
	Cause    error
	Severity Severity
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityError}
}

func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{Code: code, Message: message, Field: field, Details: make(map[string]any), Severity: SeverityError}
}

func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Details: make(map[string]any), Severity: SeverityError}
}

func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Is reports whether err is an *Error carrying the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode carried by err, defaulting to CodeInternal
// for errors that did not originate in this package.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsInfeasible reports whether err is one of the Infeasible codes.
func IsInfeasible(err error) bool {
	switch Code(err) {
	case CodeInfeasibleQuota, CodeInfeasibleFlow, CodeInfeasibleLP, CodeInfeasibleSwap:
		return true
	default:
		return false
	}
}

// IsValidationError reports whether err is one of the validation codes.
func IsValidationError(err error) bool {
	switch Code(err) {
	case CodeMalformedDimensions, CodeInvalidMinMax, CodeInvalidConstraint,
		CodeLockConflict, CodeInvalidProbLimit, CodeNilInput:
		return true
	default:
		return false
	}
}

// IsSolverError reports whether err is one of the internal solver codes.
func IsSolverError(err error) bool {
	switch Code(err) {
	case CodeNegativeCycle, CodeNumericOverflow, CodeLPUnbounded, CodeBvNInvariant, CodeInternal:
		return true
	default:
		return false
	}
}

// IsCancelled reports whether err represents context cancellation.
func IsCancelled(err error) bool {
	return Code(err) == CodeCancelled
}

// ValidationErrors accumulates every malformed field found while building
// a Problem, rather than stopping at the first one.
type ValidationErrors struct {
	Errors   []*Error
	Warnings []*Error
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]*Error, 0), Warnings: make([]*Error, 0)}
}

func (v *ValidationErrors) Add(err *Error) {
	if err.Severity == SeverityWarning {
		v.Warnings = append(v.Warnings, err)
	} else {
		v.Errors = append(v.Errors, err)
	}
}

func (v *ValidationErrors) AddError(code ErrorCode, message string) {
	v.Errors = append(v.Errors, New(code, message))
}

func (v *ValidationErrors) AddErrorWithField(code ErrorCode, message, field string) {
	v.Errors = append(v.Errors, NewWithField(code, message, field))
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) IsValid() bool {
	return !v.HasErrors()
}

// First returns the first recorded error, the one a caller of Build
// reports when it needs a single ValidationError.
func (v *ValidationErrors) First() *Error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v.Errors[0]
}

func (v *ValidationErrors) ErrorMessages() []string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Error()
	}
	return messages
}
