// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Data errors. ErrMissingField is never returned by the screening core:
	// a missing field only makes the criterion that reads it fail.
	ErrMissingField = &Error{Code: "MISSING_FIELD", Message: "required field missing"}
	ErrNoData       = &Error{Code: "NO_DATA", Message: "no data available"}

	// Category errors
	ErrInvalidRange     = &Error{Code: "INVALID_RANGE", Message: "range minimum exceeds maximum"}
	ErrCategoryNotFound = &Error{Code: "CATEGORY_NOT_FOUND", Message: "category not found"}

	// Collector errors
	ErrCollectorFailed = &Error{Code: "COLLECTOR_FAILED", Message: "collector failed"}
	ErrRateLimited     = &Error{Code: "RATE_LIMITED", Message: "rate limited by data source"}
	ErrCircuitOpen     = &Error{Code: "CIRCUIT_OPEN", Message: "data source circuit open"}

	// Output errors
	ErrExportFailed = &Error{Code: "EXPORT_FAILED", Message: "report export failed"}
	ErrCacheFailed  = &Error{Code: "CACHE_FAILED", Message: "cache operation failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Sizing errors
	ErrInvalidSizing = &Error{Code: "INVALID_SIZING", Message: "invalid position sizing input"}
)
