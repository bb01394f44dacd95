// Package errors provides standardized error handling for the scoring engine.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeResultPersistFailed      ErrorCode = "RESULT_PERSIST_FAILED"
	ErrCodeResultLookupFailed       ErrorCode = "RESULT_LOOKUP_FAILED"
	ErrCodeConfigLookupFailed       ErrorCode = "CONFIG_LOOKUP_FAILED"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResultPersistFailedError creates a retryable persistence error. A tally
// that was computed but not stored must surface as this, never as success.
func NewResultPersistFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultPersistFailed,
		Message:   "Failed to persist assessment result",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResultLookupFailedError creates a retryable result read error.
func NewResultLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultLookupFailed,
		Message:   "Failed to read stored assessment result",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigLookupFailedError creates a retryable configuration read error.
// A missing configuration row is not an error; only query failures are.
func NewConfigLookupFailedError(testType, code string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigLookupFailed,
		Message:   "Failed to read result configuration",
		Details:   fmt.Sprintf("testType: %s, resultCode: %s, error: %s", testType, code, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error. Callers treat
// this as a miss; it never fails a scoring operation.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Result cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// IsRetryable reports whether err is a retryable StandardError.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// CodeOf extracts the error code, or empty for foreign errors.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeResultPersistFailed,
		ErrCodeResultLookupFailed,
		ErrCodeConfigLookupFailed:
		return 3 // Retryable technical errors

	case ErrCodeCacheUnavailable:
		return 1 // Cache is best-effort; one retry then fall back to the store

	default:
		return 0
	}
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeDatabaseConnectionFailed, ErrCodeResultPersistFailed, ErrCodeResultLookupFailed:
		return "storage"
	case ErrCodeConfigLookupFailed:
		return "configuration"
	case ErrCodeCacheUnavailable:
		return "cache"
	default:
		return "internal"
	}
}
