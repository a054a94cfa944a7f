// Package errors provides standardized error handling for the certificate pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeParticipantNotFound ErrorCode = "PARTICIPANT_NOT_FOUND"

	ErrCodeRenderTimeout     ErrorCode = "RENDER_TIMEOUT"
	ErrCodeRenderUnavailable ErrorCode = "RENDER_UNAVAILABLE"
	ErrCodeRenderFailed      ErrorCode = "RENDER_FAILED"

	ErrCodeDeliveryAuthFailed       ErrorCode = "DELIVERY_AUTH_FAILED"
	ErrCodeDeliveryConnectionFailed ErrorCode = "DELIVERY_CONNECTION_FAILED"
	ErrCodeDeliverySendFailed       ErrorCode = "DELIVERY_SEND_FAILED"

	ErrCodeDatabaseQueryFailed  ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodeDatabaseInsertFailed ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeParticipantLocked ErrorCode = "PARTICIPANT_LOCKED"
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

// CodeOf extracts the ErrorCode from err, or empty string when err is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// NewParticipantNotFoundError creates a non-retryable lookup error.
func NewParticipantNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeParticipantNotFound,
		Message:   "Participant not found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRenderTimeoutError creates a retryable converter timeout error.
func NewRenderTimeoutError(timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderTimeout,
		Message:   "PDF conversion exceeded timeout",
		Details:   fmt.Sprintf("timeout: %s", timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRenderUnavailableError creates a non-retryable missing-converter error.
func NewRenderUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderUnavailable,
		Message:   "PDF converter binary not found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRenderFailedError creates a retryable converter execution error.
func NewRenderFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderFailed,
		Message:   "PDF conversion failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeliveryAuthFailedError creates a non-retryable mail authentication error.
func NewDeliveryAuthFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeliveryAuthFailed,
		Message:   "Mail transport authentication failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeliveryConnectionFailedError creates a retryable mail connection error.
func NewDeliveryConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeliveryConnectionFailed,
		Message:   "Mail transport connection failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeliverySendFailedError creates a retryable mail send error.
func NewDeliverySendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeliverySendFailed,
		Message:   "Mail send failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseQueryFailedError creates a retryable query error.
func NewDatabaseQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseQueryFailed,
		Message:   "Database query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewParticipantLockedError signals a concurrent run for the same participant.
func NewParticipantLockedError(participantID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeParticipantLocked,
		Message:   "Participant pipeline run already in progress",
		Details:   fmt.Sprintf("participantId: %d", participantID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDeliveryConnectionFailed,
		ErrCodeDeliverySendFailed,
		ErrCodeDatabaseQueryFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeRenderFailed:
		return 3

	case ErrCodeRenderTimeout,
		ErrCodeParticipantLocked:
		return 1

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}
