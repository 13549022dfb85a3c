package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors.
var (
	// ErrWaitBudgetExceeded marks an async job that outlived the poll budget.
	// Distinct from job failure: the job may still finish on the service side.
	ErrWaitBudgetExceeded = errors.New("poll wait budget exceeded")
	// ErrJobFailed marks an async job resolving to a terminal non-success state.
	ErrJobFailed = errors.New("async job failed")
	// ErrAuthFailed marks a rejected CMS authentication attempt.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrUnsupportedFormat marks a key with no matching extraction strategy.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrInvalidInput marks a work message rejected before processing.
	ErrInvalidInput = errors.New("invalid input")
)

// NewAppError constructs a classified error.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
