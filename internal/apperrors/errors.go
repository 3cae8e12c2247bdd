package apperrors

import (
	"errors"
	"fmt"
)

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeCapacity      = "CAPACITY_EXCEEDED"
	CodeWorkflow      = "WORKFLOW_ERROR"
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeConflict      = "CONFLICT"
	CodeNotFound      = "NOT_FOUND"
	CodeInternal      = "INTERNAL_ERROR"
)

type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Remaining returns the remaining slot capacity carried by a capacity error.
func (e *AppError) Remaining() (int, bool) {
	if e.Code != CodeCapacity {
		return 0, false
	}
	n, ok := e.Details["remaining"].(int)
	return n, ok
}

func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}

func Capacity(remaining, requested int) *AppError {
	if remaining < 0 {
		remaining = 0
	}
	return &AppError{
		Code:    CodeCapacity,
		Message: fmt.Sprintf("only %d left, %d requested", remaining, requested),
		Details: map[string]any{
			"remaining": remaining,
			"requested": requested,
		},
	}
}

func Workflow(message string, err error) *AppError {
	return &AppError{
		Code:    CodeWorkflow,
		Message: message,
		Err:     err,
	}
}

func Configuration(message string, err error) *AppError {
	return &AppError{
		Code:    CodeConfiguration,
		Message: message,
		Err:     err,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Err:     err,
	}
}

// IsCode reports whether any AppError in err's chain has the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
