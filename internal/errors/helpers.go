package errors

import "time"

// New creates a non-recoverable AppError.
func New(category ErrorCategory, code, message string, err error) *AppError {
	return &AppError{
		Code:      code,
		Category:  category,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// NewRecoverable creates an AppError that callers may log and continue past.
func NewRecoverable(category ErrorCategory, code, message string, err error) *AppError {
	appErr := New(category, code, message, err)
	appErr.Recoverable = true
	return appErr
}

// SystemError creates a SYSTEM category error instance.
func SystemError(code, message string, err error) *AppError {
	return New(ErrCategorySystem, code, message, err)
}

// NetworkError creates a recoverable NETWORK category error instance.
func NetworkError(code, message string, err error) *AppError {
	return NewRecoverable(ErrCategoryNetwork, code, message, err)
}

// ConfigError creates a CONFIG category error instance.
func ConfigError(code, message string, err error) *AppError {
	return New(ErrCategoryConfig, code, message, err)
}
