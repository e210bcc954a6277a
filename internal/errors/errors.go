package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInvalidTransition indicates a partner lifecycle transition guard failed.
	ErrCodeInvalidTransition ErrorCode = "invalid_transition"
	// ErrCodeNotEligible indicates a capability gate rejected the operation.
	ErrCodeNotEligible ErrorCode = "not_eligible"
	// ErrCodeTemplateNotFound indicates a notification kind has no registered template.
	ErrCodeTemplateNotFound ErrorCode = "template_not_found"
	// ErrCodeTransportFailure indicates a transient mail transport error.
	ErrCodeTransportFailure ErrorCode = "transport_failure"
	// ErrCodePermanentFailure indicates a notification exhausted its delivery attempts.
	ErrCodePermanentFailure ErrorCode = "permanent_failure"
	// ErrCodeForeignKey indicates a foreign key constraint violation.
	ErrCodeForeignKey ErrorCode = "foreign_key"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation and conflict errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: message,
	}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
	}
}

// ConflictField creates a new Conflict error naming the violated field.
func ConflictField(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
		Field:   field,
	}
}

// Conflictf creates a new Conflict error with formatted message.
func Conflictf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: fmt.Sprintf(format, args...),
	}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// InvalidTransitionf creates an error for a rejected lifecycle transition,
// naming the current and requested states.
func InvalidTransitionf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotEligible creates an error for a failed capability gate.
func NotEligible(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNotEligible,
		Message: message,
	}
}

// NotEligiblef creates a new NotEligible error with formatted message.
func NotEligiblef(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeNotEligible,
		Message: fmt.Sprintf(format, args...),
	}
}

// TemplateNotFoundf creates an error for a notification kind with no registered template.
func TemplateNotFoundf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeTemplateNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

// TransportFailure wraps a transient mail transport error.
func TransportFailure(message string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeTransportFailure,
		Message: message,
		Cause:   cause,
	}
}

// PermanentFailuref creates an error for a notification whose attempts are exhausted.
func PermanentFailuref(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodePermanentFailure,
		Message: fmt.Sprintf(format, args...),
	}
}

// ForeignKey creates a new ForeignKey error.
func ForeignKey(message string) *AppError {
	return &AppError{
		Code:    ErrCodeForeignKey,
		Message: message,
	}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
	}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	return isCode(err, ErrCodeConflict)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsInvalidTransition checks if an error is an InvalidTransition error.
func IsInvalidTransition(err error) bool {
	return isCode(err, ErrCodeInvalidTransition)
}

// IsNotEligible checks if an error is a NotEligible error.
func IsNotEligible(err error) bool {
	return isCode(err, ErrCodeNotEligible)
}

// IsTemplateNotFound checks if an error is a TemplateNotFound error.
func IsTemplateNotFound(err error) bool {
	return isCode(err, ErrCodeTemplateNotFound)
}

// IsTransportFailure checks if an error is a TransportFailure error.
func IsTransportFailure(err error) bool {
	return isCode(err, ErrCodeTransportFailure)
}

// IsPermanentFailure checks if an error is a PermanentFailure error.
func IsPermanentFailure(err error) bool {
	return isCode(err, ErrCodePermanentFailure)
}

// IsForeignKey checks if an error is a ForeignKey error.
func IsForeignKey(err error) bool {
	return isCode(err, ErrCodeForeignKey)
}

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
