// Package errors defines the application error type shared by the session services and stores.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes an AppError.
type ErrorCode string

const (
	ErrCodeNotFound   ErrorCode = "not_found"
	ErrCodeConflict   ErrorCode = "conflict"
	ErrCodeValidation ErrorCode = "validation"
	ErrCodeInternal   ErrorCode = "internal"
	ErrCodeTimeout    ErrorCode = "timeout"
	ErrCodeCanceled   ErrorCode = "canceled"
	// ErrCodeCredentialRejected marks a login exchange the backend refused.
	ErrCodeCredentialRejected ErrorCode = "credential_rejected"
	// ErrCodeUnavailable marks a backend or store that could not be reached or written.
	ErrCodeUnavailable ErrorCode = "unavailable"
)

// AppError carries a code and a message fit for the user. Cause stays out of UserMessage
// but is reachable through errors.Is and errors.As.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Field names the offending input for validation errors.
	Field string
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error { return e.Cause }

// UserMessage is Message without the cause chain.
func (e *AppError) UserMessage() string { return e.Message }

// Validation reports bad input.
func Validation(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationField reports bad input for a named field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// CredentialRejected reports a refused login. message is shown to the user verbatim.
func CredentialRejected(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeCredentialRejected, Message: message, Cause: cause}
}

// Wrap attaches code and message to err. A nil err stays nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

func asAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// GetCode returns the code of the outermost AppError in err's chain, or "".
func GetCode(err error) ErrorCode {
	if appErr, ok := asAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field of the outermost AppError in err's chain, or "".
func GetField(err error) string {
	if appErr, ok := asAppError(err); ok {
		return appErr.Field
	}
	return ""
}

func IsValidation(err error) bool { return GetCode(err) == ErrCodeValidation }

func IsCredentialRejected(err error) bool { return GetCode(err) == ErrCodeCredentialRejected }
