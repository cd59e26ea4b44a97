// Package errors provides structured error types for promocanvas.
//
// Every failure the composition core can produce carries a machine-readable
// [Code]. The codes split into two families:
//
//   - acquisition family (ACQUISITION_FAILED, DECODE_FAILED, IMAGE_TOO_SMALL,
//     NO_IMAGE_CANDIDATE, NETWORK_ERROR): absorbed by the image fetcher, which
//     degrades the composition to fewer slots instead of failing it
//   - request-aborting family (INVALID_INPUT, CONFIGURATION_ERROR,
//     LEDGER_CONFLICT, LEDGER_NOT_FOUND, INTERNAL_ERROR): surfaced to callers
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "fraction %.2f out of range", f)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidIdentifier Code = "INVALID_IDENTIFIER"
	ErrCodeInvalidFraction   Code = "INVALID_FRACTION"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Image acquisition errors
	ErrCodeAcquisition   Code = "ACQUISITION_FAILED"
	ErrCodeNoCandidate   Code = "NO_IMAGE_CANDIDATE"
	ErrCodeImageTooSmall Code = "IMAGE_TOO_SMALL"
	ErrCodeDecode        Code = "DECODE_FAILED"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Ledger errors
	ErrCodeLedgerConflict Code = "LEDGER_CONFLICT"
	ErrCodeLedgerNotFound Code = "LEDGER_NOT_FOUND"

	// Configuration errors
	ErrCodeConfiguration Code = "CONFIGURATION_ERROR"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"
	ErrCodeForbidden    Code = "FORBIDDEN"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsAcquisition reports whether err belongs to the acquisition family.
// These failures are retried and then absorbed; they never abort a request.
func IsAcquisition(err error) bool {
	switch GetCode(err) {
	case ErrCodeAcquisition, ErrCodeNoCandidate, ErrCodeImageTooSmall,
		ErrCodeDecode, ErrCodeNetwork, ErrCodeTimeout, ErrCodeRateLimited:
		return true
	}
	return false
}

// IsFatal reports whether err must abort the surrounding request.
// Plain (uncoded) errors are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !IsAcquisition(err)
}
