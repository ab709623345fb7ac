package coordinator

import (
	"errors"
	"fmt"
)

// Code categorizes coordinator errors.
type Code string

const (
	// CodeNotFound indicates a referenced device/session/entry/conflict
	// does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeUnauthorized indicates the caller identity does not own the
	// referenced entity and is not the designated administrator.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeInvalidState indicates an operation attempted from a state that
	// forbids it: inactive device, non-in-progress session, already-resolved
	// conflict.
	CodeInvalidState Code = "INVALID_STATE"

	// CodeValidation indicates malformed input, e.g. an empty identity.
	CodeValidation Code = "VALIDATION"
)

// Error is a coordinator failure with enough context to distinguish the
// kind of failure and the offending identifier.
//
// None of these are retried internally; retry policy is the caller's
// responsibility.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Subject identifies the offending entity, when known.
	Subject string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s (subject=%s)", e.Code, e.Message, e.Subject)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrCode extracts the Code from an error, or "" if it is not a
// coordinator Error. Uses errors.As to handle wrapped errors.
func ErrCode(err error) Code {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// IsNotFound returns true for NOT_FOUND errors.
func IsNotFound(err error) bool { return ErrCode(err) == CodeNotFound }

// IsUnauthorized returns true for UNAUTHORIZED errors.
func IsUnauthorized(err error) bool { return ErrCode(err) == CodeUnauthorized }

// IsInvalidState returns true for INVALID_STATE errors.
func IsInvalidState(err error) bool { return ErrCode(err) == CodeInvalidState }

// IsValidation returns true for VALIDATION errors.
func IsValidation(err error) bool { return ErrCode(err) == CodeValidation }

func notFound(what, id string) *Error {
	return &Error{Code: CodeNotFound, Message: what + " not found", Subject: id}
}

func unauthorized(message, subject string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message, Subject: subject}
}

func invalidState(message, subject string) *Error {
	return &Error{Code: CodeInvalidState, Message: message, Subject: subject}
}

func validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}
