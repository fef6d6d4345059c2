// Package errors provides the typed error taxonomy shared by every netctl component.
//
// Each failure carries an ErrorCode so that callers, the REST surface included,
// can tell "not found" from "bad input" from "backend unavailable" without
// parsing messages. Errors produced by collaborators that are not already typed
// are wrapped as ServiceError at the facade boundary.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeNotFound indicates the referenced entity does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvalidParameter indicates a malformed or empty required field.
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"

	// ErrCodeAlreadyExists indicates a duplicate creation where uniqueness is required.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// ErrCodePermissionDenied indicates the operation needs privileges the process lacks.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrCodeCommandFailed indicates an external command or kernel call failed.
	ErrCodeCommandFailed ErrorCode = "COMMAND_FAILED"

	// ErrCodeIO indicates a filesystem or socket error.
	ErrCodeIO ErrorCode = "IO_ERROR"

	// ErrCodeParse indicates output of a collaborator could not be parsed.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeTimeout indicates the caller-side deadline expired.
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeService indicates a collaborator or transport failure.
	ErrCodeService ErrorCode = "SERVICE_ERROR"

	// ErrCodeNotSupported indicates a feature that is not compiled in or not configured.
	ErrCodeNotSupported ErrorCode = "NOT_SUPPORTED"

	// ErrCodeInvalidState indicates the entity is not in a state that allows the operation.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
)

// Error represents a domain-specific error with an error code and optional cause.
//
// Command, ExitCode and Stderr are only populated for ErrCodeCommandFailed.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error

	Command  string
	ExitCode *int
	Stderr   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code == ErrCodeCommandFailed && e.Command != "" {
		var sb strings.Builder
		sb.WriteString(msg)
		sb.WriteString(" (command: ")
		sb.WriteString(e.Command)
		if e.ExitCode != nil {
			sb.WriteString(fmt.Sprintf(", exit code %d", *e.ExitCode))
		}
		if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
			sb.WriteString(", stderr: ")
			sb.WriteString(stderr)
		}
		sb.WriteString(")")
		msg = sb.String()
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf is New with printf-style formatting.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Sentinels usable as errors.Is targets.
var (
	ErrNotFound         = New(ErrCodeNotFound, "not found")
	ErrInvalidParameter = New(ErrCodeInvalidParameter, "invalid parameter")
	ErrAlreadyExists    = New(ErrCodeAlreadyExists, "already exists")
	ErrCommandFailed    = New(ErrCodeCommandFailed, "command failed")
	ErrTimeout          = New(ErrCodeTimeout, "timeout")
	ErrService          = New(ErrCodeService, "service error")
	ErrNotSupported     = New(ErrCodeNotSupported, "not supported")
	ErrInvalidState     = New(ErrCodeInvalidState, "invalid state")
)

// NewNotFoundError reports a missing entity of the given kind.
func NewNotFoundError(kind, key string) *Error {
	return Newf(ErrCodeNotFound, "%s '%s' not found", kind, key)
}

// NewInvalidParameterError creates a new invalid-parameter error.
func NewInvalidParameterError(message string, cause error) *Error {
	return Wrap(ErrCodeInvalidParameter, message, cause)
}

// NewAlreadyExistsError reports a duplicate entity of the given kind.
func NewAlreadyExistsError(kind, key string) *Error {
	return Newf(ErrCodeAlreadyExists, "%s '%s' already exists", kind, key)
}

// NewCommandFailedError describes a failed external command. exitCode may be nil
// when the command never produced one (killed, not started, kernel call).
func NewCommandFailedError(command string, exitCode *int, stderr string, cause error) *Error {
	return &Error{
		Code:     ErrCodeCommandFailed,
		Message:  "command failed",
		Cause:    cause,
		Command:  command,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
}

// NewIOError creates a new I/O error.
func NewIOError(message string, cause error) *Error {
	return Wrap(ErrCodeIO, message, cause)
}

// NewParseError creates a new parse error.
func NewParseError(message string, cause error) *Error {
	return Wrap(ErrCodeParse, message, cause)
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewServiceError creates a new collaborator/transport error.
func NewServiceError(message string, cause error) *Error {
	return Wrap(ErrCodeService, message, cause)
}

// NewNotSupportedError creates a new not-supported error.
func NewNotSupportedError(message string) *Error {
	return New(ErrCodeNotSupported, message)
}

// NewInvalidStateError creates a new invalid-state error.
func NewInvalidStateError(message string) *Error {
	return New(ErrCodeInvalidState, message)
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// Ensure returns err unchanged when it is already typed, maps context errors to
// Timeout, and wraps anything else as ServiceError with the given message.
func Ensure(err error, message string) error {
	if err == nil {
		return nil
	}
	if CodeOf(err) != "" {
		return err
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return Wrap(ErrCodeTimeout, message, err)
	}
	return Wrap(ErrCodeService, message, err)
}
