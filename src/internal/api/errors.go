package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
)

// APIError represents a structured API error response. Code is one of the
// error codes of the errors package.
type APIError struct {
	Code    errors.ErrorCode       `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError for JSON responses.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func NewAPIError(code errors.ErrorCode, message string) APIError {
	return APIError{Code: code, Message: message}
}

// WithDetails adds details to an APIError.
func (e APIError) WithDetails(details map[string]interface{}) APIError {
	e.Details = details
	return e
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidParameter, errors.ErrCodeParse, errors.ErrCodeConfig:
		return http.StatusBadRequest
	case errors.ErrCodePermissionDenied:
		return http.StatusForbidden
	case errors.ErrCodeTimeout:
		return http.StatusRequestTimeout
	case errors.ErrCodeAlreadyExists, errors.ErrCodeInvalidState:
		return http.StatusConflict
	case errors.ErrCodeNotSupported:
		return http.StatusNotImplemented
	case errors.ErrCodeService:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes an error response to the HTTP response writer.
func WriteError(w http.ResponseWriter, statusCode int, err APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if encErr := json.NewEncoder(w).Encode(ErrorResponse{Error: err}); encErr != nil {
		log.Debugf("Failed to write error response: %v", encErr)
	}
}

// WriteErr writes err with the status of its code. Untyped errors are
// reported as SERVICE_ERROR.
func WriteErr(w http.ResponseWriter, err error) {
	err = errors.Ensure(err, "request failed")

	var e *errors.Error
	if !stderrors.As(err, &e) {
		WriteInternalError(w, err.Error())
		return
	}

	apiErr := NewAPIError(e.Code, err.Error())
	if e.Code == errors.ErrCodeCommandFailed {
		details := map[string]interface{}{"command": e.Command}
		if e.ExitCode != nil {
			details["exit_code"] = *e.ExitCode
		}
		if e.Stderr != "" {
			details["stderr"] = e.Stderr
		}
		apiErr = apiErr.WithDetails(details)
	}
	WriteError(w, StatusFor(e.Code), apiErr)
}

// WriteInvalidRequest writes a 400 Bad Request error.
func WriteInvalidRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, NewAPIError(errors.ErrCodeInvalidParameter, message))
}

// WriteForbidden writes a 403 Forbidden error.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, NewAPIError(errors.ErrCodePermissionDenied, message))
}

// WriteInternalError writes a 500 Internal Server Error.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, NewAPIError(errors.ErrCodeIO, message))
}
