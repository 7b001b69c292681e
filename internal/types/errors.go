package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. The prefix of a code determines its ErrorKind and
// HTTP status; handlers MUST use these constants instead of hardcoded strings.
const (
	// Validation (400/422)
	ErrCodeValidationInvalidJSON  ErrorCode = "validation_invalid_json"
	ErrCodeValidationInvalidEvent ErrorCode = "validation_invalid_event"
	ErrCodeValidationOrphans      ErrorCode = "validation_unexpected_fields"

	// Unimplemented (501)
	ErrCodeNotImplementedScenario  ErrorCode = "not_implemented_scenario"
	ErrCodeNotImplementedOperation ErrorCode = "not_implemented_operation"

	// Malformed backend data / broken business invariants (502)
	ErrCodeMalformedResponse           ErrorCode = "malformed_backend_response"
	ErrCodeMalformedMissingInitiator   ErrorCode = "malformed_missing_initiator"
	ErrCodeMalformedAmbiguousInitiator ErrorCode = "malformed_ambiguous_initiator"
	ErrCodeMalformedMissingField       ErrorCode = "malformed_missing_field"

	// Upstream (502/503)
	ErrCodeUpstreamUnavailable    ErrorCode = "upstream_backend_unavailable"
	ErrCodeUpstreamRateLimited    ErrorCode = "upstream_rate_limited"
	ErrCodeUpstreamNotFound       ErrorCode = "upstream_not_found"
	ErrCodeUpstreamRejected       ErrorCode = "upstream_backend_rejected"
	ErrCodeUpstreamNotify         ErrorCode = "upstream_notify_unavailable"
	ErrCodeUpstreamNotifyRejected ErrorCode = "upstream_notify_rejected"

	// Internal (500)
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
	ErrCodeInternalConfig     ErrorCode = "internal_configuration_error"
)

// ErrorKind is the coarse failure taxonomy callers branch on. Aborted
// pipelines are not errors and therefore have no kind.
type ErrorKind string

const (
	KindInvalidInput       ErrorKind = "invalid_input"
	KindBackendUnavailable ErrorKind = "backend_unavailable"
	KindMalformed          ErrorKind = "malformed"
	KindUnimplemented      ErrorKind = "unimplemented"
	KindInternal           ErrorKind = "internal"
)

// Kind derives the ErrorKind from the code prefix.
func (c ErrorCode) Kind() ErrorKind {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return KindInvalidInput
	case strings.HasPrefix(s, "not_implemented_"):
		return KindUnimplemented
	case strings.HasPrefix(s, "malformed_"):
		return KindMalformed
	case strings.HasPrefix(s, "upstream_"):
		return KindBackendUnavailable
	default:
		return KindInternal
	}
}

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Returns 500 for unrecognized error codes as a safe default.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case c == ErrCodeValidationOrphans:
		return http.StatusUnprocessableEntity // 422
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest // 400
	case strings.HasPrefix(s, "not_implemented_"):
		return http.StatusNotImplemented // 501
	case strings.HasPrefix(s, "malformed_"):
		return http.StatusBadGateway // 502
	case c == ErrCodeUpstreamRateLimited, c == ErrCodeUpstreamUnavailable, c == ErrCodeUpstreamRejected:
		return http.StatusServiceUnavailable // 503
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}

// AppError is the standard application error type used throughout OMC.
// All domain and handler errors should be expressed as AppError to enable
// consistent error formatting, HTTP status mapping, and error chain support.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// Kind returns the taxonomy bucket of this error.
func (e *AppError) Kind() ErrorKind {
	return e.Code.Kind()
}

// WithDetails returns a copy of the error with the provided details merged in.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error. This is the standard constructor for domain errors.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates a new AppError with the given code, message,
// underlying error, and structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

// KindOf reports the ErrorKind of err. Errors that are not AppErrors are
// classified as internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return KindInternal
}

// HasCode reports whether err is (or wraps) an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
