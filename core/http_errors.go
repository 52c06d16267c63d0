package core

import (
	"errors"
	"net/http"
)

// HTTPError represents an HTTP error with status code and a stable key
// that identifies it in logs and API responses.
type HTTPError struct {
	Code int    // HTTP status code
	Key  string // Machine readable key (e.g., "not_found")
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Key
}

// 4xx Client Errors
var (
	ErrBadRequest            = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrForbidden             = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound              = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrMethodNotAllowed      = HTTPError{Code: http.StatusMethodNotAllowed, Key: "method_not_allowed"}
	ErrRequestEntityTooLarge = HTTPError{Code: http.StatusRequestEntityTooLarge, Key: "request_entity_too_large"}
	ErrUnsupportedMediaType  = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type"}
)

// 5xx Server Errors
var (
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
	ErrServiceUnavailable  = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}
)

// NewHTTPError creates a custom HTTP error with the given status code and key.
//
// Example:
//
//	var ErrQuotaExceeded = core.NewHTTPError(http.StatusTooManyRequests, "quota_exceeded")
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}

// StatusCode returns the status carried by err when it wraps an HTTPError
// with a client or server error code, and 500 otherwise.
func StatusCode(err error) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr.Code >= 400 && httpErr.Code < 600 {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}
