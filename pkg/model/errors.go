package model

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies a failed backend operation.
type ErrorKind string

const (
	// KindNetwork means the request never produced a response
	// (connection refused, DNS failure, timeout).
	KindNetwork ErrorKind = "NETWORK_FAILURE"
	// KindHTTP means the backend answered with a non-2xx status.
	KindHTTP ErrorKind = "HTTP_ERROR"
	// KindDecode means a token or response body could not be decoded.
	KindDecode ErrorKind = "DECODE_FAILURE"
	// KindValidation means the request was rejected before it was sent.
	KindValidation ErrorKind = "VALIDATION_FAILURE"
)

// APIError is the single error type returned by backend operations.
type APIError struct {
	Kind       ErrorKind    `json:"kind"`
	Op         string       `json:"op"`
	StatusCode int          `json:"status_code,omitempty"`
	Message    string       `json:"message"`
	Details    []FieldError `json:"errors,omitempty"`
	Err        error        `json:"-"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, "HTTP %d: ", e.StatusCode)
	}
	b.WriteString(e.Message)
	if e.Err != nil && e.Message == "" {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// FieldError is one entry of the backend's {errors:[{msg}]} array.
type FieldError struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"msg"`
}

// Messages returns the individual backend messages, or the top-level
// message when the backend sent none.
func (e *APIError) Messages() []string {
	if len(e.Details) == 0 {
		return []string{e.Message}
	}
	out := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		out = append(out, d.Message)
	}
	return out
}

// NewValidationError creates a VALIDATION_FAILURE error.
func NewValidationError(op, msg string, details ...FieldError) *APIError {
	return &APIError{Kind: KindValidation, Op: op, Message: msg, Details: details}
}

// NewNetworkError wraps a transport error.
func NewNetworkError(op string, err error) *APIError {
	return &APIError{Kind: KindNetwork, Op: op, Message: err.Error(), Err: err}
}

// NewDecodeError wraps a decoding error.
func NewDecodeError(op string, err error) *APIError {
	return &APIError{Kind: KindDecode, Op: op, Message: err.Error(), Err: err}
}

// NewHTTPError creates an HTTP_ERROR for a non-2xx response.
func NewHTTPError(op string, status int, msg string, details ...FieldError) *APIError {
	if msg == "" {
		if len(details) > 0 {
			msg = details[0].Message
		} else {
			msg = http.StatusText(status)
		}
	}
	return &APIError{Kind: KindHTTP, Op: op, StatusCode: status, Message: msg, Details: details}
}

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err is an *APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == kind
}

// IsUnauthorized reports whether the backend rejected the bearer token.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == KindHTTP && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether the backend answered 404.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == KindHTTP && apiErr.StatusCode == http.StatusNotFound
}
