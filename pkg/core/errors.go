package core

import (
	"errors"
	"fmt"
)

// Category groups upstream errors for callers deciding how to react.
type Category int

// Category constants derived from the upstream status and error code.
const (
	// CategoryUnknown indicates an unclassified upstream error.
	CategoryUnknown Category = iota
	// CategoryRateLimit indicates the upstream rate limit was exceeded.
	CategoryRateLimit
	// CategoryAuthentication indicates a rejected key, signature or timestamp.
	CategoryAuthentication
	// CategoryBadRequest indicates invalid request parameters.
	CategoryBadRequest
	// CategoryNotFound indicates the requested resource does not exist.
	CategoryNotFound
	// CategoryServerError indicates an upstream server-side failure.
	CategoryServerError
	// CategoryRejected indicates a business-rule rejection (balance, limits).
	CategoryRejected
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryRateLimit:
		return "RATE_LIMIT"
	case CategoryAuthentication:
		return "AUTHENTICATION"
	case CategoryBadRequest:
		return "BAD_REQUEST"
	case CategoryNotFound:
		return "NOT_FOUND"
	case CategoryServerError:
		return "SERVER_ERROR"
	case CategoryRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Sentinel errors for configuration and signing preconditions.
var (
	// ErrMissingCredentials is returned when the API key or secret is empty.
	ErrMissingCredentials = errors.New("api key and secret are required")
	// ErrNoCredentials is returned when a signed call is attempted without a credential.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrNonScalarParam is returned when a parameter value cannot be canonicalized.
	ErrNonScalarParam = errors.New("parameter value is not a scalar")
	// ErrReservedParam is returned when a signed call already carries timestamp or signature.
	ErrReservedParam = errors.New("reserved parameter")
	// ErrInvalidCallSpec is returned when a CallSpec fails validation.
	ErrInvalidCallSpec = errors.New("invalid call spec")
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
)

// UpstreamError is the error form of a KindUpstreamError result.
type UpstreamError struct {
	StatusCode int      `json:"status_code"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Category   Category `json:"category"`
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s (%d/%s): %s", e.Category, e.StatusCode, e.Code, e.Message)
}

// TransportError is the error form of a KindTransportError result.
type TransportError struct {
	Kind    TransportKind `json:"kind"`
	Message string        `json:"message"`
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %s", e.Kind, e.Message)
}

// IsUpstreamError returns true if err is or wraps an *UpstreamError.
func IsUpstreamError(err error) bool {
	var e *UpstreamError
	return errors.As(err, &e)
}

// IsTransportError returns true if err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsTimeoutError returns true if err is a transport timeout.
func IsTimeoutError(err error) bool {
	var e *TransportError
	if errors.As(err, &e) {
		return e.Kind == TransportTimeout
	}
	return false
}

// IsAuthenticationError returns true if upstream rejected the credentials or signature.
// These are not retryable without fixing the key, secret or clock.
func IsAuthenticationError(err error) bool {
	var e *UpstreamError
	if errors.As(err, &e) {
		return e.Category == CategoryAuthentication
	}
	return false
}

// IsTransient returns true for failures that may succeed when retried:
// every transport error, upstream rate limiting and upstream 5xx.
func IsTransient(err error) bool {
	if IsTransportError(err) {
		return true
	}
	var e *UpstreamError
	if errors.As(err, &e) {
		return e.Category == CategoryRateLimit || e.StatusCode >= 500
	}
	return false
}
