package core

import "net/http"

// Kind discriminates the variants of a Result.
type Kind int

const (
	// KindSuccess is a 2xx upstream response.
	KindSuccess Kind = iota
	// KindUpstreamError is a non-2xx upstream response.
	KindUpstreamError
	// KindTransportError means no interpretable upstream response was received.
	KindTransportError
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "SUCCESS"
	case KindUpstreamError:
		return "UPSTREAM_ERROR"
	case KindTransportError:
		return "TRANSPORT_ERROR"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets Kind render as its name in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// TransportKind classifies transport errors. The zero value means "not a transport error".
type TransportKind int

const (
	// TransportUnknown is any failure that is neither a timeout nor unreachability.
	TransportUnknown TransportKind = iota + 1
	// TransportTimeout means the call exceeded its deadline.
	TransportTimeout
	// TransportUnreachable means connection refused or DNS resolution failure.
	TransportUnreachable
)

// String returns the string representation of the transport kind.
func (k TransportKind) String() string {
	switch k {
	case TransportUnknown:
		return "UNKNOWN"
	case TransportTimeout:
		return "TIMEOUT"
	case TransportUnreachable:
		return "UNREACHABLE"
	default:
		return ""
	}
}

// MarshalText lets TransportKind render as its name in JSON.
func (k TransportKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Result is the terminal outcome of one upstream call.
// Fields not relevant to Kind are left zero.
type Result struct {
	Kind Kind `json:"kind"`

	// StatusCode is the upstream HTTP status; zero for transport errors.
	StatusCode int `json:"status_code,omitempty"`
	// Payload is the decoded success body.
	Payload any `json:"payload,omitempty"`

	Code     string   `json:"code,omitempty"`
	Message  string   `json:"message,omitempty"`
	Category Category `json:"-"`

	TransportKind TransportKind `json:"transport_kind,omitempty"`
}

// Success builds a KindSuccess result.
func Success(statusCode int, payload any) *Result {
	return &Result{Kind: KindSuccess, StatusCode: statusCode, Payload: payload}
}

// Upstream builds a KindUpstreamError result.
func Upstream(statusCode int, code, message string) *Result {
	if code == "" {
		code = CodeUnknown
	}
	return &Result{
		Kind:       KindUpstreamError,
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Category:   Categorize(statusCode, code),
	}
}

// Transport builds a KindTransportError result.
func Transport(kind TransportKind, message string) *Result {
	return &Result{Kind: KindTransportError, TransportKind: kind, Message: message}
}

// OK reports whether the result is a success.
func (r *Result) OK() bool {
	return r.Kind == KindSuccess
}

// HTTPStatus is the status a renderer should use for this result.
func (r *Result) HTTPStatus() int {
	if r.Kind != KindTransportError {
		return r.StatusCode
	}
	switch r.TransportKind {
	case TransportTimeout:
		return http.StatusGatewayTimeout
	case TransportUnreachable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Err returns nil for successes and a typed error otherwise.
func (r *Result) Err() error {
	switch r.Kind {
	case KindUpstreamError:
		return &UpstreamError{
			StatusCode: r.StatusCode,
			Code:       r.Code,
			Message:    r.Message,
			Category:   r.Category,
		}
	case KindTransportError:
		return &TransportError{Kind: r.TransportKind, Message: r.Message}
	default:
		return nil
	}
}
