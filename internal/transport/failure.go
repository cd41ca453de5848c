package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Symptom is the transport-level reason a call produced no response.
type Symptom int

const (
	// SymptomOther covers every failure not listed below.
	SymptomOther Symptom = iota
	// SymptomTimeout means the call deadline passed.
	SymptomTimeout
	// SymptomConnectionRefused means the upstream host refused the connection.
	SymptomConnectionRefused
	// SymptomDNS means the upstream host name could not be resolved.
	SymptomDNS
)

// String returns the string representation of the symptom.
func (s Symptom) String() string {
	switch s {
	case SymptomTimeout:
		return "timeout"
	case SymptomConnectionRefused:
		return "refused"
	case SymptomDNS:
		return "dns"
	default:
		return "other"
	}
}

// Failure is returned by Client.Execute when no response was received.
type Failure struct {
	Symptom Symptom
	Err     error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("transport %s: %v", f.Symptom, f.Err)
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}

func classify(ctx context.Context, err error) Symptom {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return SymptomTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return SymptomDNS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return SymptomConnectionRefused
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return SymptomTimeout
	}

	return SymptomOther
}

// pacingSymptom classifies a limiter wait failure. The limiter refuses to wait
// past the deadline, which is reported as a timeout.
func pacingSymptom(ctx context.Context) Symptom {
	if errors.Is(ctx.Err(), context.Canceled) {
		return SymptomOther
	}
	return SymptomTimeout
}
