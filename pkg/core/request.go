package core

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
)

// CallSpec describes one logical upstream operation before it becomes a wire request.
type CallSpec struct {
	Method            string `json:"method" validate:"required,oneof=GET POST PUT DELETE"`
	Path              string `json:"path" validate:"required,startswith=/"`
	Params            Params `json:"params,omitempty"`
	RequiresSignature bool   `json:"requires_signature"`
}

// NewCallSpec returns a CallSpec with an empty params map.
func NewCallSpec(method, path string) *CallSpec {
	return &CallSpec{
		Method: method,
		Path:   path,
		Params: make(Params),
	}
}

// Set sets a parameter and returns the CallSpec for chaining.
func (s *CallSpec) Set(key string, value any) *CallSpec {
	if s.Params == nil {
		s.Params = make(Params)
	}
	s.Params[key] = value
	return s
}

// Signed marks the spec as requiring a signature and returns it for chaining.
func (s *CallSpec) Signed() *CallSpec {
	s.RequiresSignature = true
	return s
}

// InQuery reports whether parameters travel in the URL query (GET/DELETE)
// rather than the JSON body (POST/PUT).
func (s *CallSpec) InQuery() bool {
	return s.Method == http.MethodGet || s.Method == http.MethodDelete
}

var specValidate = validator.New()

// Validate checks method, path and parameter scalarity. Signed specs must not
// carry the reserved timestamp or signature keys.
func (s *CallSpec) Validate() error {
	if err := specValidate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCallSpec, err)
	}
	if err := s.Params.Validate(); err != nil {
		return err
	}
	if s.RequiresSignature {
		for _, k := range []string{ParamTimestamp, ParamSignature} {
			if s.Params.Has(k) {
				return fmt.Errorf("%w: %s", ErrReservedParam, k)
			}
		}
	}
	return nil
}

// OutboundRequest is a fully resolved upstream request.
// Body is nil whenever parameters travel in the URL.
type OutboundRequest struct {
	Method string      `json:"method"`
	URL    string      `json:"url"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body,omitempty"`
}

// Query returns the parsed query of the request URL.
func (r *OutboundRequest) Query() (url.Values, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, err
	}
	return u.Query(), nil
}

// RawQuery returns the encoded query exactly as it goes on the wire.
func (r *OutboundRequest) RawQuery() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return u.RawQuery
}
