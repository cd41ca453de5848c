// Package request turns a core.CallSpec into a fully resolved core.OutboundRequest.
//
// Signing is a strict pipeline over fresh values:
//
//	params -> params+timestamp -> canonical string -> signature -> final params
//
// The signature is computed before it is added, so it can never be part of
// the string it signs.
package request

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"signproxy/pkg/core"
	"signproxy/pkg/signer"
)

// Header names and values set on every outbound call.
const (
	HeaderAPIKey      = "X-API-KEY"
	HeaderContentType = "Content-Type"
	HeaderUserAgent   = "User-Agent"
	ContentTypeJSON   = "application/json"
)

// Clock supplies the signing timestamp.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now implements Clock.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// Builder assembles outbound requests against a base URL. It holds no mutable
// state and is safe for concurrent use.
type Builder struct {
	baseURL   string
	clock     Clock
	userAgent string
}

// NewBuilder returns a Builder for baseURL. A nil clock means the wall clock.
func NewBuilder(baseURL string, clock Clock) *Builder {
	if clock == nil {
		clock = SystemClock
	}
	return &Builder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		clock:     clock,
		userAgent: core.UserAgent,
	}
}

// signed is the output of the signing pipeline.
type signed struct {
	params    core.Params
	canonical string
	signature string
}

// Build resolves spec into an OutboundRequest. cred may be nil for unsigned
// specs; the X-API-KEY header is set whenever cred is present.
// Errors are programming errors and are returned before anything is produced.
func (b *Builder) Build(spec *core.CallSpec, cred *core.Credential) (*core.OutboundRequest, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil spec", core.ErrInvalidCallSpec)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var s *signed
	if spec.RequiresSignature {
		if cred == nil {
			return nil, core.ErrNoCredentials
		}
		var err error
		s, err = b.sign(spec.Params, cred)
		if err != nil {
			return nil, fmt.Errorf("sign: %w", err)
		}
	}

	header := make(http.Header)
	if cred != nil {
		header.Set(HeaderAPIKey, cred.Key())
	}
	header.Set(HeaderContentType, ContentTypeJSON)
	header.Set(HeaderUserAgent, b.userAgent)

	req := &core.OutboundRequest{
		Method: spec.Method,
		URL:    b.baseURL + spec.Path,
		Header: header,
	}

	if spec.InQuery() {
		query, err := b.query(spec.Params, s)
		if err != nil {
			return nil, err
		}
		if query != "" {
			req.URL += "?" + query
		}
		return req, nil
	}

	body, err := b.body(spec.Params, s)
	if err != nil {
		return nil, err
	}
	req.Body = body
	return req, nil
}

func (b *Builder) sign(params core.Params, cred *core.Credential) (*signed, error) {
	stamped := params.With(core.ParamTimestamp, b.clock.Now().UnixMilli())
	canonical, err := signer.Canonicalize(stamped)
	if err != nil {
		return nil, err
	}
	signature := signer.Sign(cred.Secret(), canonical)
	return &signed{
		params:    stamped.With(core.ParamSignature, signature),
		canonical: canonical,
		signature: signature,
	}, nil
}

// query encodes parameters exactly as they were signed, with the signature last.
func (b *Builder) query(params core.Params, s *signed) (string, error) {
	if s == nil {
		return signer.Canonicalize(params)
	}
	return s.canonical + "&" + core.ParamSignature + "=" + s.signature, nil
}

func (b *Builder) body(params core.Params, s *signed) ([]byte, error) {
	final := params
	if s != nil {
		final = s.params
	}

	out := make(map[string]any, len(final))
	for k, v := range final {
		jv, err := core.JSONValue(v)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", k, err)
		}
		out[k] = jv
	}

	data, err := sonic.ConfigStd.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	return data, nil
}
