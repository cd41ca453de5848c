// Package client wires the request builder, transport and normalizer into a
// single signing client.
//
//	cfg := core.DefaultConfig("https://api.example.com").WithCredentials(key, secret)
//	c, err := client.New(cfg, client.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	result, err := c.Call(ctx, core.NewCallSpec("GET", "/account").Signed())
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"signproxy/internal/ratelimit"
	"signproxy/internal/transport"
	"signproxy/pkg/core"
	"signproxy/pkg/normalize"
	"signproxy/pkg/request"
)

// Client signs and forwards calls to the upstream API. It is safe for
// concurrent use; the credential is read-only after construction.
type Client struct {
	credential *core.Credential
	builder    *request.Builder
	transport  *transport.Client
	logger     zerolog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Options)

// Options holds configuration options for the Client.
type Options struct {
	Logger   zerolog.Logger
	Clock    request.Clock
	Registry prometheus.Registerer

	RateLimitRequests int
	RateLimitPeriod   time.Duration
}

// WithLogger returns an option that sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithClock returns an option that sets the clock used for signing timestamps.
func WithClock(c request.Clock) Option {
	return func(o *Options) {
		o.Clock = c
	}
}

// WithMetrics returns an option that registers upstream call metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *Options) {
		o.Registry = reg
	}
}

// WithRateLimit returns an option that paces outbound calls to requests per
// period, overriding the config.
func WithRateLimit(requests int, period time.Duration) Option {
	return func(o *Options) {
		o.RateLimitRequests = requests
		o.RateLimitPeriod = period
	}
}

// New creates a signing client. Construction fails if the config is invalid
// or the API key or secret is missing.
func New(config *core.Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	cred, err := config.Credential()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return newClient(config, cred, opts...), nil
}

// NewPublic creates a client without credentials. It serves unsigned calls
// only; signed calls fail with core.ErrNoCredentials.
func NewPublic(config *core.Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return newClient(config, nil, opts...), nil
}

func newClient(config *core.Config, cred *core.Credential, opts ...Option) *Client {
	options := &Options{
		Logger:            zerolog.Nop(),
		RateLimitRequests: config.RateLimitRequests,
		RateLimitPeriod:   config.RateLimitPeriod,
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.Logger
	if config.LogLevel != "" {
		level, err := zerolog.ParseLevel(config.LogLevel)
		if err != nil {
			level = zerolog.InfoLevel
		}
		logger = logger.Level(level)
	}

	tOpts := []transport.Option{transport.WithLogger(logger)}
	if options.RateLimitRequests > 0 && options.RateLimitPeriod > 0 {
		tOpts = append(tOpts, transport.WithRateLimiter(ratelimit.New(options.RateLimitRequests, options.RateLimitPeriod)))
	}
	if options.Registry != nil {
		tOpts = append(tOpts, transport.WithMetrics(transport.NewMetrics(options.Registry)))
	}

	if cred != nil {
		logger = logger.With().Object("credential", cred).Logger()
	}

	return &Client{
		credential: cred,
		builder:    request.NewBuilder(config.BaseURL, options.Clock),
		transport:  transport.NewClient(config.Timeout, tOpts...),
		logger:     logger,
	}
}

// Close releases resources used by the client.
func (c *Client) Close() error {
	return c.transport.Close()
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.transport.Timeout()
}

// Build resolves spec into the request that Call would send, without sending it.
func (c *Client) Build(spec *core.CallSpec) (*core.OutboundRequest, error) {
	return c.builder.Build(spec, c.credential)
}

// Call builds, sends and normalizes one upstream call. The returned error is
// non-nil only for programming errors (invalid spec, non-scalar params,
// signing without credentials); every upstream or transport outcome is a Result.
func (c *Client) Call(ctx context.Context, spec *core.CallSpec) (*core.Result, error) {
	req, err := c.builder.Build(spec, c.credential)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.transport.Execute(ctx, req)
	result := normalize.Normalize(resp, err)

	switch result.Kind {
	case core.KindSuccess:
		c.logger.Debug().
			Str("method", spec.Method).
			Str("path", spec.Path).
			Int("status", result.StatusCode).
			Msg("upstream call succeeded")
	case core.KindUpstreamError:
		c.logger.Warn().
			Str("method", spec.Method).
			Str("path", spec.Path).
			Int("status", result.StatusCode).
			Str("code", result.Code).
			Stringer("category", result.Category).
			Msg(result.Message)
	default:
		c.logger.Error().
			Str("method", spec.Method).
			Str("path", spec.Path).
			Stringer("kind", result.TransportKind).
			Msg(result.Message)
	}

	return result, nil
}
