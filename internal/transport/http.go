// Package transport executes resolved outbound requests against the upstream API.
// It performs exactly one HTTP call per invocation and classifies failures only
// by transport symptom; response bodies are never interpreted here.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"signproxy/internal/ratelimit"
	"signproxy/pkg/core"
)

// Client wraps a resty HTTP client with per-call timeouts, logging, metrics
// and optional outbound pacing. It is safe for concurrent use.
type Client struct {
	client  *resty.Client
	logger  zerolog.Logger
	timeout time.Duration
	limiter *ratelimit.RateLimiter
	metrics *Metrics
	mu      sync.RWMutex
	closed  bool
}

// Response is a fully buffered upstream response.
type Response struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int

	// Status is the status line text, e.g. "400 Bad Request".
	Status string

	// Body contains the raw response body bytes.
	Body []byte

	// Header contains the response headers.
	Header http.Header
}

// IsSuccess returns true if the response status code indicates success (2xx).
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request and failure logs.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithRateLimiter paces outbound calls through rl.
func WithRateLimiter(rl *ratelimit.RateLimiter) Option {
	return func(c *Client) {
		c.limiter = rl
	}
}

// WithMetrics records call outcomes into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a Client bounding every call by timeout.
// Retries and redirects are disabled: one invocation is one HTTP call, and a
// 3xx is returned as a Response so signed requests never reach another host.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = core.DefaultTimeout
	}

	c := &Client{
		logger:  zerolog.Nop(),
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	client.SetRedirectPolicy(resty.NoRedirectPolicy())
	client.SetLogger(restyLogger{logger: c.logger})

	logger := c.logger
	client.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug().
			Str("method", req.Method).
			Str("url", sanitizeURL(req.URL)).
			Msg("http request")
		return nil
	})

	c.client = client
	return c
}

// Close releases the underlying HTTP resources. Calls after Close fail.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Execute performs req once. A non-nil error is always a *Failure; any HTTP
// status, including 4xx and 5xx, is returned as a Response.
func (c *Client) Execute(ctx context.Context, req *core.OutboundRequest) (*Response, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, &Failure{Symptom: SymptomOther, Err: core.ErrClientClosed}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	start := time.Now()
	c.metrics.start()
	defer c.metrics.end()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.metrics.pacing(false)
			f := &Failure{Symptom: pacingSymptom(ctx), Err: fmt.Errorf("rate limit: %w", err)}
			c.observeFailure(req, requestID, start, f)
			return nil, f
		}
		c.metrics.pacing(true)
	}

	r := c.client.R().SetContext(ctx).SetHeaderMultiValues(req.Header)
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		f := &Failure{Symptom: classify(ctx, err), Err: err}
		c.observeFailure(req, requestID, start, f)
		return nil, f
	}

	out := &Response{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       resp.Bytes(),
		Header:     resp.Header(),
	}

	duration := time.Since(start)
	c.metrics.observe(req.Method, outcomeForStatus(out.StatusCode), duration)

	event := c.logger.Debug()
	if out.StatusCode >= http.StatusBadRequest {
		event = c.logger.Warn()
	}
	event.
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("url", sanitizeURL(req.URL)).
		Int("status", out.StatusCode).
		Int("size", len(out.Body)).
		Dur("duration", duration).
		Msg("http response")

	return out, nil
}

func (c *Client) observeFailure(req *core.OutboundRequest, requestID string, start time.Time, f *Failure) {
	duration := time.Since(start)
	c.metrics.observe(req.Method, f.Symptom.String(), duration)
	c.logger.Error().Err(f.Err).
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("url", sanitizeURL(req.URL)).
		Stringer("symptom", f.Symptom).
		Dur("duration", duration).
		Msg("http request failed")
}

// restyLogger routes resty's internal messages into zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug().Msgf(format, v...)
}
