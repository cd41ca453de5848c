package core

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

// Version is reported in the User-Agent header of every outbound call.
const Version = "1.0.0"

// UserAgent identifies this client to the upstream API.
const UserAgent = "signproxy/" + Version

// DefaultTimeout bounds every outbound call unless overridden.
const DefaultTimeout = 30 * time.Second

// Config contains the startup configuration of a signing client.
// It is read once; the credential built from it is immutable afterwards.
type Config struct {
	// BaseURL is the upstream API root, e.g. https://api.example.com.
	BaseURL string `json:"base_url" validate:"required,url"`
	// APIKey is the public key identifier sent in X-API-KEY.
	APIKey string `json:"-"`
	// APISecret is the HMAC signing secret.
	APISecret string `json:"-"`

	// Timeout is the maximum duration of a single outbound call.
	Timeout time.Duration `json:"timeout" validate:"min=1ms"`

	// RateLimitRequests enables outbound pacing when positive.
	RateLimitRequests int           `json:"rate_limit_requests" validate:"min=0"`
	RateLimitPeriod   time.Duration `json:"rate_limit_period" validate:"min=0"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config for baseURL with a 30s timeout, pacing disabled
// and info logging.
func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL:  baseURL,
		Timeout:  DefaultTimeout,
		LogLevel: "info",
	}
}

var validate = validator.New()

// Validate checks the struct tags and that a pacing period accompanies a
// positive RateLimitRequests.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.RateLimitRequests > 0 && c.RateLimitPeriod <= 0 {
		return errors.New("RateLimitPeriod must be positive when RateLimitRequests is set")
	}
	return nil
}

// Credential builds the immutable Credential from APIKey and APISecret.
func (c *Config) Credential() (*Credential, error) {
	return NewCredential(c.APIKey, c.APISecret)
}

// WithCredentials sets the API key and secret and returns the config for chaining.
func (c *Config) WithCredentials(key, secret string) *Config {
	c.APIKey = key
	c.APISecret = secret
	return c
}

// WithTimeout sets the per-call timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRateLimit sets outbound pacing and returns the config for chaining.
func (c *Config) WithRateLimit(requests int, period time.Duration) *Config {
	c.RateLimitRequests = requests
	c.RateLimitPeriod = period
	return c
}

// WithLogLevel sets the log level and returns the config for chaining.
func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}
