package core

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

// Production endpoints.
const (
	PublicURL  = "https://poloniex.com/public"
	TradingURL = "https://poloniex.com/tradingApi"
	PushURL    = "wss://api2.poloniex.com"
)

// Credentials holds the API key pair used to sign trading requests.
// Immutable once set on a client; the secret is the HMAC key.
type Credentials struct {
	// Key is the public API key identifier, sent in the Key header.
	Key string `json:"key"`
	// Secret is the private key used for HMAC-SHA512 signing.
	Secret string `json:"secret"`
}

// IsZero reports whether either half of the key pair is missing.
func (c *Credentials) IsZero() bool {
	return c == nil || c.Key == "" || c.Secret == ""
}

// Config contains the configuration for a client.
type Config struct {
	// PublicEndpoint is the base URL for unauthenticated commands.
	PublicEndpoint string `json:"public_endpoint" validate:"required,url"`
	// TradingEndpoint is the base URL for signed commands.
	TradingEndpoint string `json:"trading_endpoint" validate:"required,url"`
	// PushEndpoint is the websocket push gateway URL.
	PushEndpoint string `json:"push_endpoint" validate:"required"`

	Credentials *Credentials `json:"credentials,omitempty"`

	// Timeout is the maximum duration for a single HTTP request.
	Timeout time.Duration `json:"timeout" validate:"min=1ms"`

	// WSBufferSize caps the number of inbound frames buffered per connection.
	WSBufferSize int `json:"ws_buffer_size" validate:"min=1"`

	CircuitBreakerEnabled          bool          `json:"circuit_breaker_enabled"`
	CircuitBreakerFailThreshold    int           `json:"circuit_breaker_fail_threshold"`
	CircuitBreakerSuccessThreshold int           `json:"circuit_breaker_success_threshold"`
	CircuitBreakerTimeout          time.Duration `json:"circuit_breaker_timeout"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config pointing at the production endpoints with
// a 10s timeout and the circuit breaker disabled.
func DefaultConfig() *Config {
	return &Config{
		PublicEndpoint:  PublicURL,
		TradingEndpoint: TradingURL,
		PushEndpoint:    PushURL,
		Timeout:         10 * time.Second,
		WSBufferSize:    100,

		CircuitBreakerEnabled:          false,
		CircuitBreakerFailThreshold:    5,
		CircuitBreakerSuccessThreshold: 2,
		CircuitBreakerTimeout:          30 * time.Second,

		LogLevel: "info",
	}
}

var validate = validator.New()

// Validate checks the configuration for missing or inconsistent values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.CircuitBreakerEnabled {
		if c.CircuitBreakerFailThreshold <= 0 {
			return errors.New("CircuitBreakerFailThreshold must be positive when enabled")
		}
		if c.CircuitBreakerSuccessThreshold <= 0 {
			return errors.New("CircuitBreakerSuccessThreshold must be positive when enabled")
		}
		if c.CircuitBreakerTimeout <= 0 {
			return errors.New("CircuitBreakerTimeout must be positive when enabled")
		}
	}
	return nil
}

// WithCredentials sets the API key pair and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithEndpoints overrides the REST endpoints and returns the config for chaining.
func (c *Config) WithEndpoints(public, trading string) *Config {
	c.PublicEndpoint = public
	c.TradingEndpoint = trading
	return c
}

// WithPushEndpoint overrides the push gateway URL and returns the config for chaining.
func (c *Config) WithPushEndpoint(url string) *Config {
	c.PushEndpoint = url
	return c
}

// WithCircuitBreaker enables the fail-fast breaker and returns the config for chaining.
func (c *Config) WithCircuitBreaker(failThreshold, successThreshold int, timeout time.Duration) *Config {
	c.CircuitBreakerEnabled = true
	c.CircuitBreakerFailThreshold = failThreshold
	c.CircuitBreakerSuccessThreshold = successThreshold
	c.CircuitBreakerTimeout = timeout
	return c
}
