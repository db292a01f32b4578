package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, PublicURL, config.PublicEndpoint)
	assert.Equal(t, TradingURL, config.TradingEndpoint)
	assert.Equal(t, PushURL, config.PushEndpoint)
	assert.Equal(t, 10*time.Second, config.Timeout)
	assert.False(t, config.CircuitBreakerEnabled)
	assert.Nil(t, config.Credentials)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "default is valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing public endpoint",
			mutate:  func(c *Config) { c.PublicEndpoint = "" },
			wantErr: true,
		},
		{
			name:    "malformed trading endpoint",
			mutate:  func(c *Config) { c.TradingEndpoint = "not a url" },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: true,
		},
		{
			name: "breaker enabled without thresholds",
			mutate: func(c *Config) {
				c.CircuitBreakerEnabled = true
				c.CircuitBreakerFailThreshold = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigChaining(t *testing.T) {
	creds := &Credentials{Key: "k", Secret: "s"}
	config := DefaultConfig().
		WithCredentials(creds).
		WithTimeout(5 * time.Second).
		WithEndpoints("https://example.com/public", "https://example.com/trading").
		WithPushEndpoint("wss://example.com/push").
		WithCircuitBreaker(3, 1, time.Minute)

	require.NoError(t, config.Validate())
	assert.Equal(t, creds, config.Credentials)
	assert.Equal(t, 5*time.Second, config.Timeout)
	assert.Equal(t, "https://example.com/public", config.PublicEndpoint)
	assert.Equal(t, "https://example.com/trading", config.TradingEndpoint)
	assert.Equal(t, "wss://example.com/push", config.PushEndpoint)
	assert.True(t, config.CircuitBreakerEnabled)
	assert.Equal(t, 3, config.CircuitBreakerFailThreshold)
}

func TestCredentialsIsZero(t *testing.T) {
	var nilCreds *Credentials
	assert.True(t, nilCreds.IsZero())
	assert.True(t, (&Credentials{Key: "k"}).IsZero())
	assert.True(t, (&Credentials{Secret: "s"}).IsZero())
	assert.False(t, (&Credentials{Key: "k", Secret: "s"}).IsZero())
}
