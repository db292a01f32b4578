package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExchangeErrorFormatting(t *testing.T) {
	err := NewExchangeError(ErrorTypeAPI, "Invalid command.")
	assert.Equal(t, "poloniex: API: Invalid command.", err.Error())

	withCode := NewExchangeErrorWithCode(ErrorTypeAuth, ErrCodeAuth, "Invalid API key/secret pair.")
	assert.Equal(t, "poloniex: AUTH (AUTH_ERROR): Invalid API key/secret pair.", withCode.Error())
	assert.False(t, withCode.Timestamp.IsZero())
}

func TestExchangeErrorPreservesServerMessage(t *testing.T) {
	msg := "Not enough BTC."
	err := NewExchangeErrorWithCode(ErrorTypeInsufficientFunds, ErrCodeAPIError, msg)
	assert.Equal(t, msg, err.Message)
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		isNetwork bool
		isTimeout bool
		isAPI     bool
		isAuth    bool
		isConnect bool
	}{
		{
			name:      "network",
			err:       NewExchangeErrorWithCode(ErrorTypeNetwork, ErrCodeNetwork, "connection refused"),
			isNetwork: true,
		},
		{
			name:      "timeout",
			err:       NewExchangeErrorWithCode(ErrorTypeTimeout, ErrCodeTimeout, "deadline exceeded"),
			isTimeout: true,
		},
		{
			name:  "api",
			err:   NewExchangeErrorWithCode(ErrorTypeAPI, ErrCodeAPIError, "Invalid command."),
			isAPI: true,
		},
		{
			name:   "auth from server message",
			err:    NewExchangeErrorWithCode(ErrorTypeAuth, ErrCodeAPIError, "Invalid API key/secret pair."),
			isAPI:  true,
			isAuth: true,
		},
		{
			name:   "missing credentials sentinel",
			err:    fmt.Errorf("dispatch: %w", ErrNoCredentials),
			isAuth: true,
		},
		{
			name:      "connect",
			err:       NewExchangeErrorWithCode(ErrorTypeConnect, ErrCodeConnect, "dial tcp: refused"),
			isConnect: true,
		},
		{
			name: "plain error matches nothing",
			err:  fmt.Errorf("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isNetwork, IsNetworkError(tt.err))
			assert.Equal(t, tt.isTimeout, IsTimeoutError(tt.err))
			assert.Equal(t, tt.isAPI, IsAPIError(tt.err))
			assert.Equal(t, tt.isAuth, IsAuthError(tt.err))
			assert.Equal(t, tt.isConnect, IsConnectError(tt.err))
		})
	}
}

func TestErrorPredicatesThroughWrapping(t *testing.T) {
	inner := NewExchangeErrorWithCode(ErrorTypeTimeout, ErrCodeTimeout, "deadline exceeded")
	wrapped := fmt.Errorf("ticker: %w", inner)

	assert.True(t, IsTimeoutError(wrapped))
	assert.True(t, IsErrorCode(wrapped, ErrCodeTimeout))
	assert.False(t, IsErrorCode(wrapped, ErrCodeNetwork))
}

func TestWithStatus(t *testing.T) {
	err := NewExchangeError(ErrorTypeAPI, "oops").WithStatus(422)
	assert.Equal(t, 422, err.StatusCode)
}
