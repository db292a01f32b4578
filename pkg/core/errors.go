package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of a client or exchange error.
type ErrorType int

// Error type constants categorize errors for programmatic handling.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates a transport-level failure (connection refused, DNS, reset).
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeAPI indicates the exchange returned a structured error payload.
	ErrorTypeAPI
	// ErrorTypeAuth indicates missing or invalid credentials, or a rejected signature.
	ErrorTypeAuth
	// ErrorTypeBadRequest indicates invalid request parameters.
	ErrorTypeBadRequest
	// ErrorTypeConnect indicates a websocket connection attempt failed.
	ErrorTypeConnect
	// ErrorTypeInsufficientFunds indicates the account lacks the required balance.
	ErrorTypeInsufficientFunds
	// ErrorTypeInvalidOrder indicates the order violates exchange rules.
	ErrorTypeInvalidOrder
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	return [...]string{
		"UNKNOWN",
		"NETWORK",
		"TIMEOUT",
		"API",
		"AUTH",
		"BAD_REQUEST",
		"CONNECT",
		"INSUFFICIENT_FUNDS",
		"INVALID_ORDER",
	}[t]
}

// Sentinel errors for common error conditions.
var (
	// ErrNoCredentials is returned when a trading command is attempted without credentials.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrNotConnected is returned when the push socket is not connected.
	ErrNotConnected = errors.New("websocket not connected")
	// ErrCircuitBreakerOpen is returned when the circuit breaker rejects a call.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// ExchangeError represents a structured error from the exchange or the
// request path leading to it. The Message field preserves the server's
// error text verbatim when one was returned.
type ExchangeError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// StatusCode is the HTTP status code, when the error came from a response.
	StatusCode int `json:"status_code,omitempty"`
	// Code is a stable machine-readable identifier.
	Code string `json:"code,omitempty"`
	// Message is the human-readable description; for API errors it is the
	// exact text from the server's error field.
	Message string `json:"message"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *ExchangeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("poloniex: %s (%s): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("poloniex: %s: %s", e.Type, e.Message)
}

// WithStatus returns the error with the HTTP status code set.
func (e *ExchangeError) WithStatus(code int) *ExchangeError {
	e.StatusCode = code
	return e
}

// NewExchangeError creates an ExchangeError with the current timestamp.
func NewExchangeError(errorType ErrorType, message string) *ExchangeError {
	return &ExchangeError{
		Type:      errorType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewExchangeErrorWithCode creates an ExchangeError carrying a machine-readable code.
func NewExchangeErrorWithCode(errorType ErrorType, code ErrorCode, message string) *ExchangeError {
	return &ExchangeError{
		Type:      errorType,
		Code:      string(code),
		Message:   message,
		Timestamp: time.Now(),
	}
}

func hasType(err error, t ErrorType) bool {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// IsNetworkError returns true for transport-level failures.
func IsNetworkError(err error) bool {
	return hasType(err, ErrorTypeNetwork)
}

// IsTimeoutError returns true when a request exceeded its deadline.
func IsTimeoutError(err error) bool {
	return hasType(err, ErrorTypeTimeout)
}

// IsAPIError returns true when the exchange returned a structured error
// payload. Refined server-error types (auth rejections, insufficient
// funds, invalid order, bad request) count as API errors when they carry
// a server message, identified by the API_ERROR code.
func IsAPIError(err error) bool {
	var e *ExchangeError
	if errors.As(err, &e) {
		if e.Type == ErrorTypeAPI {
			return true
		}
		return e.Code == string(ErrCodeAPIError)
	}
	return false
}

// IsAuthError returns true for missing credentials or rejected signatures.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrNoCredentials) {
		return true
	}
	return hasType(err, ErrorTypeAuth)
}

// IsConnectError returns true when a websocket connection attempt failed.
func IsConnectError(err error) bool {
	return hasType(err, ErrorTypeConnect)
}
