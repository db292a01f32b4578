package core

import "errors"

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

// Error code constants.
const (
	// ErrCodeNetwork indicates a transport-level failure.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	// ErrCodeTimeout indicates the request exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeAPIError marks errors whose message came verbatim from the server.
	ErrCodeAPIError ErrorCode = "API_ERROR"
	// ErrCodeAuth indicates authentication or signature failure.
	ErrCodeAuth ErrorCode = "AUTH_ERROR"
	// ErrCodeBadRequest indicates invalid request parameters.
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"
	// ErrCodeInvalidPair indicates the currency pair is malformed or unknown.
	ErrCodeInvalidPair ErrorCode = "INVALID_PAIR"
	// ErrCodeInvalidPeriod indicates an unsupported candlestick period.
	ErrCodeInvalidPeriod ErrorCode = "INVALID_PERIOD"
	// ErrCodeInsufficientFunds indicates the account lacks the required balance.
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	// ErrCodeInvalidOrder indicates the order violates exchange rules.
	ErrCodeInvalidOrder ErrorCode = "INVALID_ORDER"

	// Configuration errors
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// Credential errors
	ErrCodeNoCredentials ErrorCode = "NO_CREDENTIALS"
	ErrCodeSecretFile    ErrorCode = "SECRET_FILE"

	// Push/WebSocket errors
	ErrCodeConnect      ErrorCode = "CONNECT_FAILED"
	ErrCodeNotConnected ErrorCode = "NOT_CONNECTED"

	// Circuit breaker
	ErrCodeCircuitBreaker ErrorCode = "CIRCUIT_BREAKER_OPEN"
)

// IsErrorCode checks whether the error carries the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var exErr *ExchangeError
	if errors.As(err, &exErr) {
		return ErrorCode(exErr.Code) == code
	}
	return false
}
