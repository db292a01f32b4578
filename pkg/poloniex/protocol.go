package poloniex

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"

	"poloniex/internal/transport"
	"poloniex/pkg/core"
)

// Protocol builds, signs, and error-checks requests for the exchange.
// Public commands become unauthenticated GETs against the public
// endpoint; trading commands become signed form POSTs against the
// trading endpoint.
type Protocol struct {
	publicURL  string
	tradingURL string
}

// NewProtocol creates a protocol bound to the given endpoints.
func NewProtocol(publicURL, tradingURL string) *Protocol {
	return &Protocol{
		publicURL:  publicURL,
		tradingURL: tradingURL,
	}
}

// BuildRequest constructs the HTTP request for a command. The command
// name travels as the command parameter in the query (public) or the
// form body (trading).
func (p *Protocol) BuildRequest(cmd core.Command, params core.Params) *core.Request {
	merged := core.Params{"command": cmd.String()}
	merged.Merge(params)

	if !cmd.Private() {
		return core.NewRequest(http.MethodGet, p.publicURL).
			SetQueryParams(merged)
	}

	return core.NewRequest(http.MethodPost, p.tradingURL).
		SetForm(merged).
		SetRequireAuth(true)
}

// Sign authenticates a trading request. The nonce joins the form body,
// the body is url-encoded with sorted keys, and the signature is the
// hex HMAC-SHA512 of those exact bytes under the secret. The Key and
// Sign headers carry the key and signature.
//
// Signing is deterministic: the same (secret, nonce, params) always
// produces the same signature string.
func (p *Protocol) Sign(req *core.Request, creds *core.Credentials, nonce int64) error {
	if creds.IsZero() {
		return core.NewExchangeErrorWithCode(core.ErrorTypeAuth, core.ErrCodeNoCredentials,
			"trading command requires API key and secret")
	}
	if req.Form == nil {
		return fmt.Errorf("sign: request has no form body")
	}

	req.Form.Set("nonce", nonce)

	signature := signHMAC(req.Form.Encode(), creds.Secret)
	req.SetHeader("Key", creds.Key)
	req.SetHeader("Sign", signature)

	return nil
}

// CheckResponse validates an HTTP response and returns the raw body for
// decoding. A populated error field in the payload surfaces as an API
// error with the server's message preserved verbatim, regardless of the
// HTTP status; an error status without a structured payload maps from
// the status code.
func (p *Protocol) CheckResponse(resp *transport.Response) ([]byte, error) {
	var payload struct {
		Error string `json:"error"`
	}
	if err := sonic.Unmarshal(resp.Body, &payload); err == nil && payload.Error != "" {
		return nil, core.NewExchangeErrorWithCode(
			classifyServerError(payload.Error),
			core.ErrCodeAPIError,
			payload.Error,
		).WithStatus(resp.StatusCode)
	}

	if resp.IsError() {
		return nil, core.NewExchangeError(
			mapStatusCode(resp.StatusCode),
			fmt.Sprintf("HTTP error: %d", resp.StatusCode),
		).WithStatus(resp.StatusCode)
	}

	return resp.Body, nil
}

func signHMAC(message, secret string) string {
	h := hmac.New(sha512.New, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// classifyServerError refines the error type from well-known server
// message prefixes. Unrecognized messages stay plain API errors.
func classifyServerError(msg string) core.ErrorType {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "invalid api key"),
		strings.Contains(lower, "api key and secret"),
		strings.Contains(lower, "nonce"),
		strings.Contains(lower, "permission"):
		return core.ErrorTypeAuth
	case strings.Contains(lower, "not enough"):
		return core.ErrorTypeInsufficientFunds
	case strings.Contains(lower, "invalid currency"),
		strings.Contains(lower, "invalid currencypair"),
		strings.Contains(lower, "required parameter"):
		return core.ErrorTypeBadRequest
	case strings.Contains(lower, "total must be at least"),
		strings.Contains(lower, "invalid order"),
		strings.Contains(lower, "order not found"):
		return core.ErrorTypeInvalidOrder
	default:
		return core.ErrorTypeAPI
	}
}

func mapStatusCode(statusCode int) core.ErrorType {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return core.ErrorTypeAuth
	case statusCode == http.StatusBadRequest:
		return core.ErrorTypeBadRequest
	default:
		return core.ErrorTypeAPI
	}
}
