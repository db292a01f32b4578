// Package transport provides the HTTP dispatch layer for the exchange REST APIs.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"poloniex/pkg/core"
)

// Client wraps a resty HTTP client with logging. Each call is a single
// attempt: no retries, no backoff. Retry policy is left to the caller.
type Client struct {
	client *resty.Client
	logger zerolog.Logger
}

// Response represents an HTTP response with its status code, body, and headers.
type Response struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int

	// Body contains the raw response body bytes.
	Body []byte

	// Headers contains the response headers as key-value pairs.
	Headers map[string]string
}

// NewClient creates a new HTTP client with the given timeout.
func NewClient(timeout time.Duration, logger zerolog.Logger) *Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)

	return &Client{
		client: client,
		logger: logger,
	}
}

// Do executes the request and returns the response. Transport failures
// are classified as timeout or network errors; HTTP status handling is
// left to the protocol layer.
func (c *Client) Do(ctx context.Context, req *core.Request) (*Response, error) {
	r := c.client.R().SetContext(ctx)

	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}

	if req.Query != nil {
		r.SetQueryParams(req.Query.StringMap())
	}

	if req.Form != nil {
		r.SetHeader("Content-Type", "application/x-www-form-urlencoded")
		r.SetBody(req.Form.Encode())
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.BaseURL).
		Msg("http request")

	var resp *resty.Response
	var err error

	switch req.Method {
	case http.MethodGet:
		resp, err = r.Get(req.BaseURL)
	case http.MethodPost:
		resp, err = r.Post(req.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported http method: %s", req.Method)
	}

	if err != nil {
		c.logger.Error().Err(err).
			Str("method", req.Method).
			Str("url", req.BaseURL).
			Msg("http request failed")
		return nil, classifyTransportError(err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.BaseURL).
		Int("status", resp.StatusCode()).
		Int("size", len(resp.Bytes())).
		Msg("http response")

	headers := make(map[string]string)
	for k, v := range resp.Header() {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Bytes(),
		Headers:    headers,
	}, nil
}

// SetLogger configures the logger used for request/response events.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

// SetTimeout sets the request timeout duration.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.SetTimeout(timeout)
}

// Close releases the underlying resty client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

func classifyTransportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return core.NewExchangeErrorWithCode(core.ErrorTypeTimeout, core.ErrCodeTimeout, err.Error())
	case errors.As(err, &netErr) && netErr.Timeout():
		return core.NewExchangeErrorWithCode(core.ErrorTypeTimeout, core.ErrCodeTimeout, err.Error())
	default:
		return core.NewExchangeErrorWithCode(core.ErrorTypeNetwork, core.ErrCodeNetwork, err.Error())
	}
}

// IsSuccess returns true if the response status code indicates success (2xx).
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the response status code indicates an error (4xx or 5xx).
func (r *Response) IsError() bool {
	return r.StatusCode >= http.StatusBadRequest
}

// Unmarshal parses the response body into the provided value using sonic.
func (r *Response) Unmarshal(v any) error {
	return sonic.Unmarshal(r.Body, v)
}
