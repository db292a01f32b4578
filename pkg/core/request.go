package core

import (
	"maps"
	"net/url"
	"strconv"
)

// Params is an ordered-on-encode parameter map. Values are stringified
// when the request is built; signature computation relies on the sorted
// key order produced by Encode.
type Params map[string]any

// Set stores a value under the given key.
func (p Params) Set(key string, value any) {
	p[key] = value
}

// Merge copies every entry from other into p, overwriting duplicates.
func (p Params) Merge(other Params) {
	maps.Copy(p, other)
}

// StringMap converts the parameters to string values suitable for query
// or form encoding.
func (p Params) StringMap() map[string]string {
	result := make(map[string]string, len(p))
	for k, v := range p {
		result[k] = stringify(v)
	}
	return result
}

// Encode returns the url-encoded form of the parameters with keys in
// sorted order. This is the exact byte sequence the signature is
// computed over for trading requests.
func (p Params) Encode() string {
	values := url.Values{}
	for k, v := range p {
		values.Set(k, stringify(v))
	}
	return values.Encode()
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return ""
	}
}

// Request describes a single HTTP call against the exchange.
type Request struct {
	Method string `json:"method"`
	// BaseURL selects the public or trading endpoint.
	BaseURL string `json:"base_url"`
	// Query holds the parameters for public GETs.
	Query Params `json:"query,omitempty"`
	// Form holds the parameters for signed trading POSTs; it is encoded
	// as application/x-www-form-urlencoded and signed as a whole.
	Form    Params            `json:"form,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	// RequireAuth marks requests that must carry Key/Sign headers.
	RequireAuth bool `json:"require_auth"`
}

// NewRequest creates a request for the given method and base URL.
func NewRequest(method, baseURL string) *Request {
	return &Request{
		Method:  method,
		BaseURL: baseURL,
		Headers: make(map[string]string),
	}
}

// SetQuery adds a query parameter and returns the request for chaining.
func (r *Request) SetQuery(key string, value any) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	r.Query[key] = value
	return r
}

// SetQueryParams merges query parameters and returns the request for chaining.
func (r *Request) SetQueryParams(params Params) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	r.Query.Merge(params)
	return r
}

// SetForm replaces the form body and returns the request for chaining.
func (r *Request) SetForm(params Params) *Request {
	r.Form = params
	return r
}

// SetHeader adds a header and returns the request for chaining.
func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

// SetRequireAuth marks the request as requiring signing.
func (r *Request) SetRequireAuth(require bool) *Request {
	r.RequireAuth = require
	return r
}
