package core

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsEncodeSortsKeys(t *testing.T) {
	params := Params{
		"nonce":        int64(42),
		"command":      "buy",
		"currencyPair": "BTC_ETH",
		"amount":       "1.5",
	}
	assert.Equal(t, "amount=1.5&command=buy&currencyPair=BTC_ETH&nonce=42", params.Encode())
}

func TestParamsEncodeDeterministic(t *testing.T) {
	params := Params{"b": "2", "a": "1", "c": "3"}
	first := params.Encode()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, params.Encode())
	}
}

func TestParamsStringify(t *testing.T) {
	params := Params{
		"str":   "x",
		"int":   7,
		"int64": int64(9),
		"float": 0.25,
		"yes":   true,
		"no":    false,
	}
	got := params.StringMap()
	assert.Equal(t, "x", got["str"])
	assert.Equal(t, "7", got["int"])
	assert.Equal(t, "9", got["int64"])
	assert.Equal(t, "0.25", got["float"])
	assert.Equal(t, "1", got["yes"])
	assert.Equal(t, "0", got["no"])
}

func TestParamsMerge(t *testing.T) {
	params := Params{"a": "1", "b": "2"}
	params.Merge(Params{"b": "override", "c": "3"})
	assert.Equal(t, "override", params["b"])
	assert.Equal(t, "3", params["c"])
	assert.Len(t, params, 3)
}

func TestRequestBuilders(t *testing.T) {
	req := NewRequest(http.MethodPost, "https://example.com/tradingApi").
		SetForm(Params{"command": "buy"}).
		SetHeader("Key", "api-key").
		SetRequireAuth(true)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://example.com/tradingApi", req.BaseURL)
	assert.Equal(t, "buy", req.Form["command"])
	assert.Equal(t, "api-key", req.Headers["Key"])
	assert.True(t, req.RequireAuth)
	assert.Nil(t, req.Query)

	get := NewRequest(http.MethodGet, "https://example.com/public").
		SetQuery("command", "returnTicker").
		SetQueryParams(Params{"currencyPair": "BTC_ETH"})
	assert.Equal(t, "returnTicker", get.Query["command"])
	assert.Equal(t, "BTC_ETH", get.Query["currencyPair"])
	assert.False(t, get.RequireAuth)
}
