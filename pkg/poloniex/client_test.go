package poloniex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poloniex/pkg/core"
)

func newTestClient(t *testing.T, handler http.Handler, creds *core.Credentials) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := core.DefaultConfig().
		WithEndpoints(server.URL, server.URL).
		WithCredentials(creds)
	client, err := New(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, server
}

var testCreds = &core.Credentials{Key: "test-key", Secret: "test-secret"}

func TestNewRejectsInvalidConfig(t *testing.T) {
	config := core.DefaultConfig()
	config.PublicEndpoint = ""
	_, err := New(config)
	assert.Error(t, err)
}

func TestTicker(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "returnTicker", r.URL.Query().Get("command"))
		_, _ = w.Write([]byte(`{"BTC_ETH":{"id":148,"last":"0.031","lowestAsk":"0.032",
			"highestBid":"0.030","percentChange":"0.01","baseVolume":"100.5",
			"quoteVolume":"3300.2","isFrozen":"0","high24hr":"0.033","low24hr":"0.029"}}`))
	}), nil)

	ticker, err := client.Ticker(context.Background())
	require.NoError(t, err)
	require.Contains(t, ticker, "BTC_ETH")
	entry := ticker["BTC_ETH"]
	assert.Equal(t, int64(148), entry.ID)
	assert.Equal(t, "0.031", entry.Last.String())
}

func TestTradingWithoutCredentialsFailsBeforeIO(t *testing.T) {
	requested := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}), nil)
	// Drop any credentials the secret-file fallback may have picked up.
	client.creds = nil

	_, err := client.Balances(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsAuthError(err))
	assert.False(t, requested, "no HTTP request may be issued without credentials")
}

func TestTradingRequestIsSigned(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "returnBalances", r.PostForm.Get("command"))
		assert.Equal(t, "test-key", r.Header.Get("Key"))

		nonce := r.PostForm.Get("nonce")
		assert.NotEmpty(t, nonce)
		// The signature must cover the exact sorted form body.
		expected := signHMAC("command=returnBalances&nonce="+nonce, "test-secret")
		assert.Equal(t, expected, r.Header.Get("Sign"))

		_, _ = w.Write([]byte(`{"BTC":"1.5"}`))
	}), testCreds)

	balances, err := client.Balances(context.Background())
	require.NoError(t, err)
	btc := balances["BTC"]
	assert.Equal(t, "1.5", btc.String())
}

func TestNonceIncreasesAcrossRequests(t *testing.T) {
	var nonces []int64
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		nonce, err := strconv.ParseInt(r.PostForm.Get("nonce"), 10, 64)
		require.NoError(t, err)
		nonces = append(nonces, nonce)
		_, _ = w.Write([]byte(`{}`))
	}), testCreds)

	for i := 0; i < 5; i++ {
		_, err := client.Balances(context.Background())
		require.NoError(t, err)
	}

	require.Len(t, nonces, 5)
	for i := 1; i < len(nonces); i++ {
		assert.Greater(t, nonces[i], nonces[i-1])
	}
}

func TestServerErrorSurfacesVerbatim(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Invalid API key\/secret pair."}`))
	}), testCreds)

	_, err := client.Balances(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsAuthError(err))
	assert.True(t, core.IsAPIError(err))

	var exErr *core.ExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "Invalid API key/secret pair.", exErr.Message)
}

func TestLocalValidationFailsBeforeIO(t *testing.T) {
	requested := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}), testCreds)

	_, err := client.OrderBook(context.Background(), "btc-eth")
	assert.True(t, core.IsErrorCode(err, core.ErrCodeInvalidPair))

	_, err = client.ChartData(context.Background(), "BTC_ETH", 123)
	assert.True(t, core.IsErrorCode(err, core.ErrCodeInvalidPeriod))

	_, err = client.Buy(context.Background(), "nope", "0.1", "1")
	assert.True(t, core.IsErrorCode(err, core.ErrCodeInvalidPair))

	assert.False(t, requested)
}

func TestChartDataDefaultsRangeAndPeriod(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "returnChartData", query.Get("command"))
		assert.Equal(t, "900", query.Get("period"))
		assert.NotEmpty(t, query.Get("start"))
		assert.NotEmpty(t, query.Get("end"))
		_, _ = w.Write([]byte(`[]`))
	}), nil)

	candles, err := client.ChartData(context.Background(), "BTC_ETH", 900)
	require.NoError(t, err)
	assert.Empty(t, candles)
}

func TestAllOrderBooks(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "returnOrderBook", query.Get("command"))
		assert.Equal(t, "all", query.Get("currencyPair"))
		assert.Equal(t, "1", query.Get("depth"))
		_, _ = w.Write([]byte(`{
			"BTC_ETH": {"asks": [["0.031", 5]], "bids": [["0.030", 7]], "isFrozen": "0", "seq": 101},
			"BTC_LTC": {"asks": [], "bids": [], "isFrozen": "1", "seq": 202}
		}`))
	}), nil)

	books, err := client.AllOrderBooks(context.Background(), WithDepth(1))
	require.NoError(t, err)
	require.Len(t, books, 2)

	eth := books["BTC_ETH"]
	require.NotNil(t, eth)
	assert.Equal(t, "0.031", eth.Asks[0].Price.String())
	assert.Equal(t, int64(101), eth.Seq)
	assert.True(t, books["BTC_LTC"].IsFrozen)
}

func TestLoanOrdersRequestsFullBook(t *testing.T) {
	var limits []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "returnLoanOrders", r.URL.Query().Get("command"))
		limits = append(limits, r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"offers":[],"demands":[]}`))
	}), nil)

	_, err := client.LoanOrders(context.Background(), "BTC")
	require.NoError(t, err)

	_, err = client.LoanOrders(context.Background(), "BTC", WithLimit(25))
	require.NoError(t, err)

	require.Equal(t, []string{"5000", "25"}, limits)
}

func TestTradeHistoryDropsInvertedRange(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.NotEmpty(t, r.PostForm.Get("start"))
		assert.Empty(t, r.PostForm.Get("end"), "an end at or before start must be dropped")
		if r.PostForm.Get("currencyPair") == "all" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}), testCreds)

	now := time.Now()
	_, err := client.TradeHistory(context.Background(), "BTC_ETH",
		WithStart(now), WithEnd(now.Add(-time.Hour)))
	require.NoError(t, err)

	_, err = client.AllTradeHistory(context.Background(),
		WithStart(now), WithEnd(now))
	require.NoError(t, err)
}

func TestBuySendsOrderFlags(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "buy", r.PostForm.Get("command"))
		assert.Equal(t, "BTC_ETH", r.PostForm.Get("currencyPair"))
		assert.Equal(t, "0.031", r.PostForm.Get("rate"))
		assert.Equal(t, "2.5", r.PostForm.Get("amount"))
		assert.Equal(t, "1", r.PostForm.Get("fillOrKill"))
		_, _ = w.Write([]byte(`{"orderNumber":"31226040","resultingTrades":[]}`))
	}), testCreds)

	result, err := client.Buy(context.Background(), "BTC_ETH", "0.031", "2.5", WithFillOrKill())
	require.NoError(t, err)
	assert.Equal(t, "31226040", result.OrderNumber)
}

func TestTransferBalanceSendsAccounts(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "transferBalance", r.PostForm.Get("command"))
		assert.Equal(t, "exchange", r.PostForm.Get("fromAccount"))
		assert.Equal(t, "lending", r.PostForm.Get("toAccount"))
		_, _ = w.Write([]byte(`{"success":1,"message":"Transferred 2 BTC from exchange to lending account."}`))
	}), testCreds)

	result, err := client.TransferBalance(context.Background(), "BTC", "2",
		core.AccountExchange, core.AccountLending)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)
}

func TestClosedClientRejectsCalls(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), nil)
	require.NoError(t, client.Close())

	_, err := client.Ticker(context.Background())
	assert.ErrorIs(t, err, core.ErrClientClosed)
}

func TestCircuitBreakerOpensAfterTransportFailures(t *testing.T) {
	config := core.DefaultConfig().
		// Nothing listens here.
		WithEndpoints("http://127.0.0.1:1", "http://127.0.0.1:1").
		WithTimeout(200 * time.Millisecond).
		WithCircuitBreaker(1, 1, time.Minute)
	client, err := New(config)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	_, err = client.Ticker(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsNetworkError(err) || core.IsTimeoutError(err))

	_, err = client.Ticker(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsErrorCode(err, core.ErrCodeCircuitBreaker))
}

func TestCanTrade(t *testing.T) {
	withCreds, _ := newTestClient(t, http.NotFoundHandler(), testCreds)
	assert.True(t, withCreds.CanTrade())

	without, _ := newTestClient(t, http.NotFoundHandler(), nil)
	without.creds = nil
	assert.False(t, without.CanTrade())
}
