// Package poloniex is a typed client for the Poloniex exchange: public
// REST commands, signed trading commands, and the push websocket gateway.
package poloniex

import (
	"context"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"poloniex/internal/circuitbreaker"
	"poloniex/internal/keyring"
	"poloniex/internal/transport"
	"poloniex/pkg/core"
)

// Client executes REST commands against the exchange. Every call is a
// single attempt: no retries, no backoff, no client-side rate limiting.
// Safe for concurrent use.
type Client struct {
	config   *core.Config
	http     *transport.Client
	protocol *Protocol
	creds    *core.Credentials
	nonce    *NonceCounter
	breaker  *circuitbreaker.Breaker
	logger   zerolog.Logger
	closed   atomic.Bool
}

// New creates a client from the given configuration. A nil config uses
// DefaultConfig. When no credentials are configured, the conventional
// secret file (~/poloniex/secret.json) is tried; a missing or invalid
// file just leaves the client public-only.
func New(config *core.Config) (*Client, error) {
	if config == nil {
		config = core.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	creds := config.Credentials
	if creds.IsZero() {
		if key, err := keyring.LoadFile(keyring.DefaultSecretPath()); err == nil {
			creds = &core.Credentials{Key: key.Key, Secret: key.Secret}
		}
	}

	logger := zerolog.Nop()
	client := &Client{
		config:   config,
		http:     transport.NewClient(config.Timeout, logger),
		protocol: NewProtocol(config.PublicEndpoint, config.TradingEndpoint),
		creds:    creds,
		nonce:    NewNonceCounter(),
		logger:   logger,
	}

	if config.CircuitBreakerEnabled {
		client.breaker = circuitbreaker.New(circuitbreaker.Config{
			FailThreshold:    config.CircuitBreakerFailThreshold,
			SuccessThreshold: config.CircuitBreakerSuccessThreshold,
			Timeout:          config.CircuitBreakerTimeout,
		})
	}

	return client, nil
}

// SetLogger configures the logger used by the client and its transport.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
	c.http.SetLogger(logger)
}

// CanTrade reports whether the client holds credentials for trading
// commands.
func (c *Client) CanTrade() bool {
	return !c.creds.IsZero()
}

// Close releases the underlying HTTP client. Calls after Close fail with
// ErrClientClosed.
func (c *Client) Close() error {
	c.closed.Store(true)
	return c.http.Close()
}

// Do executes a command and returns the raw response body. Trading
// commands are signed with the next nonce; a trading command without
// credentials fails before any I/O. Most callers want the typed facade
// methods instead.
func (c *Client) Do(ctx context.Context, cmd core.Command, params core.Params) ([]byte, error) {
	if c.closed.Load() {
		return nil, core.ErrClientClosed
	}
	if c.breaker != nil && !c.breaker.Allow() {
		return nil, core.NewExchangeErrorWithCode(core.ErrorTypeNetwork,
			core.ErrCodeCircuitBreaker, core.ErrCircuitBreakerOpen.Error())
	}

	req := c.protocol.BuildRequest(cmd, params)
	if req.RequireAuth {
		if err := c.protocol.Sign(req, c.creds, c.nonce.Next()); err != nil {
			return nil, err
		}
	}

	resp, err := c.http.Do(ctx, req)
	if c.breaker != nil {
		// Only transport failures count against the breaker; a reachable
		// server that rejects the command is not an outage.
		c.breaker.Record(err == nil)
	}
	if err != nil {
		return nil, err
	}

	body, err := c.protocol.CheckResponse(resp)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("command", cmd.String()).
			Msg("command rejected")
		return nil, err
	}
	return body, nil
}

var pairPattern = regexp.MustCompile(`^[0-9A-Z]+_[0-9A-Z]+$`)

func validatePair(pair string) error {
	if !pairPattern.MatchString(pair) {
		return core.NewExchangeErrorWithCode(core.ErrorTypeBadRequest,
			core.ErrCodeInvalidPair, fmt.Sprintf("invalid currency pair %q", pair))
	}
	return nil
}

var validPeriods = map[int]bool{
	300: true, 900: true, 1800: true, 7200: true, 14400: true, 86400: true,
}

func validatePeriod(period int) error {
	if !validPeriods[period] {
		return core.NewExchangeErrorWithCode(core.ErrorTypeBadRequest,
			core.ErrCodeInvalidPeriod,
			fmt.Sprintf("invalid candle period %d: want 300, 900, 1800, 7200, 14400 or 86400", period))
	}
	return nil
}

// defaultRange fills in start/end when the caller gave neither,
// mirroring the server-side expectation that history queries are bounded.
func defaultRange(params core.Params, span time.Duration) {
	if _, ok := params["start"]; !ok {
		params.Set("start", time.Now().Add(-span).Unix())
	}
	if _, ok := params["end"]; !ok {
		params.Set("end", time.Now().Unix())
	}
}

// The server rejects oversized history limits; anything above 10000 is
// replaced with the default page size.
func clampLimit(params core.Params) {
	if limit, ok := params["limit"].(int); ok && limit > 10000 {
		params.Set("limit", 500)
	}
}

// An end bound at or before the start bound would make the window empty;
// the end is dropped so the query degrades to an open-ended range.
func dropInvertedRange(params core.Params) {
	start, haveStart := params["start"].(int64)
	end, haveEnd := params["end"].(int64)
	if haveStart && haveEnd && end <= start {
		delete(params, "end")
	}
}

// Ticker returns the ticker for all markets.
func (c *Client) Ticker(ctx context.Context) (core.Ticker, error) {
	body, err := c.Do(ctx, core.CmdTicker, core.Params{})
	if err != nil {
		return nil, err
	}
	return normalizeTicker(body)
}

// Volume24 returns the 24-hour volume for all markets plus per-currency
// totals.
func (c *Client) Volume24(ctx context.Context) (*core.Volume24, error) {
	body, err := c.Do(ctx, core.CmdVolume24, core.Params{})
	if err != nil {
		return nil, err
	}
	return normalizeVolume24(body)
}

// OrderBook returns the order book for one market. Use WithDepth to limit
// the number of levels per side.
func (c *Client) OrderBook(ctx context.Context, pair string, opts ...RequestOption) (*core.OrderBook, error) {
	if err := validatePair(pair); err != nil {
		return nil, err
	}
	params := applyOptions(core.Params{"currencyPair": pair}, opts)
	body, err := c.Do(ctx, core.CmdOrderBook, params)
	if err != nil {
		return nil, err
	}
	return normalizeOrderBook(body)
}

// AllOrderBooks returns the order book of every market, keyed by
// currency pair. WithDepth limits the number of levels per side.
func (c *Client) AllOrderBooks(ctx context.Context, opts ...RequestOption) (map[string]*core.OrderBook, error) {
	params := applyOptions(core.Params{"currencyPair": "all"}, opts)
	body, err := c.Do(ctx, core.CmdOrderBook, params)
	if err != nil {
		return nil, err
	}
	return normalizeAllOrderBooks(body)
}

// PublicTradeHistory returns recent public trades for a market, newest
// first. WithStart/WithEnd narrow the window.
func (c *Client) PublicTradeHistory(ctx context.Context, pair string, opts ...RequestOption) ([]core.Trade, error) {
	if err := validatePair(pair); err != nil {
		return nil, err
	}
	params := applyOptions(core.Params{"currencyPair": pair}, opts)
	body, err := c.Do(ctx, core.CmdPublicTradeHistory, params)
	if err != nil {
		return nil, err
	}
	return normalizeTrades(body)
}

// ChartData returns candlestick data for a market. Period is the candle
// width in seconds and must be one of 300, 900, 1800, 7200, 14400 or
// 86400. Without WithStart/WithEnd the last 24 hours are returned.
func (c *Client) ChartData(ctx context.Context, pair string, period int, opts ...RequestOption) ([]core.Candle, error) {
	if err := validatePair(pair); err != nil {
		return nil, err
	}
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	params := applyOptions(core.Params{"currencyPair": pair, "period": period}, opts)
	defaultRange(params, 24*time.Hour)
	body, err := c.Do(ctx, core.CmdChartData, params)
	if err != nil {
		return nil, err
	}
	return normalizeCandles(body)
}

// Currencies returns all listed currencies.
func (c *Client) Currencies(ctx context.Context) (map[string]core.Currency, error) {
	body, err := c.Do(ctx, core.CmdCurrencies, core.Params{})
	if err != nil {
		return nil, err
	}
	return normalizeCurrencies(body)
}

// LoanOrders returns the lending order book for one currency. The full
// book is requested by default; WithLimit overrides the depth.
func (c *Client) LoanOrders(ctx context.Context, currency string, opts ...RequestOption) (*core.LoanOrderBook, error) {
	params := applyOptions(core.Params{"currency": currency, "limit": 5000}, opts)
	body, err := c.Do(ctx, core.CmdLoanOrders, params)
	if err != nil {
		return nil, err
	}
	return normalizeLoanOrderBook(body)
}

// Balances returns the available balance of every currency.
func (c *Client) Balances(ctx context.Context) (core.Balances, error) {
	body, err := c.Do(ctx, core.CmdBalances, core.Params{})
	if err != nil {
		return nil, err
	}
	return normalizeBalances(body)
}

// CompleteBalances returns available, on-order, and BTC-valued balances.
// WithAccount(core.AccountAll) includes margin and lending accounts.
func (c *Client) CompleteBalances(ctx context.Context, opts ...RequestOption) (core.CompleteBalances, error) {
	params := applyOptions(core.Params{}, opts)
	body, err := c.Do(ctx, core.CmdCompleteBalances, params)
	if err != nil {
		return nil, err
	}
	return normalizeCompleteBalances(body)
}

// DepositAddresses returns the deposit address of every currency that has
// one.
func (c *Client) DepositAddresses(ctx context.Context) (core.DepositAddresses, error) {
	body, err := c.Do(ctx, core.CmdDepositAddresses, core.Params{})
	if err != nil {
		return nil, err
	}
	var out core.DepositAddresses
	if err := sonicUnmarshal(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateNewAddress creates a deposit address for a currency.
func (c *Client) GenerateNewAddress(ctx context.Context, currency string) (*core.NewAddress, error) {
	body, err := c.Do(ctx, core.CmdGenerateNewAddress, core.Params{"currency": currency})
	if err != nil {
		return nil, err
	}
	var out core.NewAddress
	if err := sonicUnmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DepositsWithdrawals returns the deposit and withdrawal history. Without
// WithStart/WithEnd the last 30 days are returned.
func (c *Client) DepositsWithdrawals(ctx context.Context, opts ...RequestOption) (*core.DepositsWithdrawals, error) {
	params := applyOptions(core.Params{}, opts)
	defaultRange(params, 30*24*time.Hour)
	body, err := c.Do(ctx, core.CmdDepositsWithdrawals, params)
	if err != nil {
		return nil, err
	}
	return normalizeDepositsWithdrawals(body)
}

// OpenOrders returns the caller's resting orders in one market.
func (c *Client) OpenOrders(ctx context.Context, pair string) ([]core.OpenOrder, error) {
	if err := validatePair(pair); err != nil {
		return nil, err
	}
	body, err := c.Do(ctx, core.CmdOpenOrders, core.Params{"currencyPair": pair})
	if err != nil {
		return nil, err
	}
	return normalizeOpenOrders(body)
}

// AllOpenOrders returns the caller's resting orders in every market.
func (c *Client) AllOpenOrders(ctx context.Context) (map[string][]core.OpenOrder, error) {
	body, err := c.Do(ctx, core.CmdOpenOrders, core.Params{"currencyPair": "all"})
	if err != nil {
		return nil, err
	}
	return normalizeAllOpenOrders(body)
}

// TradeHistory returns the caller's trades in one market. Without
// WithStart/WithEnd the server picks its default window; WithLimit caps
// the row count.
func (c *Client) TradeHistory(ctx context.Context, pair string, opts ...RequestOption) ([]core.PrivateTrade, error) {
	if err := validatePair(pair); err != nil {
		return nil, err
	}
	params := applyOptions(core.Params{"currencyPair": pair}, opts)
	clampLimit(params)
	dropInvertedRange(params)
	body, err := c.Do(ctx, core.CmdTradeHistory, params)
	if err != nil {
		return nil, err
	}
	return normalizePrivateTrades(body)
}

// AllTradeHistory returns the caller's trades across every market, keyed
// by currency pair.
func (c *Client) AllTradeHistory(ctx context.Context, opts ...RequestOption) (map[string][]core.PrivateTrade, error) {
	params := applyOptions(core.Params{"currencyPair": "all"}, opts)
	clampLimit(params)
	dropInvertedRange(params)
	body, err := c.Do(ctx, core.CmdTradeHistory, params)
	if err != nil {
		return nil, err
	}
	return normalizeAllPrivateTrades(body)
}

// OrderTrades returns the trades that filled a given order.
func (c *Client) OrderTrades(ctx context.Context, orderNumber string) ([]core.PrivateTrade, error) {
	body, err := c.Do(ctx, core.CmdOrderTrades, core.Params{"orderNumber": orderNumber})
	if err != nil {
		return nil, err
	}
	return normalizePrivateTrades(body)
}

// Buy places a limit buy order. Rate and amount are decimal strings.
// WithFillOrKill, WithImmediateOrCancel and WithPostOnly adjust the order
// flags.
func (c *Client) Buy(ctx context.Context, pair, rate, amount string, opts ...RequestOption) (*core.OrderResult, error) {
	return c.placeOrder(ctx, core.CmdBuy, pair, rate, amount, opts)
}

// Sell places a limit sell order.
func (c *Client) Sell(ctx context.Context, pair, rate, amount string, opts ...RequestOption) (*core.OrderResult, error) {
	return c.placeOrder(ctx, core.CmdSell, pair, rate, amount, opts)
}

func (c *Client) placeOrder(ctx context.Context, cmd core.Command, pair, rate, amount string, opts []RequestOption) (*core.OrderResult, error) {
	if err := validatePair(pair); err != nil {
		return nil, err
	}
	params := applyOptions(core.Params{
		"currencyPair": pair,
		"rate":         rate,
		"amount":       amount,
	}, opts)
	body, err := c.Do(ctx, cmd, params)
	if err != nil {
		return nil, err
	}
	return normalizeOrderResult(body)
}

// CancelOrder cancels a resting order.
func (c *Client) CancelOrder(ctx context.Context, orderNumber string) (*core.SuccessResult, error) {
	body, err := c.Do(ctx, core.CmdCancelOrder, core.Params{"orderNumber": orderNumber})
	if err != nil {
		return nil, err
	}
	return normalizeSuccessResult(body)
}

// MoveOrder cancels a resting order and places it again at a new rate,
// keeping the order number lineage. WithAmount changes the amount too.
func (c *Client) MoveOrder(ctx context.Context, orderNumber, rate string, opts ...RequestOption) (*core.MoveOrderResult, error) {
	params := applyOptions(core.Params{"orderNumber": orderNumber, "rate": rate}, opts)
	body, err := c.Do(ctx, core.CmdMoveOrder, params)
	if err != nil {
		return nil, err
	}
	return normalizeMoveOrderResult(body)
}

// Withdraw sends funds to an external address. WithPaymentID attaches the
// memo some currencies require.
func (c *Client) Withdraw(ctx context.Context, currency, amount, address string, opts ...RequestOption) (*core.WithdrawResult, error) {
	params := applyOptions(core.Params{
		"currency": currency,
		"amount":   amount,
		"address":  address,
	}, opts)
	body, err := c.Do(ctx, core.CmdWithdraw, params)
	if err != nil {
		return nil, err
	}
	var out core.WithdrawResult
	if err := sonicUnmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FeeInfo returns the caller's maker/taker fee schedule and 30-day volume.
func (c *Client) FeeInfo(ctx context.Context) (*core.FeeInfo, error) {
	body, err := c.Do(ctx, core.CmdFeeInfo, core.Params{})
	if err != nil {
		return nil, err
	}
	return normalizeFeeInfo(body)
}

// AvailableAccountBalances returns balances split by account. WithAccount
// restricts the response to one account.
func (c *Client) AvailableAccountBalances(ctx context.Context, opts ...RequestOption) (*core.AccountBalances, error) {
	params := applyOptions(core.Params{}, opts)
	body, err := c.Do(ctx, core.CmdAvailableAccountBalances, params)
	if err != nil {
		return nil, err
	}
	return normalizeAccountBalances(body)
}

// TradableBalances returns the margin-tradable balance of each side of
// every market.
func (c *Client) TradableBalances(ctx context.Context) (core.TradableBalances, error) {
	body, err := c.Do(ctx, core.CmdTradableBalances, core.Params{})
	if err != nil {
		return nil, err
	}
	return normalizeTradableBalances(body)
}

// TransferBalance moves funds between the exchange, margin, and lending
// accounts.
func (c *Client) TransferBalance(ctx context.Context, currency, amount string, from, to core.Account) (*core.SuccessResult, error) {
	body, err := c.Do(ctx, core.CmdTransferBalance, core.Params{
		"currency":    currency,
		"amount":      amount,
		"fromAccount": from.String(),
		"toAccount":   to.String(),
	})
	if err != nil {
		return nil, err
	}
	return normalizeSuccessResult(body)
}

// MarginAccountSummary returns the caller's margin account totals.
func (c *Client) MarginAccountSummary(ctx context.Context) (*core.MarginSummary, error) {
	body, err := c.Do(ctx, core.CmdMarginAccountSummary, core.Params{})
	if err != nil {
		return nil, err
	}
	return normalizeMarginSummary(body)
}

// MarginBuy places a margin buy order. WithLendingRate caps the borrow
// rate.
func (c *Client) MarginBuy(ctx context.Context, pair, rate, amount string, opts ...RequestOption) (*core.MarginOrderResult, error) {
	return c.placeMarginOrder(ctx, core.CmdMarginBuy, pair, rate, amount, opts)
}

// MarginSell places a margin sell order.
func (c *Client) MarginSell(ctx context.Context, pair, rate, amount string, opts ...RequestOption) (*core.MarginOrderResult, error) {
	return c.placeMarginOrder(ctx, core.CmdMarginSell, pair, rate, amount, opts)
}

func (c *Client) placeMarginOrder(ctx context.Context, cmd core.Command, pair, rate, amount string, opts []RequestOption) (*core.MarginOrderResult, error) {
	if err := validatePair(pair); err != nil {
		return nil, err
	}
	params := applyOptions(core.Params{
		"currencyPair": pair,
		"rate":         rate,
		"amount":       amount,
	}, opts)
	body, err := c.Do(ctx, cmd, params)
	if err != nil {
		return nil, err
	}
	return normalizeMarginOrderResult(body)
}

// GetMarginPosition returns the caller's margin position in one market.
func (c *Client) GetMarginPosition(ctx context.Context, pair string) (*core.MarginPosition, error) {
	if err := validatePair(pair); err != nil {
		return nil, err
	}
	body, err := c.Do(ctx, core.CmdGetMarginPosition, core.Params{"currencyPair": pair})
	if err != nil {
		return nil, err
	}
	return normalizeMarginPosition(body)
}

// CloseMarginPosition market-closes the caller's margin position in one
// market.
func (c *Client) CloseMarginPosition(ctx context.Context, pair string) (*core.CloseMarginResult, error) {
	if err := validatePair(pair); err != nil {
		return nil, err
	}
	body, err := c.Do(ctx, core.CmdCloseMarginPosition, core.Params{"currencyPair": pair})
	if err != nil {
		return nil, err
	}
	return normalizeCloseMarginResult(body)
}

// CreateLoanOffer offers funds on the lending market. Duration is in
// days (2 to 60).
func (c *Client) CreateLoanOffer(ctx context.Context, currency, amount, rate string, duration int, autoRenew bool) (*core.LoanOfferResult, error) {
	body, err := c.Do(ctx, core.CmdCreateLoanOffer, core.Params{
		"currency":    currency,
		"amount":      amount,
		"lendingRate": rate,
		"duration":    duration,
		"autoRenew":   autoRenew,
	})
	if err != nil {
		return nil, err
	}
	return normalizeLoanOfferResult(body)
}

// CancelLoanOffer cancels a resting loan offer.
func (c *Client) CancelLoanOffer(ctx context.Context, orderID int64) (*core.SuccessResult, error) {
	body, err := c.Do(ctx, core.CmdCancelLoanOffer, core.Params{"orderNumber": orderID})
	if err != nil {
		return nil, err
	}
	return normalizeSuccessResult(body)
}

// OpenLoanOffers returns the caller's resting loan offers by currency.
func (c *Client) OpenLoanOffers(ctx context.Context) (core.OpenLoanOffers, error) {
	body, err := c.Do(ctx, core.CmdOpenLoanOffers, core.Params{})
	if err != nil {
		return nil, err
	}
	return normalizeOpenLoanOffers(body)
}

// ActiveLoans returns the caller's provided and used loans.
func (c *Client) ActiveLoans(ctx context.Context) (*core.ActiveLoans, error) {
	body, err := c.Do(ctx, core.CmdActiveLoans, core.Params{})
	if err != nil {
		return nil, err
	}
	return normalizeActiveLoans(body)
}

// LendingHistory returns closed lending entries. Without WithStart and
// WithEnd the last 30 days are returned.
func (c *Client) LendingHistory(ctx context.Context, opts ...RequestOption) ([]core.LendingEntry, error) {
	params := applyOptions(core.Params{}, opts)
	defaultRange(params, 30*24*time.Hour)
	body, err := c.Do(ctx, core.CmdLendingHistory, params)
	if err != nil {
		return nil, err
	}
	return normalizeLendingHistory(body)
}

// ToggleAutoRenew flips the auto-renew flag of an active loan. The result
// message carries the new flag value.
func (c *Client) ToggleAutoRenew(ctx context.Context, orderID int64) (*core.SuccessResult, error) {
	body, err := c.Do(ctx, core.CmdToggleAutoRenew, core.Params{"orderNumber": orderID})
	if err != nil {
		return nil, err
	}
	return normalizeSuccessResult(body)
}
