package core

import (
	"time"

	"github.com/cockroachdb/apd/v3"
)

// TradeType represents the direction of a trade or open order.
type TradeType int

const (
	// TradeBuy indicates a buy.
	TradeBuy TradeType = iota
	// TradeSell indicates a sell.
	TradeSell
)

// String returns "buy" or "sell" as the API spells it.
func (t TradeType) String() string {
	return [...]string{"buy", "sell"}[t]
}

// MarshalJSON implements json.Marshaler for TradeType.
func (t TradeType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for TradeType.
func (t *TradeType) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"buy"`, `"BUY"`:
		*t = TradeBuy
	case `"sell"`, `"SELL"`:
		*t = TradeSell
	}
	return nil
}

// TickerEntry is the ticker for a single market.
type TickerEntry struct {
	// ID is the numeric market id used by the push gateway.
	ID            int64       `json:"id"`
	Last          apd.Decimal `json:"last"`
	LowestAsk     apd.Decimal `json:"lowestAsk"`
	HighestBid    apd.Decimal `json:"highestBid"`
	PercentChange apd.Decimal `json:"percentChange"`
	BaseVolume    apd.Decimal `json:"baseVolume"`
	QuoteVolume   apd.Decimal `json:"quoteVolume"`
	IsFrozen      bool        `json:"isFrozen"`
	High24hr      apd.Decimal `json:"high24hr"`
	Low24hr       apd.Decimal `json:"low24hr"`
}

// Ticker maps currency pair to its ticker entry.
type Ticker map[string]TickerEntry

// Volume24 is the 24-hour volume report: per-pair volumes in both
// currencies plus per-currency totals (the totalXXX keys).
type Volume24 struct {
	Pairs  map[string]map[string]apd.Decimal `json:"pairs"`
	Totals map[string]apd.Decimal            `json:"totals"`
}

// OrderBookLevel is a single price level.
type OrderBookLevel struct {
	Price    apd.Decimal `json:"price"`
	Quantity apd.Decimal `json:"quantity"`
}

// OrderBook is the order book for one market, with the sequence number
// used by the push gateway and the frozen indicator.
type OrderBook struct {
	Asks     []OrderBookLevel `json:"asks"`
	Bids     []OrderBookLevel `json:"bids"`
	IsFrozen bool             `json:"isFrozen"`
	Seq      int64            `json:"seq"`
}

// Trade is a single public trade.
type Trade struct {
	GlobalTradeID int64       `json:"globalTradeID,omitempty"`
	TradeID       string      `json:"tradeID,omitempty"`
	Date          time.Time   `json:"date"`
	Type          TradeType   `json:"type"`
	Rate          apd.Decimal `json:"rate"`
	Amount        apd.Decimal `json:"amount"`
	Total         apd.Decimal `json:"total"`
}

// PrivateTrade is a trade from the caller's own history, carrying fee and
// order linkage.
type PrivateTrade struct {
	GlobalTradeID int64       `json:"globalTradeID"`
	TradeID       string      `json:"tradeID"`
	Date          time.Time   `json:"date"`
	Type          TradeType   `json:"type"`
	Rate          apd.Decimal `json:"rate"`
	Amount        apd.Decimal `json:"amount"`
	Total         apd.Decimal `json:"total"`
	Fee           apd.Decimal `json:"fee"`
	OrderNumber   string      `json:"orderNumber"`
	Category      string      `json:"category,omitempty"`
	CurrencyPair  string      `json:"currencyPair,omitempty"`
}

// Candle is a single candlestick data point.
type Candle struct {
	Date            time.Time   `json:"date"`
	High            apd.Decimal `json:"high"`
	Low             apd.Decimal `json:"low"`
	Open            apd.Decimal `json:"open"`
	Close           apd.Decimal `json:"close"`
	Volume          apd.Decimal `json:"volume"`
	QuoteVolume     apd.Decimal `json:"quoteVolume"`
	WeightedAverage apd.Decimal `json:"weightedAverage"`
}

// Currency describes a listed currency.
type Currency struct {
	ID                 int64       `json:"id"`
	Name               string      `json:"name"`
	TxFee              apd.Decimal `json:"txFee"`
	MinConf            int64       `json:"minConf"`
	DepositAddress     string      `json:"depositAddress,omitempty"`
	MaxDailyWithdrawal apd.Decimal `json:"maxDailyWithdrawal"`
	Disabled           bool        `json:"disabled"`
	Delisted           bool        `json:"delisted"`
	Frozen             bool        `json:"frozen"`
}

// LoanOrder is one entry in the lending order book.
type LoanOrder struct {
	Rate     apd.Decimal `json:"rate"`
	Amount   apd.Decimal `json:"amount"`
	RangeMin int64       `json:"rangeMin"`
	RangeMax int64       `json:"rangeMax"`
}

// LoanOrderBook holds loan offers and demands for a currency.
type LoanOrderBook struct {
	Offers  []LoanOrder `json:"offers"`
	Demands []LoanOrder `json:"demands"`
}

// Balances maps currency to available balance.
type Balances map[string]apd.Decimal

// CompleteBalance is the full balance breakdown for one currency.
type CompleteBalance struct {
	Available apd.Decimal `json:"available"`
	OnOrders  apd.Decimal `json:"onOrders"`
	BTCValue  apd.Decimal `json:"btcValue"`
}

// CompleteBalances maps currency to its balance breakdown.
type CompleteBalances map[string]CompleteBalance

// DepositAddresses maps currency to its deposit address.
type DepositAddresses map[string]string

// NewAddress is the result of generating a deposit address.
type NewAddress struct {
	Success  int    `json:"success"`
	Response string `json:"response"`
}

// Deposit is a single deposit record.
type Deposit struct {
	Currency      string      `json:"currency"`
	Address       string      `json:"address"`
	Amount        apd.Decimal `json:"amount"`
	Confirmations int64       `json:"confirmations"`
	TxID          string      `json:"txid"`
	Timestamp     time.Time   `json:"timestamp"`
	Status        string      `json:"status"`
}

// Withdrawal is a single withdrawal record.
type Withdrawal struct {
	WithdrawalNumber int64       `json:"withdrawalNumber"`
	Currency         string      `json:"currency"`
	Address          string      `json:"address"`
	Amount           apd.Decimal `json:"amount"`
	Timestamp        time.Time   `json:"timestamp"`
	Status           string      `json:"status"`
	IPAddress        string      `json:"ipAddress"`
}

// DepositsWithdrawals is the combined transfer history.
type DepositsWithdrawals struct {
	Deposits    []Deposit    `json:"deposits"`
	Withdrawals []Withdrawal `json:"withdrawals"`
}

// OpenOrder is one of the caller's resting orders.
type OpenOrder struct {
	OrderNumber string      `json:"orderNumber"`
	Type        TradeType   `json:"type"`
	Rate        apd.Decimal `json:"rate"`
	Amount      apd.Decimal `json:"amount"`
	Total       apd.Decimal `json:"total"`
	Margin      int64       `json:"margin,omitempty"`
}

// ResultingTrade is a fill produced immediately by a placed order.
type ResultingTrade struct {
	TradeID string      `json:"tradeID"`
	Date    time.Time   `json:"date"`
	Type    TradeType   `json:"type"`
	Rate    apd.Decimal `json:"rate"`
	Amount  apd.Decimal `json:"amount"`
	Total   apd.Decimal `json:"total"`
}

// OrderResult is returned by buy and sell.
type OrderResult struct {
	OrderNumber     string           `json:"orderNumber"`
	ResultingTrades []ResultingTrade `json:"resultingTrades"`
}

// MarginOrderResult is returned by marginBuy and marginSell; fills are
// keyed by currency pair.
type MarginOrderResult struct {
	Success         int                         `json:"success"`
	Message         string                      `json:"message"`
	OrderNumber     string                      `json:"orderNumber"`
	ResultingTrades map[string][]ResultingTrade `json:"resultingTrades"`
}

// MoveOrderResult is returned by moveOrder.
type MoveOrderResult struct {
	Success         int                         `json:"success"`
	OrderNumber     string                      `json:"orderNumber"`
	ResultingTrades map[string][]ResultingTrade `json:"resultingTrades"`
}

// SuccessResult is the generic success/message envelope several trading
// commands return.
type SuccessResult struct {
	Success int    `json:"success"`
	Message string `json:"message"`
}

// WithdrawResult is returned by withdraw.
type WithdrawResult struct {
	Response string `json:"response"`
}

// FeeInfo is the caller's fee schedule.
type FeeInfo struct {
	MakerFee        apd.Decimal `json:"makerFee"`
	TakerFee        apd.Decimal `json:"takerFee"`
	ThirtyDayVolume apd.Decimal `json:"thirtyDayVolume"`
	NextTier        apd.Decimal `json:"nextTier"`
}

// AccountBalances holds balances sorted by account.
type AccountBalances struct {
	Exchange Balances `json:"exchange,omitempty"`
	Margin   Balances `json:"margin,omitempty"`
	Lending  Balances `json:"lending,omitempty"`
}

// TradableBalances maps pair to the tradable amount of each side.
type TradableBalances map[string]Balances

// MarginSummary is the caller's margin account summary.
type MarginSummary struct {
	TotalValue         apd.Decimal `json:"totalValue"`
	PL                 apd.Decimal `json:"pl"`
	LendingFees        apd.Decimal `json:"lendingFees"`
	NetValue           apd.Decimal `json:"netValue"`
	TotalBorrowedValue apd.Decimal `json:"totalBorrowedValue"`
	CurrentMargin      apd.Decimal `json:"currentMargin"`
}

// MarginPosition describes the caller's position in one market.
// LiquidationPrice is -1 when there is no liquidation price.
type MarginPosition struct {
	Amount           apd.Decimal `json:"amount"`
	Total            apd.Decimal `json:"total"`
	BasePrice        apd.Decimal `json:"basePrice"`
	LiquidationPrice apd.Decimal `json:"liquidationPrice"`
	PL               apd.Decimal `json:"pl"`
	LendingFees      apd.Decimal `json:"lendingFees"`
	Type             string      `json:"type"`
}

// CloseMarginResult is returned by closeMarginPosition.
type CloseMarginResult struct {
	Success         int                         `json:"success"`
	Message         string                      `json:"message"`
	ResultingTrades map[string][]ResultingTrade `json:"resultingTrades"`
}

// LoanOfferResult is returned by createLoanOffer.
type LoanOfferResult struct {
	Success int    `json:"success"`
	Message string `json:"message"`
	OrderID int64  `json:"orderID"`
}

// OpenLoanOffer is one of the caller's resting loan offers.
type OpenLoanOffer struct {
	ID        int64       `json:"id"`
	Rate      apd.Decimal `json:"rate"`
	Amount    apd.Decimal `json:"amount"`
	Duration  int64       `json:"duration"`
	AutoRenew bool        `json:"autoRenew"`
	Date      time.Time   `json:"date"`
}

// OpenLoanOffers maps currency to the caller's resting loan offers.
type OpenLoanOffers map[string][]OpenLoanOffer

// ActiveLoan is a loan currently provided or used by the caller.
type ActiveLoan struct {
	ID        int64       `json:"id"`
	Currency  string      `json:"currency"`
	Rate      apd.Decimal `json:"rate"`
	Amount    apd.Decimal `json:"amount"`
	Range     int64       `json:"range"`
	AutoRenew bool        `json:"autoRenew"`
	Date      time.Time   `json:"date"`
	Fees      apd.Decimal `json:"fees"`
}

// ActiveLoans holds the caller's active loans by direction.
type ActiveLoans struct {
	Provided []ActiveLoan `json:"provided"`
	Used     []ActiveLoan `json:"used"`
}

// LendingEntry is one row of lending history.
type LendingEntry struct {
	ID       int64       `json:"id"`
	Currency string      `json:"currency"`
	Rate     apd.Decimal `json:"rate"`
	Amount   apd.Decimal `json:"amount"`
	Duration apd.Decimal `json:"duration"`
	Interest apd.Decimal `json:"interest"`
	Fee      apd.Decimal `json:"fee"`
	Earned   apd.Decimal `json:"earned"`
	Open     time.Time   `json:"open"`
	Close    time.Time   `json:"close"`
}

// TickerUpdate is a ticker frame from the push gateway. The numeric
// market ID is the only identifier on the wire; mapping it to a pair name
// is left to the caller (build the map from the REST Ticker command).
type TickerUpdate struct {
	ID            int64       `json:"id"`
	Last          apd.Decimal `json:"last"`
	LowestAsk     apd.Decimal `json:"lowestAsk"`
	HighestBid    apd.Decimal `json:"highestBid"`
	PercentChange apd.Decimal `json:"percentChange"`
	BaseVolume    apd.Decimal `json:"baseVolume"`
	QuoteVolume   apd.Decimal `json:"quoteVolume"`
	IsFrozen      bool        `json:"isFrozen"`
	High24hr      apd.Decimal `json:"high24hr"`
	Low24hr       apd.Decimal `json:"low24hr"`
}
