package poloniex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"

	"poloniex/pkg/core"
)

// The exchange serializes most decimals as JSON strings but leaves some
// as bare numbers (chart data, order book quantities), and flips between
// "0"/"1" strings and plain ints for flags. The raw* structs mirror the
// wire shape; the normalize* functions convert them into the typed
// results in pkg/core.

const timeLayout = "2006-01-02 15:04:05"

// sonicUnmarshal decodes a response body whose wire shape already matches
// the typed result.
func sonicUnmarshal(data []byte, v any) error {
	if err := sonic.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseDecimal(s string) (apd.Decimal, error) {
	if s == "" {
		return apd.Decimal{}, nil
	}
	var d apd.Decimal
	if _, _, err := d.SetString(s); err != nil {
		return apd.Decimal{}, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d, nil
}

// rawString unwraps a JSON value that may arrive as a string or a bare
// literal. Nulls become the empty string.
func rawString(raw json.RawMessage) string {
	s := string(bytes.TrimSpace(raw))
	if s == "" || s == "null" {
		return ""
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// rawDecimal parses a decimal that may be quoted or bare on the wire.
func rawDecimal(raw json.RawMessage) (apd.Decimal, error) {
	return parseDecimal(rawString(raw))
}

// rawBool interprets the flag encodings the exchange uses: "0"/"1"
// strings, bare 0/1, and real booleans.
func rawBool(raw json.RawMessage) bool {
	switch rawString(raw) {
	case "1", "true":
		return true
	default:
		return false
	}
}

func rawInt(raw json.RawMessage) int64 {
	n, _ := strconv.ParseInt(rawString(raw), 10, 64)
	return n
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func parseTradeType(s string) core.TradeType {
	if strings.EqualFold(s, "sell") {
		return core.TradeSell
	}
	return core.TradeBuy
}

type rawTickerEntry struct {
	ID            int64           `json:"id"`
	Last          string          `json:"last"`
	LowestAsk     string          `json:"lowestAsk"`
	HighestBid    string          `json:"highestBid"`
	PercentChange string          `json:"percentChange"`
	BaseVolume    string          `json:"baseVolume"`
	QuoteVolume   string          `json:"quoteVolume"`
	IsFrozen      json.RawMessage `json:"isFrozen"`
	High24hr      string          `json:"high24hr"`
	Low24hr       string          `json:"low24hr"`
}

func normalizeTicker(data []byte) (core.Ticker, error) {
	var raw map[string]rawTickerEntry
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode ticker: %w", err)
	}

	ticker := make(core.Ticker, len(raw))
	for pair, entry := range raw {
		var (
			out core.TickerEntry
			err error
		)
		out.ID = entry.ID
		out.IsFrozen = rawBool(entry.IsFrozen)
		for _, field := range []struct {
			dst *apd.Decimal
			src string
		}{
			{&out.Last, entry.Last},
			{&out.LowestAsk, entry.LowestAsk},
			{&out.HighestBid, entry.HighestBid},
			{&out.PercentChange, entry.PercentChange},
			{&out.BaseVolume, entry.BaseVolume},
			{&out.QuoteVolume, entry.QuoteVolume},
			{&out.High24hr, entry.High24hr},
			{&out.Low24hr, entry.Low24hr},
		} {
			if *field.dst, err = parseDecimal(field.src); err != nil {
				return nil, fmt.Errorf("ticker %s: %w", pair, err)
			}
		}
		ticker[pair] = out
	}
	return ticker, nil
}

// normalizeVolume24 splits the flat volume payload into per-pair volumes
// (keys containing an underscore, each a two-currency map) and the
// per-currency totals (the totalXXX keys).
func normalizeVolume24(data []byte) (*core.Volume24, error) {
	var raw map[string]json.RawMessage
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode 24h volume: %w", err)
	}

	result := &core.Volume24{
		Pairs:  make(map[string]map[string]apd.Decimal),
		Totals: make(map[string]apd.Decimal),
	}
	for key, value := range raw {
		if strings.HasPrefix(key, "total") {
			total, err := rawDecimal(value)
			if err != nil {
				return nil, fmt.Errorf("24h volume %s: %w", key, err)
			}
			result.Totals[strings.TrimPrefix(key, "total")] = total
			continue
		}
		if !strings.Contains(key, "_") {
			continue
		}
		var volumes map[string]string
		if err := sonic.Unmarshal(value, &volumes); err != nil {
			return nil, fmt.Errorf("decode 24h volume %s: %w", key, err)
		}
		pair := make(map[string]apd.Decimal, len(volumes))
		for currency, amount := range volumes {
			d, err := parseDecimal(amount)
			if err != nil {
				return nil, fmt.Errorf("24h volume %s/%s: %w", key, currency, err)
			}
			pair[currency] = d
		}
		result.Pairs[key] = pair
	}
	return result, nil
}

type rawOrderBook struct {
	Asks     [][]json.RawMessage `json:"asks"`
	Bids     [][]json.RawMessage `json:"bids"`
	IsFrozen json.RawMessage     `json:"isFrozen"`
	Seq      int64               `json:"seq"`
}

// Order book levels arrive as two-element arrays mixing a quoted price
// with a bare quantity, e.g. ["0.00007600",1164].
func normalizeBookLevels(levels [][]json.RawMessage) ([]core.OrderBookLevel, error) {
	out := make([]core.OrderBookLevel, 0, len(levels))
	for _, level := range levels {
		if len(level) != 2 {
			return nil, fmt.Errorf("order book level has %d elements", len(level))
		}
		price, err := rawDecimal(level[0])
		if err != nil {
			return nil, fmt.Errorf("order book price: %w", err)
		}
		quantity, err := rawDecimal(level[1])
		if err != nil {
			return nil, fmt.Errorf("order book quantity: %w", err)
		}
		out = append(out, core.OrderBookLevel{Price: price, Quantity: quantity})
	}
	return out, nil
}

func (r *rawOrderBook) toOrderBook() (*core.OrderBook, error) {
	asks, err := normalizeBookLevels(r.Asks)
	if err != nil {
		return nil, err
	}
	bids, err := normalizeBookLevels(r.Bids)
	if err != nil {
		return nil, err
	}
	return &core.OrderBook{
		Asks:     asks,
		Bids:     bids,
		IsFrozen: rawBool(r.IsFrozen),
		Seq:      r.Seq,
	}, nil
}

func normalizeOrderBook(data []byte) (*core.OrderBook, error) {
	var raw rawOrderBook
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode order book: %w", err)
	}
	return raw.toOrderBook()
}

func normalizeAllOrderBooks(data []byte) (map[string]*core.OrderBook, error) {
	var raw map[string]rawOrderBook
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode order books: %w", err)
	}

	out := make(map[string]*core.OrderBook, len(raw))
	for pair, entry := range raw {
		book, err := entry.toOrderBook()
		if err != nil {
			return nil, fmt.Errorf("order book %s: %w", pair, err)
		}
		out[pair] = book
	}
	return out, nil
}

type rawTrade struct {
	GlobalTradeID int64           `json:"globalTradeID"`
	TradeID       json.RawMessage `json:"tradeID"`
	Date          string          `json:"date"`
	Type          string          `json:"type"`
	Rate          string          `json:"rate"`
	Amount        string          `json:"amount"`
	Total         string          `json:"total"`
	Fee           string          `json:"fee"`
	OrderNumber   json.RawMessage `json:"orderNumber"`
	Category      string          `json:"category"`
	CurrencyPair  string          `json:"currencyPair"`
}

func (r *rawTrade) toTrade() (core.Trade, error) {
	var (
		out core.Trade
		err error
	)
	out.GlobalTradeID = r.GlobalTradeID
	out.TradeID = rawString(r.TradeID)
	out.Type = parseTradeType(r.Type)
	if out.Date, err = parseTime(r.Date); err != nil {
		return out, err
	}
	if out.Rate, err = parseDecimal(r.Rate); err != nil {
		return out, err
	}
	if out.Amount, err = parseDecimal(r.Amount); err != nil {
		return out, err
	}
	out.Total, err = parseDecimal(r.Total)
	return out, err
}

func (r *rawTrade) toPrivateTrade() (core.PrivateTrade, error) {
	trade, err := r.toTrade()
	if err != nil {
		return core.PrivateTrade{}, err
	}
	fee, err := parseDecimal(r.Fee)
	if err != nil {
		return core.PrivateTrade{}, err
	}
	return core.PrivateTrade{
		GlobalTradeID: trade.GlobalTradeID,
		TradeID:       trade.TradeID,
		Date:          trade.Date,
		Type:          trade.Type,
		Rate:          trade.Rate,
		Amount:        trade.Amount,
		Total:         trade.Total,
		Fee:           fee,
		OrderNumber:   rawString(r.OrderNumber),
		Category:      r.Category,
		CurrencyPair:  r.CurrencyPair,
	}, nil
}

func normalizeTrades(data []byte) ([]core.Trade, error) {
	var raw []rawTrade
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	out := make([]core.Trade, 0, len(raw))
	for i := range raw {
		trade, err := raw[i].toTrade()
		if err != nil {
			return nil, fmt.Errorf("trade %d: %w", i, err)
		}
		out = append(out, trade)
	}
	return out, nil
}

func normalizePrivateTrades(data []byte) ([]core.PrivateTrade, error) {
	var raw []rawTrade
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	out := make([]core.PrivateTrade, 0, len(raw))
	for i := range raw {
		trade, err := raw[i].toPrivateTrade()
		if err != nil {
			return nil, fmt.Errorf("trade %d: %w", i, err)
		}
		out = append(out, trade)
	}
	return out, nil
}

func normalizeAllPrivateTrades(data []byte) (map[string][]core.PrivateTrade, error) {
	var raw map[string][]rawTrade
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	out := make(map[string][]core.PrivateTrade, len(raw))
	for pair, trades := range raw {
		converted := make([]core.PrivateTrade, 0, len(trades))
		for i := range trades {
			trade, err := trades[i].toPrivateTrade()
			if err != nil {
				return nil, fmt.Errorf("trade %s/%d: %w", pair, i, err)
			}
			converted = append(converted, trade)
		}
		out[pair] = converted
	}
	return out, nil
}

type rawCandle struct {
	Date            int64           `json:"date"`
	High            json.RawMessage `json:"high"`
	Low             json.RawMessage `json:"low"`
	Open            json.RawMessage `json:"open"`
	Close           json.RawMessage `json:"close"`
	Volume          json.RawMessage `json:"volume"`
	QuoteVolume     json.RawMessage `json:"quoteVolume"`
	WeightedAverage json.RawMessage `json:"weightedAverage"`
}

func normalizeCandles(data []byte) ([]core.Candle, error) {
	var raw []rawCandle
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode chart data: %w", err)
	}

	out := make([]core.Candle, 0, len(raw))
	for i, entry := range raw {
		var (
			candle core.Candle
			err    error
		)
		candle.Date = time.Unix(entry.Date, 0).UTC()
		for _, field := range []struct {
			dst *apd.Decimal
			src json.RawMessage
		}{
			{&candle.High, entry.High},
			{&candle.Low, entry.Low},
			{&candle.Open, entry.Open},
			{&candle.Close, entry.Close},
			{&candle.Volume, entry.Volume},
			{&candle.QuoteVolume, entry.QuoteVolume},
			{&candle.WeightedAverage, entry.WeightedAverage},
		} {
			if *field.dst, err = rawDecimal(field.src); err != nil {
				return nil, fmt.Errorf("candle %d: %w", i, err)
			}
		}
		out = append(out, candle)
	}
	return out, nil
}

type rawCurrency struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	TxFee              json.RawMessage `json:"txFee"`
	MinConf            int64           `json:"minConf"`
	DepositAddress     json.RawMessage `json:"depositAddress"`
	MaxDailyWithdrawal json.RawMessage `json:"maxDailyWithdrawal"`
	Disabled           json.RawMessage `json:"disabled"`
	Delisted           json.RawMessage `json:"delisted"`
	Frozen             json.RawMessage `json:"frozen"`
}

func normalizeCurrencies(data []byte) (map[string]core.Currency, error) {
	var raw map[string]rawCurrency
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode currencies: %w", err)
	}

	out := make(map[string]core.Currency, len(raw))
	for code, entry := range raw {
		txFee, err := rawDecimal(entry.TxFee)
		if err != nil {
			return nil, fmt.Errorf("currency %s: %w", code, err)
		}
		maxDaily, err := rawDecimal(entry.MaxDailyWithdrawal)
		if err != nil {
			return nil, fmt.Errorf("currency %s: %w", code, err)
		}
		out[code] = core.Currency{
			ID:                 entry.ID,
			Name:               entry.Name,
			TxFee:              txFee,
			MinConf:            entry.MinConf,
			DepositAddress:     rawString(entry.DepositAddress),
			MaxDailyWithdrawal: maxDaily,
			Disabled:           rawBool(entry.Disabled),
			Delisted:           rawBool(entry.Delisted),
			Frozen:             rawBool(entry.Frozen),
		}
	}
	return out, nil
}

type rawLoanOrder struct {
	Rate     string `json:"rate"`
	Amount   string `json:"amount"`
	RangeMin int64  `json:"rangeMin"`
	RangeMax int64  `json:"rangeMax"`
}

func normalizeLoanOrderSide(raw []rawLoanOrder) ([]core.LoanOrder, error) {
	out := make([]core.LoanOrder, 0, len(raw))
	for i, entry := range raw {
		rate, err := parseDecimal(entry.Rate)
		if err != nil {
			return nil, fmt.Errorf("loan order %d: %w", i, err)
		}
		amount, err := parseDecimal(entry.Amount)
		if err != nil {
			return nil, fmt.Errorf("loan order %d: %w", i, err)
		}
		out = append(out, core.LoanOrder{
			Rate:     rate,
			Amount:   amount,
			RangeMin: entry.RangeMin,
			RangeMax: entry.RangeMax,
		})
	}
	return out, nil
}

func normalizeLoanOrderBook(data []byte) (*core.LoanOrderBook, error) {
	var raw struct {
		Offers  []rawLoanOrder `json:"offers"`
		Demands []rawLoanOrder `json:"demands"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode loan orders: %w", err)
	}

	offers, err := normalizeLoanOrderSide(raw.Offers)
	if err != nil {
		return nil, err
	}
	demands, err := normalizeLoanOrderSide(raw.Demands)
	if err != nil {
		return nil, err
	}
	return &core.LoanOrderBook{Offers: offers, Demands: demands}, nil
}

func normalizeBalances(data []byte) (core.Balances, error) {
	var raw map[string]string
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode balances: %w", err)
	}

	out := make(core.Balances, len(raw))
	for currency, amount := range raw {
		d, err := parseDecimal(amount)
		if err != nil {
			return nil, fmt.Errorf("balance %s: %w", currency, err)
		}
		out[currency] = d
	}
	return out, nil
}

type rawCompleteBalance struct {
	Available string `json:"available"`
	OnOrders  string `json:"onOrders"`
	BTCValue  string `json:"btcValue"`
}

func normalizeCompleteBalances(data []byte) (core.CompleteBalances, error) {
	var raw map[string]rawCompleteBalance
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode complete balances: %w", err)
	}

	out := make(core.CompleteBalances, len(raw))
	for currency, entry := range raw {
		available, err := parseDecimal(entry.Available)
		if err != nil {
			return nil, fmt.Errorf("balance %s: %w", currency, err)
		}
		onOrders, err := parseDecimal(entry.OnOrders)
		if err != nil {
			return nil, fmt.Errorf("balance %s: %w", currency, err)
		}
		btcValue, err := parseDecimal(entry.BTCValue)
		if err != nil {
			return nil, fmt.Errorf("balance %s: %w", currency, err)
		}
		out[currency] = core.CompleteBalance{
			Available: available,
			OnOrders:  onOrders,
			BTCValue:  btcValue,
		}
	}
	return out, nil
}

type rawDeposit struct {
	Currency      string `json:"currency"`
	Address       string `json:"address"`
	Amount        string `json:"amount"`
	Confirmations int64  `json:"confirmations"`
	TxID          string `json:"txid"`
	Timestamp     int64  `json:"timestamp"`
	Status        string `json:"status"`
}

type rawWithdrawal struct {
	WithdrawalNumber int64  `json:"withdrawalNumber"`
	Currency         string `json:"currency"`
	Address          string `json:"address"`
	Amount           string `json:"amount"`
	Timestamp        int64  `json:"timestamp"`
	Status           string `json:"status"`
	IPAddress        string `json:"ipAddress"`
}

func normalizeDepositsWithdrawals(data []byte) (*core.DepositsWithdrawals, error) {
	var raw struct {
		Deposits    []rawDeposit    `json:"deposits"`
		Withdrawals []rawWithdrawal `json:"withdrawals"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode deposits/withdrawals: %w", err)
	}

	result := &core.DepositsWithdrawals{
		Deposits:    make([]core.Deposit, 0, len(raw.Deposits)),
		Withdrawals: make([]core.Withdrawal, 0, len(raw.Withdrawals)),
	}
	for i, entry := range raw.Deposits {
		amount, err := parseDecimal(entry.Amount)
		if err != nil {
			return nil, fmt.Errorf("deposit %d: %w", i, err)
		}
		result.Deposits = append(result.Deposits, core.Deposit{
			Currency:      entry.Currency,
			Address:       entry.Address,
			Amount:        amount,
			Confirmations: entry.Confirmations,
			TxID:          entry.TxID,
			Timestamp:     time.Unix(entry.Timestamp, 0).UTC(),
			Status:        entry.Status,
		})
	}
	for i, entry := range raw.Withdrawals {
		amount, err := parseDecimal(entry.Amount)
		if err != nil {
			return nil, fmt.Errorf("withdrawal %d: %w", i, err)
		}
		result.Withdrawals = append(result.Withdrawals, core.Withdrawal{
			WithdrawalNumber: entry.WithdrawalNumber,
			Currency:         entry.Currency,
			Address:          entry.Address,
			Amount:           amount,
			Timestamp:        time.Unix(entry.Timestamp, 0).UTC(),
			Status:           entry.Status,
			IPAddress:        entry.IPAddress,
		})
	}
	return result, nil
}

type rawOpenOrder struct {
	OrderNumber json.RawMessage `json:"orderNumber"`
	Type        string          `json:"type"`
	Rate        string          `json:"rate"`
	Amount      string          `json:"amount"`
	Total       string          `json:"total"`
	Margin      int64           `json:"margin"`
}

func (r *rawOpenOrder) toOpenOrder() (core.OpenOrder, error) {
	var (
		out core.OpenOrder
		err error
	)
	out.OrderNumber = rawString(r.OrderNumber)
	out.Type = parseTradeType(r.Type)
	out.Margin = r.Margin
	if out.Rate, err = parseDecimal(r.Rate); err != nil {
		return out, err
	}
	if out.Amount, err = parseDecimal(r.Amount); err != nil {
		return out, err
	}
	out.Total, err = parseDecimal(r.Total)
	return out, err
}

func normalizeOpenOrders(data []byte) ([]core.OpenOrder, error) {
	var raw []rawOpenOrder
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode open orders: %w", err)
	}
	out := make([]core.OpenOrder, 0, len(raw))
	for i := range raw {
		order, err := raw[i].toOpenOrder()
		if err != nil {
			return nil, fmt.Errorf("open order %d: %w", i, err)
		}
		out = append(out, order)
	}
	return out, nil
}

func normalizeAllOpenOrders(data []byte) (map[string][]core.OpenOrder, error) {
	var raw map[string][]rawOpenOrder
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode open orders: %w", err)
	}
	out := make(map[string][]core.OpenOrder, len(raw))
	for pair, orders := range raw {
		converted := make([]core.OpenOrder, 0, len(orders))
		for i := range orders {
			order, err := orders[i].toOpenOrder()
			if err != nil {
				return nil, fmt.Errorf("open order %s/%d: %w", pair, i, err)
			}
			converted = append(converted, order)
		}
		out[pair] = converted
	}
	return out, nil
}

type rawResultingTrade struct {
	TradeID json.RawMessage `json:"tradeID"`
	Date    string          `json:"date"`
	Type    string          `json:"type"`
	Rate    string          `json:"rate"`
	Amount  string          `json:"amount"`
	Total   string          `json:"total"`
}

func (r *rawResultingTrade) toResultingTrade() (core.ResultingTrade, error) {
	var (
		out core.ResultingTrade
		err error
	)
	out.TradeID = rawString(r.TradeID)
	out.Type = parseTradeType(r.Type)
	if out.Date, err = parseTime(r.Date); err != nil {
		return out, err
	}
	if out.Rate, err = parseDecimal(r.Rate); err != nil {
		return out, err
	}
	if out.Amount, err = parseDecimal(r.Amount); err != nil {
		return out, err
	}
	out.Total, err = parseDecimal(r.Total)
	return out, err
}

func normalizeResultingTrades(raw []rawResultingTrade) ([]core.ResultingTrade, error) {
	out := make([]core.ResultingTrade, 0, len(raw))
	for i := range raw {
		trade, err := raw[i].toResultingTrade()
		if err != nil {
			return nil, fmt.Errorf("resulting trade %d: %w", i, err)
		}
		out = append(out, trade)
	}
	return out, nil
}

func normalizeResultingTradeMap(raw map[string][]rawResultingTrade) (map[string][]core.ResultingTrade, error) {
	out := make(map[string][]core.ResultingTrade, len(raw))
	for pair, trades := range raw {
		converted, err := normalizeResultingTrades(trades)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pair, err)
		}
		out[pair] = converted
	}
	return out, nil
}

func normalizeOrderResult(data []byte) (*core.OrderResult, error) {
	var raw struct {
		OrderNumber     json.RawMessage     `json:"orderNumber"`
		ResultingTrades []rawResultingTrade `json:"resultingTrades"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode order result: %w", err)
	}

	trades, err := normalizeResultingTrades(raw.ResultingTrades)
	if err != nil {
		return nil, err
	}
	return &core.OrderResult{
		OrderNumber:     rawString(raw.OrderNumber),
		ResultingTrades: trades,
	}, nil
}

func normalizeMarginOrderResult(data []byte) (*core.MarginOrderResult, error) {
	var raw struct {
		Success         int                            `json:"success"`
		Message         string                         `json:"message"`
		OrderNumber     json.RawMessage                `json:"orderNumber"`
		ResultingTrades map[string][]rawResultingTrade `json:"resultingTrades"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode margin order result: %w", err)
	}

	trades, err := normalizeResultingTradeMap(raw.ResultingTrades)
	if err != nil {
		return nil, err
	}
	return &core.MarginOrderResult{
		Success:         raw.Success,
		Message:         raw.Message,
		OrderNumber:     rawString(raw.OrderNumber),
		ResultingTrades: trades,
	}, nil
}

func normalizeMoveOrderResult(data []byte) (*core.MoveOrderResult, error) {
	var raw struct {
		Success         int                            `json:"success"`
		OrderNumber     json.RawMessage                `json:"orderNumber"`
		ResultingTrades map[string][]rawResultingTrade `json:"resultingTrades"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode move order result: %w", err)
	}

	trades, err := normalizeResultingTradeMap(raw.ResultingTrades)
	if err != nil {
		return nil, err
	}
	return &core.MoveOrderResult{
		Success:         raw.Success,
		OrderNumber:     rawString(raw.OrderNumber),
		ResultingTrades: trades,
	}, nil
}

// normalizeSuccessResult tolerates the message field arriving as a string
// or a bare number (toggleAutoRenew reports the new flag there).
func normalizeSuccessResult(data []byte) (*core.SuccessResult, error) {
	var raw struct {
		Success int             `json:"success"`
		Message json.RawMessage `json:"message"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &core.SuccessResult{
		Success: raw.Success,
		Message: rawString(raw.Message),
	}, nil
}

func normalizeFeeInfo(data []byte) (*core.FeeInfo, error) {
	var raw struct {
		MakerFee        string          `json:"makerFee"`
		TakerFee        string          `json:"takerFee"`
		ThirtyDayVolume string          `json:"thirtyDayVolume"`
		NextTier        json.RawMessage `json:"nextTier"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode fee info: %w", err)
	}

	var (
		out core.FeeInfo
		err error
	)
	if out.MakerFee, err = parseDecimal(raw.MakerFee); err != nil {
		return nil, err
	}
	if out.TakerFee, err = parseDecimal(raw.TakerFee); err != nil {
		return nil, err
	}
	if out.ThirtyDayVolume, err = parseDecimal(raw.ThirtyDayVolume); err != nil {
		return nil, err
	}
	if out.NextTier, err = rawDecimal(raw.NextTier); err != nil {
		return nil, err
	}
	return &out, nil
}

func normalizeAccountBalances(data []byte) (*core.AccountBalances, error) {
	var raw map[string]map[string]string
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode account balances: %w", err)
	}

	out := &core.AccountBalances{}
	for account, balances := range raw {
		converted := make(core.Balances, len(balances))
		for currency, amount := range balances {
			d, err := parseDecimal(amount)
			if err != nil {
				return nil, fmt.Errorf("balance %s/%s: %w", account, currency, err)
			}
			converted[currency] = d
		}
		switch account {
		case core.AccountExchange.String():
			out.Exchange = converted
		case core.AccountMargin.String():
			out.Margin = converted
		case core.AccountLending.String():
			out.Lending = converted
		}
	}
	return out, nil
}

func normalizeTradableBalances(data []byte) (core.TradableBalances, error) {
	var raw map[string]map[string]string
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode tradable balances: %w", err)
	}

	out := make(core.TradableBalances, len(raw))
	for pair, balances := range raw {
		converted := make(core.Balances, len(balances))
		for currency, amount := range balances {
			d, err := parseDecimal(amount)
			if err != nil {
				return nil, fmt.Errorf("balance %s/%s: %w", pair, currency, err)
			}
			converted[currency] = d
		}
		out[pair] = converted
	}
	return out, nil
}

func normalizeMarginSummary(data []byte) (*core.MarginSummary, error) {
	var raw struct {
		TotalValue         string `json:"totalValue"`
		PL                 string `json:"pl"`
		LendingFees        string `json:"lendingFees"`
		NetValue           string `json:"netValue"`
		TotalBorrowedValue string `json:"totalBorrowedValue"`
		CurrentMargin      string `json:"currentMargin"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode margin summary: %w", err)
	}

	var (
		out core.MarginSummary
		err error
	)
	for _, field := range []struct {
		dst *apd.Decimal
		src string
	}{
		{&out.TotalValue, raw.TotalValue},
		{&out.PL, raw.PL},
		{&out.LendingFees, raw.LendingFees},
		{&out.NetValue, raw.NetValue},
		{&out.TotalBorrowedValue, raw.TotalBorrowedValue},
		{&out.CurrentMargin, raw.CurrentMargin},
	} {
		if *field.dst, err = parseDecimal(field.src); err != nil {
			return nil, fmt.Errorf("margin summary: %w", err)
		}
	}
	return &out, nil
}

func normalizeMarginPosition(data []byte) (*core.MarginPosition, error) {
	var raw struct {
		Amount           string          `json:"amount"`
		Total            string          `json:"total"`
		BasePrice        string          `json:"basePrice"`
		LiquidationPrice json.RawMessage `json:"liquidationPrice"`
		PL               string          `json:"pl"`
		LendingFees      string          `json:"lendingFees"`
		Type             string          `json:"type"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode margin position: %w", err)
	}

	var (
		out core.MarginPosition
		err error
	)
	out.Type = raw.Type
	if out.Amount, err = parseDecimal(raw.Amount); err != nil {
		return nil, err
	}
	if out.Total, err = parseDecimal(raw.Total); err != nil {
		return nil, err
	}
	if out.BasePrice, err = parseDecimal(raw.BasePrice); err != nil {
		return nil, err
	}
	if out.LiquidationPrice, err = rawDecimal(raw.LiquidationPrice); err != nil {
		return nil, err
	}
	if out.PL, err = parseDecimal(raw.PL); err != nil {
		return nil, err
	}
	if out.LendingFees, err = parseDecimal(raw.LendingFees); err != nil {
		return nil, err
	}
	return &out, nil
}

func normalizeCloseMarginResult(data []byte) (*core.CloseMarginResult, error) {
	var raw struct {
		Success         int                            `json:"success"`
		Message         string                         `json:"message"`
		ResultingTrades map[string][]rawResultingTrade `json:"resultingTrades"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode close margin result: %w", err)
	}

	trades, err := normalizeResultingTradeMap(raw.ResultingTrades)
	if err != nil {
		return nil, err
	}
	return &core.CloseMarginResult{
		Success:         raw.Success,
		Message:         raw.Message,
		ResultingTrades: trades,
	}, nil
}

type rawOpenLoanOffer struct {
	ID        int64           `json:"id"`
	Rate      string          `json:"rate"`
	Amount    string          `json:"amount"`
	Duration  int64           `json:"duration"`
	AutoRenew json.RawMessage `json:"autoRenew"`
	Date      string          `json:"date"`
}

func normalizeOpenLoanOffers(data []byte) (core.OpenLoanOffers, error) {
	var raw map[string][]rawOpenLoanOffer
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode open loan offers: %w", err)
	}

	out := make(core.OpenLoanOffers, len(raw))
	for currency, offers := range raw {
		converted := make([]core.OpenLoanOffer, 0, len(offers))
		for i, entry := range offers {
			rate, err := parseDecimal(entry.Rate)
			if err != nil {
				return nil, fmt.Errorf("loan offer %s/%d: %w", currency, i, err)
			}
			amount, err := parseDecimal(entry.Amount)
			if err != nil {
				return nil, fmt.Errorf("loan offer %s/%d: %w", currency, i, err)
			}
			date, err := parseTime(entry.Date)
			if err != nil {
				return nil, fmt.Errorf("loan offer %s/%d: %w", currency, i, err)
			}
			converted = append(converted, core.OpenLoanOffer{
				ID:        entry.ID,
				Rate:      rate,
				Amount:    amount,
				Duration:  entry.Duration,
				AutoRenew: rawBool(entry.AutoRenew),
				Date:      date,
			})
		}
		out[currency] = converted
	}
	return out, nil
}

type rawActiveLoan struct {
	ID        int64           `json:"id"`
	Currency  string          `json:"currency"`
	Rate      string          `json:"rate"`
	Amount    string          `json:"amount"`
	Range     int64           `json:"range"`
	AutoRenew json.RawMessage `json:"autoRenew"`
	Date      string          `json:"date"`
	Fees      string          `json:"fees"`
}

func normalizeActiveLoanSide(raw []rawActiveLoan) ([]core.ActiveLoan, error) {
	out := make([]core.ActiveLoan, 0, len(raw))
	for i, entry := range raw {
		rate, err := parseDecimal(entry.Rate)
		if err != nil {
			return nil, fmt.Errorf("loan %d: %w", i, err)
		}
		amount, err := parseDecimal(entry.Amount)
		if err != nil {
			return nil, fmt.Errorf("loan %d: %w", i, err)
		}
		fees, err := parseDecimal(entry.Fees)
		if err != nil {
			return nil, fmt.Errorf("loan %d: %w", i, err)
		}
		date, err := parseTime(entry.Date)
		if err != nil {
			return nil, fmt.Errorf("loan %d: %w", i, err)
		}
		out = append(out, core.ActiveLoan{
			ID:        entry.ID,
			Currency:  entry.Currency,
			Rate:      rate,
			Amount:    amount,
			Range:     entry.Range,
			AutoRenew: rawBool(entry.AutoRenew),
			Date:      date,
			Fees:      fees,
		})
	}
	return out, nil
}

func normalizeActiveLoans(data []byte) (*core.ActiveLoans, error) {
	var raw struct {
		Provided []rawActiveLoan `json:"provided"`
		Used     []rawActiveLoan `json:"used"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode active loans: %w", err)
	}

	provided, err := normalizeActiveLoanSide(raw.Provided)
	if err != nil {
		return nil, err
	}
	used, err := normalizeActiveLoanSide(raw.Used)
	if err != nil {
		return nil, err
	}
	return &core.ActiveLoans{Provided: provided, Used: used}, nil
}

type rawLendingEntry struct {
	ID       int64  `json:"id"`
	Currency string `json:"currency"`
	Rate     string `json:"rate"`
	Amount   string `json:"amount"`
	Duration string `json:"duration"`
	Interest string `json:"interest"`
	Fee      string `json:"fee"`
	Earned   string `json:"earned"`
	Open     string `json:"open"`
	Close    string `json:"close"`
}

func normalizeLendingHistory(data []byte) ([]core.LendingEntry, error) {
	var raw []rawLendingEntry
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode lending history: %w", err)
	}

	out := make([]core.LendingEntry, 0, len(raw))
	for i, entry := range raw {
		var (
			row core.LendingEntry
			err error
		)
		row.ID = entry.ID
		row.Currency = entry.Currency
		for _, field := range []struct {
			dst *apd.Decimal
			src string
		}{
			{&row.Rate, entry.Rate},
			{&row.Amount, entry.Amount},
			{&row.Duration, entry.Duration},
			{&row.Interest, entry.Interest},
			{&row.Fee, entry.Fee},
			{&row.Earned, entry.Earned},
		} {
			if *field.dst, err = parseDecimal(field.src); err != nil {
				return nil, fmt.Errorf("lending entry %d: %w", i, err)
			}
		}
		if row.Open, err = parseTime(entry.Open); err != nil {
			return nil, fmt.Errorf("lending entry %d: %w", i, err)
		}
		if row.Close, err = parseTime(entry.Close); err != nil {
			return nil, fmt.Errorf("lending entry %d: %w", i, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func normalizeLoanOfferResult(data []byte) (*core.LoanOfferResult, error) {
	var raw struct {
		Success int             `json:"success"`
		Message string          `json:"message"`
		OrderID json.RawMessage `json:"orderID"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode loan offer result: %w", err)
	}
	return &core.LoanOfferResult{
		Success: raw.Success,
		Message: raw.Message,
		OrderID: rawInt(raw.OrderID),
	}, nil
}
