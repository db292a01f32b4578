package poloniex

import (
	"time"

	"poloniex/pkg/core"
)

// RequestOption customizes the optional parameters of a command.
type RequestOption func(core.Params)

// WithStart limits a history query to entries at or after t.
func WithStart(t time.Time) RequestOption {
	return func(p core.Params) {
		p.Set("start", t.Unix())
	}
}

// WithEnd limits a history query to entries at or before t.
func WithEnd(t time.Time) RequestOption {
	return func(p core.Params) {
		p.Set("end", t.Unix())
	}
}

// WithLimit caps the number of rows returned by a history query.
func WithLimit(limit int) RequestOption {
	return func(p core.Params) {
		p.Set("limit", limit)
	}
}

// WithDepth limits the number of order book levels per side.
func WithDepth(depth int) RequestOption {
	return func(p core.Params) {
		p.Set("depth", depth)
	}
}

// WithAccount selects the account a balance or transfer command acts on.
func WithAccount(account core.Account) RequestOption {
	return func(p core.Params) {
		p.Set("account", account.String())
	}
}

// WithPaymentID attaches a payment id / memo to a withdrawal, required by
// some currencies.
func WithPaymentID(paymentID string) RequestOption {
	return func(p core.Params) {
		p.Set("paymentId", paymentID)
	}
}

// WithFillOrKill makes an order fill entirely or cancel.
func WithFillOrKill() RequestOption {
	return func(p core.Params) {
		p.Set("fillOrKill", true)
	}
}

// WithImmediateOrCancel makes an order fill what it can and cancel the rest.
func WithImmediateOrCancel() RequestOption {
	return func(p core.Params) {
		p.Set("immediateOrCancel", true)
	}
}

// WithPostOnly makes an order rest on the book or cancel; it never takes.
func WithPostOnly() RequestOption {
	return func(p core.Params) {
		p.Set("postOnly", true)
	}
}

// WithLendingRate sets the maximum lending rate a margin order may borrow at.
func WithLendingRate(rate string) RequestOption {
	return func(p core.Params) {
		p.Set("lendingRate", rate)
	}
}

// WithAmount overrides the amount moved when repositioning an order.
func WithAmount(amount string) RequestOption {
	return func(p core.Params) {
		p.Set("amount", amount)
	}
}

func applyOptions(params core.Params, opts []RequestOption) core.Params {
	for _, opt := range opts {
		opt(params)
	}
	return params
}
