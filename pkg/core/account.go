package core

// Account represents one of the exchange's balance accounts.
type Account int

// Account constants define where funds live on the exchange.
const (
	// AccountExchange is the default spot trading account.
	AccountExchange Account = iota
	// AccountMargin holds collateral for margin positions.
	AccountMargin
	// AccountLending holds funds offered as loans.
	AccountLending
	// AccountAll selects every account where a command accepts it.
	AccountAll
)

// String returns the account name as the API expects it.
func (a Account) String() string {
	return [...]string{
		"exchange",
		"margin",
		"lending",
		"all",
	}[a]
}
