package core

// Command identifies a REST command on the exchange. Public commands go to
// the public endpoint as unauthenticated GETs; trading commands go to the
// trading endpoint as signed POSTs.
type Command int

// Public API commands.
const (
	CmdTicker Command = iota
	CmdVolume24
	CmdOrderBook
	CmdPublicTradeHistory
	CmdChartData
	CmdCurrencies
	CmdLoanOrders

	// Trading API commands.
	CmdBalances
	CmdCompleteBalances
	CmdDepositAddresses
	CmdGenerateNewAddress
	CmdDepositsWithdrawals
	CmdOpenOrders
	CmdTradeHistory
	CmdOrderTrades
	CmdBuy
	CmdSell
	CmdCancelOrder
	CmdMoveOrder
	CmdWithdraw
	CmdFeeInfo
	CmdAvailableAccountBalances
	CmdTradableBalances
	CmdTransferBalance
	CmdMarginAccountSummary
	CmdMarginBuy
	CmdMarginSell
	CmdGetMarginPosition
	CmdCloseMarginPosition
	CmdCreateLoanOffer
	CmdCancelLoanOffer
	CmdOpenLoanOffers
	CmdActiveLoans
	CmdLendingHistory
	CmdToggleAutoRenew
)

var commandNames = [...]string{
	"returnTicker",
	"return24hVolume",
	"returnOrderBook",
	"returnTradeHistory",
	"returnChartData",
	"returnCurrencies",
	"returnLoanOrders",
	"returnBalances",
	"returnCompleteBalances",
	"returnDepositAddresses",
	"generateNewAddress",
	"returnDepositsWithdrawals",
	"returnOpenOrders",
	"returnTradeHistory",
	"returnOrderTrades",
	"buy",
	"sell",
	"cancelOrder",
	"moveOrder",
	"withdraw",
	"returnFeeInfo",
	"returnAvailableAccountBalances",
	"returnTradableBalances",
	"transferBalance",
	"returnMarginAccountSummary",
	"marginBuy",
	"marginSell",
	"getMarginPosition",
	"closeMarginPosition",
	"createLoanOffer",
	"cancelLoanOffer",
	"returnOpenLoanOffers",
	"returnActiveLoans",
	"returnLendingHistory",
	"toggleAutoRenew",
}

// String returns the wire name of the command as it appears in the
// request's command parameter.
func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[c]
}

// Private reports whether the command requires a signed request against
// the trading endpoint.
func (c Command) Private() bool {
	return c >= CmdBalances
}
