package types

// TxnType is the direction of a trade or a MACD signal.
type TxnType string

const (
	TxnTypeBuy  TxnType = "buy"
	TxnTypeSell TxnType = "sell"
)

// ActionReason tags why the daily simulation issued an action.
type ActionReason string

const (
	ActionReasonInitial     ActionReason = "initial"
	ActionReasonFixedInvest ActionReason = "fixed_invest"
	ActionReasonStopProfit  ActionReason = "stop_profit"
	ActionReasonMacdBuy     ActionReason = "macd_buy"
)

// Action records a ledger mutation that actually happened.
type Action struct {
	Date string  `json:"date" yaml:"date"`
	Code string  `json:"code" yaml:"code"`
	Type TxnType `json:"type" yaml:"type"`
	// Amount is the cash spent for a buy or the proceeds of a sell.
	Amount float64 `json:"amount" yaml:"amount"`
	// Share is the number of shares bought or sold.
	Share float64 `json:"share" yaml:"share"`
	// Reason is only set by the daily simulation.
	Reason ActionReason `json:"reason,omitempty" yaml:"reason,omitempty"`
	// Nav is the price the daily simulation traded at.
	Nav float64 `json:"nav,omitempty" yaml:"nav,omitempty"`
}

// Cashflow is a trade cashflow. Buys are negative, sells positive.
// Idle cash is never recorded.
type Cashflow struct {
	Date string  `json:"date" yaml:"date"`
	Code string  `json:"code" yaml:"code"`
	Cash float64 `json:"cash" yaml:"cash"`
}
