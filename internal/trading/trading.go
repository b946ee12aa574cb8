// Package trading defines the ledger a backtest policy trades against.
package trading

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-fund/internal/types"
)

// TradingSystem is the cash and holdings ledger a policy drives.
//
// Buy and Sell never fail. A request that cannot be honoured (no cash, no price,
// nothing to sell) leaves the ledger untouched and returns false.
type TradingSystem interface {
	// Buy spends amount of cash on code at the price resolved for date.
	Buy(code string, amount float64, date string) bool
	// Sell sells shares of code. Negative values of small magnitude encode a
	// fraction of the position, see engine.DecodeSellQuantity.
	Sell(code string, shareOrSignal float64, date string) bool
	// Equity is cash plus holdings marked to the price resolved for date.
	Equity(date string) float64
	// Nav resolves the price of code on or after date.
	Nav(code string, date string) optional.Option[float64]
	// Cash returns the idle cash balance
	Cash() float64
	// Holding returns the shares held for code
	Holding(code string) float64
	// Holdings returns a copy of all holdings
	Holdings() map[string]float64
	// Actions returns the executed actions in order
	Actions() []types.Action
	// Cashflows returns the trade cashflows in order
	Cashflows() []types.Cashflow
	// CashflowsFor returns the trade cashflows of one instrument
	CashflowsFor(code string) []types.Cashflow
	// Fee returns the fee configuration of code
	Fee(code string) commission_fee.FeeConfig
}
