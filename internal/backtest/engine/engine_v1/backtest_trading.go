package engine

import (
	"maps"
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/logger"
	"github.com/rxtech-lab/argo-fund/internal/trading"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/internal/utils"
	"go.uber.org/zap"
)

// Epsilon is the tolerance used for funds and oversell checks.
const Epsilon = 1e-9

// sellSignalUnit is the magnitude that encodes a full exit in the legacy sell encoding.
const sellSignalUnit = 0.005

// SellAllSignal asks Sell to liquidate the whole position.
const SellAllSignal = -sellSignalUnit

// SellFractionSignal encodes "sell fraction of the current position" for Sell.
// fraction is expected in (0, 1].
func SellFractionSignal(fraction float64) float64 {
	return -sellSignalUnit * fraction
}

// DecodeSellQuantity resolves the share count a sell request refers to.
//
// -0.005 sells everything, a negative value with magnitude at most 0.005 sells
// that fraction (|x|/0.005) of holding, any other value is an absolute share count.
func DecodeSellQuantity(x float64, holding float64) float64 {
	if x < 0 && math.Abs(x) <= sellSignalUnit {
		return holding * (math.Abs(x) / sellSignalUnit)
	}

	return x
}

// BacktestTradingConfig configures a ledger.
type BacktestTradingConfig struct {
	InitialCash float64
	Series      map[string]*datasource.Series
	Fees        commission_fee.Fees
}

// BacktestTrading is the per-run cash and holdings ledger used by the policies.
// It is not safe for concurrent use. Every backtest owns its own instance.
type BacktestTrading struct {
	cash      float64
	holdings  map[string]float64
	codes     []string
	series    map[string]*datasource.Series
	fees      commission_fee.Fees
	actions   []types.Action
	cashflows []types.Cashflow
	log       *logger.Logger
}

var _ trading.TradingSystem = (*BacktestTrading)(nil)

// NewBacktestTrading creates a ledger holding only cash.
func NewBacktestTrading(config BacktestTradingConfig, log *logger.Logger) *BacktestTrading {
	series := config.Series
	if series == nil {
		series = map[string]*datasource.Series{}
	}

	fees := config.Fees
	if fees == nil {
		fees = commission_fee.Fees{}
	}

	return &BacktestTrading{
		cash:      config.InitialCash,
		holdings:  map[string]float64{},
		codes:     []string{},
		series:    series,
		fees:      fees,
		actions:   []types.Action{},
		cashflows: []types.Cashflow{},
		log:       logger.OrNop(log),
	}
}

// Buy implements trading.TradingSystem.
func (b *BacktestTrading) Buy(code string, amount float64, date string) bool {
	if amount <= 0 {
		b.reject("buy", code, date, "non-positive amount", zap.Float64("amount", amount))

		return false
	}

	if b.cash+Epsilon < amount {
		b.reject("buy", code, date, "insufficient cash", zap.Float64("amount", amount), zap.Float64("cash", b.cash))

		return false
	}

	nav, ok := b.price(code, date)
	if !ok {
		b.reject("buy", code, date, "price unavailable")

		return false
	}

	fee := b.fees.For(code)

	share := fee.BuyShares(amount, nav)
	if share <= 0 {
		b.reject("buy", code, date, "rounds to zero shares", zap.Float64("amount", amount))

		return false
	}

	b.cash = utils.Round2(b.cash - amount)
	b.setHolding(code, utils.Round2(b.holdings[code]+share))
	b.actions = append(b.actions, types.Action{
		Date:   date,
		Code:   code,
		Type:   types.TxnTypeBuy,
		Amount: amount,
		Share:  share,
	})
	b.cashflows = append(b.cashflows, types.Cashflow{Date: date, Code: code, Cash: -utils.Round2(amount)})

	return true
}

// Sell implements trading.TradingSystem.
func (b *BacktestTrading) Sell(code string, shareOrSignal float64, date string) bool {
	current := b.holdings[code]
	if current <= 0 {
		b.reject("sell", code, date, "no holding")

		return false
	}

	if shareOrSignal == 0 {
		return false
	}

	share := DecodeSellQuantity(shareOrSignal, current)
	if share <= 0 {
		b.reject("sell", code, date, "non-positive share", zap.Float64("share", share))

		return false
	}

	if share-current > Epsilon {
		b.reject("sell", code, date, "oversell", zap.Float64("share", share), zap.Float64("holding", current))

		return false
	}

	nav, ok := b.price(code, date)
	if !ok {
		b.reject("sell", code, date, "price unavailable")

		return false
	}

	proceeds := b.fees.For(code).SellProceeds(nav, share)

	b.cash = utils.Round2(b.cash + proceeds)
	b.setHolding(code, utils.Round2(current-share))
	b.actions = append(b.actions, types.Action{
		Date:   date,
		Code:   code,
		Type:   types.TxnTypeSell,
		Amount: proceeds,
		Share:  share,
	})
	b.cashflows = append(b.cashflows, types.Cashflow{Date: date, Code: code, Cash: utils.Round2(proceeds)})

	return true
}

// Equity implements trading.TradingSystem.
// Instruments without a resolvable positive price contribute nothing.
func (b *BacktestTrading) Equity(date string) float64 {
	total := b.cash

	for _, code := range b.codes {
		share := b.holdings[code]
		if share <= 0 {
			continue
		}

		nav, ok := b.price(code, date)
		if !ok {
			continue
		}

		total += nav * share
	}

	return utils.Round2(total)
}

// Nav implements trading.TradingSystem.
func (b *BacktestTrading) Nav(code string, date string) optional.Option[float64] {
	return b.series[code].ValueOnOrAfter(date)
}

// Cash implements trading.TradingSystem.
func (b *BacktestTrading) Cash() float64 {
	return b.cash
}

// Holding implements trading.TradingSystem.
func (b *BacktestTrading) Holding(code string) float64 {
	return b.holdings[code]
}

// Holdings implements trading.TradingSystem.
func (b *BacktestTrading) Holdings() map[string]float64 {
	return maps.Clone(b.holdings)
}

// Actions implements trading.TradingSystem.
func (b *BacktestTrading) Actions() []types.Action {
	return b.actions
}

// Cashflows implements trading.TradingSystem.
func (b *BacktestTrading) Cashflows() []types.Cashflow {
	return b.cashflows
}

// CashflowsFor implements trading.TradingSystem.
func (b *BacktestTrading) CashflowsFor(code string) []types.Cashflow {
	out := make([]types.Cashflow, 0)

	for _, cf := range b.cashflows {
		if cf.Code == code {
			out = append(out, cf)
		}
	}

	return out
}

// Fee implements trading.TradingSystem.
func (b *BacktestTrading) Fee(code string) commission_fee.FeeConfig {
	return b.fees.For(code)
}

// Series returns the price series of code, or nil.
func (b *BacktestTrading) Series(code string) *datasource.Series {
	return b.series[code]
}

// price resolves a positive price for code on or after date.
func (b *BacktestTrading) price(code string, date string) (float64, bool) {
	nav := b.Nav(code, date)
	if nav.IsNone() {
		return 0, false
	}

	value := nav.Unwrap()
	if value <= 0 {
		return 0, false
	}

	return value, true
}

func (b *BacktestTrading) setHolding(code string, share float64) {
	if _, ok := b.holdings[code]; !ok {
		b.codes = append(b.codes, code)
	}

	b.holdings[code] = share
}

func (b *BacktestTrading) reject(op, code, date, reason string, fields ...zap.Field) {
	b.log.Debug("ledger request ignored",
		append([]zap.Field{
			zap.String("op", op),
			zap.String("code", code),
			zap.String("date", date),
			zap.String("reason", reason),
		}, fields...)...,
	)
}
