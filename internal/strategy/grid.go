package strategy

import (
	engine "github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/internal/utils"
	"go.uber.org/zap"
)

// gridLevels derives the buy levels, each buypercent[i] percent below the
// previous one starting from base, and the sell level above each buy level.
func gridLevels(base float64, buyPercent, sellPercent []float64) (buy, sell []float64) {
	buy = make([]float64, 0, len(buyPercent))
	sell = make([]float64, 0, len(sellPercent))

	level := base
	for _, bp := range buyPercent {
		level *= 1.0 - bp/100.0
		buy = append(buy, level)
	}

	for i, sp := range sellPercent {
		sell = append(sell, buy[i]*(1.0+sp/100.0))
	}

	return buy, sell
}

// runGrid splits totmoney into one unit per grid level. A unit is bought when
// the price falls through its buy level and sold when it rises through its sell level.
func runGrid(e *env, p GridParams) types.StrategyResult {
	if len(p.BuyPercent) == 0 || len(p.BuyPercent) != len(p.SellPercent) || len(e.dates) == 0 {
		return types.EmptyResult()
	}

	l := e.ledger()

	base, ok := positive(l.Nav(p.Code, e.start))
	if !ok {
		return types.EmptyResult()
	}

	buyLevels, sellLevels := gridLevels(base, p.BuyPercent, p.SellPercent)
	unit := utils.Round2(e.req.TotMoney / float64(len(buyLevels)))
	pos := 0

	// prev is 0 while no usable previous price exists.
	prev := 0.0

	for _, d := range e.dates {
		value, ok := positive(l.Nav(p.Code, d))
		if !ok {
			prev = 0

			continue
		}

		if d == e.start {
			if p.BuyPercent[0] == 0 {
				pos++
				l.Buy(p.Code, unit, d)
			}

			prev = value

			continue
		}

		if prev <= 0 {
			prev = value

			continue
		}

		for i, level := range buyLevels {
			if value-level <= 0 && prev-level > 0 && pos <= i {
				pos++
				l.Buy(p.Code, unit, d)
			}
		}

		for j, level := range sellLevels {
			if value-level >= 0 && prev-level < 0 && pos > j && pos > 0 {
				l.Sell(p.Code, engine.SellFractionSignal(1.0/float64(pos)), d)
				pos--
			}
		}

		prev = value
	}

	e.log.Debug("grid finished", zap.String("code", p.Code), zap.Int("units_held", pos))

	return e.ledgerResult(l)
}
