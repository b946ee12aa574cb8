package strategy

import (
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/types"
)

// runBteScheduled is the cash constrained scheduled plan: a buy is skipped once cash runs out.
func runBteScheduled(e *env, p BteScheduledParams) types.StrategyResult {
	if len(e.dates) == 0 {
		return e.idleResult()
	}

	l := e.ledger()
	times := datasource.DateSet(p.Times)

	for _, d := range e.dates {
		if _, ok := times[d]; ok {
			l.Buy(p.Code, p.Value, d)
		}
	}

	return e.ledgerResult(l)
}

// runAverageScheduled grows a target position value by value on every scheduled
// date and trades the difference between the target and the marked position.
func runAverageScheduled(e *env, p AverageScheduledParams) types.StrategyResult {
	if len(e.dates) == 0 {
		return e.idleResult()
	}

	l := e.ledger()
	times := datasource.DateSet(p.Times)
	aim := 0.0

	for _, d := range e.dates {
		if _, ok := times[d]; !ok {
			continue
		}

		aim += p.Value

		nav, ok := positive(l.Nav(p.Code, d))
		if !ok {
			continue
		}

		current := l.Holding(p.Code) * nav

		switch {
		case aim > current:
			l.Buy(p.Code, aim-current, d)
		case aim < current:
			l.Sell(p.Code, (current-aim)/nav, d)
		}
	}

	return e.ledgerResult(l)
}
