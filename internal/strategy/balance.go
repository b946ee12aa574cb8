package strategy

import (
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/types"
)

// runBalance buys the target weights on the first open date and restores them on every check date.
func runBalance(e *env, p BalanceParams) types.StrategyResult {
	if len(e.dates) == 0 {
		return e.idleResult()
	}

	l := e.ledger()
	checks := datasource.DateSet(p.CheckDates)

	for i, d := range e.dates {
		if i == 0 {
			for _, a := range p.Portfolio {
				l.Buy(a.Code, a.Ratio*e.req.TotMoney, d)
			}
		}

		if _, ok := checks[d]; !ok {
			continue
		}

		total := l.Equity(d)

		for _, a := range p.Portfolio {
			nav, ok := positive(l.Nav(a.Code, d))
			if !ok {
				continue
			}

			delta := l.Holding(a.Code)*nav - total*a.Ratio

			switch {
			case delta > 0:
				denom := (1.0 - l.Fee(a.Code).SellFeeRate) * nav
				if denom <= 0 {
					continue
				}

				l.Sell(a.Code, delta/denom, d)
			case delta < 0:
				if amount := min(-delta, l.Cash()); amount > 0 {
					l.Buy(a.Code, amount, d)
				}
			}
		}
	}

	return e.ledgerResult(l)
}
