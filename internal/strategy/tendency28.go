package strategy

import (
	"github.com/moznion/go-optional"
	engine "github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"go.uber.org/zap"
)

// momentum is the percent change over the last prev observations strictly before date.
// Too little history or a non-positive base yields 0.
func momentum(series *datasource.Series, date string, prev int) float64 {
	history := series.Before(date)
	if len(history) < prev+1 {
		return 0
	}

	last := history[len(history)-1].Value
	base := history[len(history)-1-prev].Value

	if base <= 0 {
		return 0
	}

	return (last - base) / base * 100.0
}

// runTendency28 parks money in aim0 and rotates everything into aim1 or aim2
// when their momentum beats the threshold, and back when both fade.
func runTendency28(e *env, p Tendency28Params) types.StrategyResult {
	if len(e.dates) == 0 {
		return e.idleResult()
	}

	up := p.UpThreshold.TakeOr(defaultUpThreshold)
	diff := p.DiffThreshold.TakeOr(up)
	prev := p.Prev.TakeOr(defaultPrev)
	initial := p.InitialMoney.TakeOr(e.req.TotMoney / 2.0)

	aims := [3]string{p.Aim0, p.Aim1, p.Aim2}
	l := e.ledger()
	status := 0

	if initial > 0 {
		l.Buy(p.Aim0, initial, e.start)
	}

	rotate := func(to int, date string) {
		e.log.Debug("tendency28 rotate",
			zap.String("date", date),
			zap.String("from", aims[status]),
			zap.String("to", aims[to]),
		)

		l.Sell(aims[status], engine.SellAllSignal, date)
		status = to
		l.Buy(aims[to], l.Cash(), date)
	}

	checks := datasource.DateSet(p.CheckDates)

	for _, d := range e.dates {
		if _, ok := checks[d]; !ok {
			continue
		}

		up1 := momentum(e.series[p.Aim1], d, prev)
		up2 := momentum(e.series[p.Aim2], d, prev)

		switch {
		case up1 < up && up2 < up:
			if status != 0 {
				rotate(0, d)
			}
		case up1 > up && up1 > up2:
			if status == 0 || (status == 2 && up1-up2 > diff) {
				rotate(1, d)
			}
		case up2 > up && up2 > up1:
			if status == 0 || (status == 1 && up2-up1 > diff) {
				rotate(2, d)
			}
		}
	}

	result := e.ledgerResult(l)
	result.Summary.Status = optional.Some(status)

	return result
}
