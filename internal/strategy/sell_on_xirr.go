package strategy

import (
	"time"

	engine "github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/internal/xirr"
	"go.uber.org/zap"
)

// weekday numbers days from Monday = 0 to Sunday = 6.
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// runSellOnXIRR buys on schedule and exits everything once, on a check weekday
// after the holding period, when the XIRR of the position including its
// redemption value beats the threshold. No buys happen after the exit.
func runSellOnXIRR(e *env, p SellOnXIRRParams) types.StrategyResult {
	if len(e.dates) == 0 {
		return e.idleResult()
	}

	threshold := p.Threshold.TakeOr(defaultXIRRTarget)
	holdingDays := p.HoldingTime.TakeOr(defaultHoldingTime)
	checkWeekday := p.CheckWeekday.TakeOr(defaultCheckWeekday)

	l := e.ledger()
	times := datasource.DateSet(p.Times)
	startDay, startErr := xirr.ParseDate(e.start)
	sold := false

	shouldSell := func(d string) bool {
		day, err := xirr.ParseDate(d)
		if err != nil || weekday(day) != checkWeekday {
			return false
		}

		if int(day.Sub(startDay).Hours()/24) <= holdingDays {
			return false
		}

		nav, ok := positive(l.Nav(p.Code, d))
		if !ok {
			return false
		}

		flows, err := xirr.FromLedger(l.CashflowsFor(p.Code))
		if err != nil {
			return false
		}

		redemption := l.Holding(p.Code) * nav * (1.0 - l.Fee(p.Code).SellFeeRate)
		if redemption > 0 {
			flows = append(flows, xirr.Cashflow{Date: day, Amount: redemption})
		}

		rate := 0.0
		if len(flows) >= 2 {
			rate = xirr.XIRR(flows, xirr.DefaultGuess)
		}

		e.log.Debug("xirr check", zap.String("date", d), zap.Float64("rate", rate), zap.Float64("threshold", threshold))

		return rate > threshold
	}

	for _, d := range e.dates {
		if !sold && startErr == nil && shouldSell(d) {
			l.Sell(p.Code, engine.SellAllSignal, d)
			sold = true
		}

		if _, ok := times[d]; ok && !sold {
			l.Buy(p.Code, p.Value, d)
		}
	}

	return e.ledgerResult(l)
}
