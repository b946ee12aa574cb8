package strategy

import (
	"slices"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/internal/utils"
)

// portionBook accumulates shares of one instrument without a cash constraint.
// The scheduled family only answers "what would this buying plan hold".
type portionBook struct {
	code    string
	fee     commission_fee.FeeConfig
	series  *datasource.Series
	portion float64
	actions []types.Action
}

func (e *env) portionBook(code string) *portionBook {
	return &portionBook{
		code:    code,
		fee:     e.req.Fees.For(code),
		series:  e.series[code],
		actions: []types.Action{},
	}
}

func (b *portionBook) nav(date string) (float64, bool) {
	return positive(b.series.ValueOnOrAfter(date))
}

func (b *portionBook) buy(date string, amount, nav float64) bool {
	if amount <= 0 {
		return false
	}

	share := b.fee.BuyShares(amount, nav)
	if share <= 0 {
		return false
	}

	b.portion = utils.Round2(b.portion + share)
	b.actions = append(b.actions, types.Action{
		Date:   date,
		Code:   b.code,
		Type:   types.TxnTypeBuy,
		Amount: amount,
		Share:  share,
	})

	return true
}

// result marks the accumulated portion to market on the last open date.
func (b *portionBook) result(date string) types.StrategyResult {
	nav := b.series.ValueOnOrAfter(date)

	equity := 0.0
	if v, ok := positive(nav); ok {
		equity = utils.Round2(v * b.portion)
	}

	return types.StrategyResult{
		Actions: b.actions,
		Summary: types.Summary{
			FinalDate:   date,
			FinalNav:    nav,
			FinalEquity: equity,
			Portion:     optional.Some(b.portion),
		},
	}
}

// runScheduled buys a fixed amount on every open date listed in times.
func runScheduled(e *env, p ScheduledParams) types.StrategyResult {
	if len(e.dates) == 0 {
		return types.EmptyResult()
	}

	book := e.portionBook(p.Code)
	times := datasource.DateSet(p.Times)

	for _, d := range e.dates {
		if _, ok := times[d]; !ok {
			continue
		}

		if nav, ok := book.nav(d); ok {
			book.buy(d, p.Value, nav)
		}
	}

	return book.result(e.finalDate())
}

// runScheduledTune scales each scheduled buy by the multiplier of the first piece the price fits under.
func runScheduledTune(e *env, p ScheduledTuneParams) types.StrategyResult {
	if len(e.dates) == 0 {
		return types.EmptyResult()
	}

	book := e.portionBook(p.Code)
	times := datasource.DateSet(p.Times)

	for _, d := range e.dates {
		if _, ok := times[d]; !ok {
			continue
		}

		nav, ok := book.nav(d)
		if !ok {
			continue
		}

		mult := p.Piece.Lookup(nav)
		if mult <= 0 {
			continue
		}

		book.buy(d, p.Value*mult, nav)
	}

	return book.result(e.finalDate())
}

// runScheduledWindow keys the multiplier on the percent deviation of the price
// from an aggregate of earlier prices. The window covers the window prices that
// end window_dist observations before the trade date.
func runScheduledWindow(e *env, p ScheduledWindowParams) types.StrategyResult {
	window := p.Window.TakeOr(defaultWindow)
	dist := p.WindowDist.TakeOr(defaultWindowDist)

	if len(e.dates) == 0 || window < 1 || dist < 1 {
		return types.EmptyResult()
	}

	method := p.method()
	book := e.portionBook(p.Code)

	sortedTimes := make([]string, 0, len(p.Times))
	for _, t := range p.Times {
		if t = strings.TrimSpace(t); t != "" {
			sortedTimes = append(sortedTimes, t)
		}
	}

	slices.Sort(sortedTimes)

	skipCount := window + dist - 1
	times := datasource.DateSet(sortedTimes)
	skipped := datasource.DateSet(sortedTimes[:min(skipCount, len(sortedTimes))])

	for _, d := range e.dates {
		if _, ok := times[d]; !ok {
			continue
		}

		if _, ok := skipped[d]; ok {
			continue
		}

		history := book.series.Before(d)
		if len(history) < skipCount {
			continue
		}

		nav, ok := book.nav(d)
		if !ok {
			continue
		}

		values := make([]float64, 0, window)
		for i := dist; i < window+dist; i++ {
			values = append(values, history[len(history)-i].Value)
		}

		base := aggregate(values, method)
		if base <= 0 {
			continue
		}

		pct := (nav - base) / base * 100.0

		mult := p.Piece.Lookup(pct)
		if mult <= 0 {
			continue
		}

		book.buy(d, p.Value*mult, nav)
	}

	return book.result(e.finalDate())
}

func aggregate(values []float64, method WindowMethod) float64 {
	switch method {
	case WindowMethodMax:
		return slices.Max(values)
	case WindowMethodMin:
		return slices.Min(values)
	default:
		total := 0.0
		for _, v := range values {
			total += v
		}

		return total / float64(len(values))
	}
}

// runBuyAndHold invests totmoney on the first open date and holds.
func runBuyAndHold(e *env, p BuyAndHoldParams) types.StrategyResult {
	if len(e.dates) == 0 {
		return types.EmptyResult()
	}

	book := e.portionBook(p.Code)
	first := e.dates[0]

	nav, ok := book.nav(first)
	if !ok || !book.buy(first, e.req.TotMoney, nav) {
		return types.EmptyResult()
	}

	return book.result(e.finalDate())
}
