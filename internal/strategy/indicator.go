package strategy

import (
	engine "github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/internal/utils"
)

// levelTolerance absorbs float drift when summing normalized level weights.
const levelTolerance = 1e-9

// runIndicatorCross holds one all-in position while the left column is at or above
// the right column. A cross is confirmed when the spread changes sign or closes.
func runIndicatorCross(e *env, p IndicatorCrossParams) types.StrategyResult {
	if len(e.dates) < 2 {
		return e.idleResult()
	}

	left, right := p.Col[0], p.Col[1]
	rows := e.rowsByDate(p.Code)
	l := e.ledger()
	holding := false

	var prev types.RawRow

	for _, d := range e.dates {
		row, ok := rows[d]
		if !ok {
			continue
		}

		if prev == nil {
			prev = row

			continue
		}

		before := prev
		prev = row

		valueL, okL := datasource.Column(row, left)
		valueR, okR := datasource.Column(row, right)
		valueLB, okLB := datasource.Column(before, left)
		valueRB, okRB := datasource.Column(before, right)

		if !okL || !okR || !okLB || !okRB {
			continue
		}

		cond := (valueRB - valueLB) * (valueR - valueL)
		if cond > 0 || (cond == 0 && valueR-valueL == 0) {
			continue
		}

		if valueR > valueL {
			if holding {
				l.Sell(p.Code, engine.SellAllSignal, d)
				holding = false
			}

			continue
		}

		if !holding && l.Cash() > 0 {
			l.Buy(p.Code, l.Cash(), d)
			holding = true
		}
	}

	return e.ledgerResult(l)
}

// runIndicatorPoints trades weighted levels of one column. Each buy level crossed
// in the buy direction invests its share of totmoney. Each sell level crossed the
// other way sells the matching fraction of what is left, at most once per level
// until the next buy.
func runIndicatorPoints(e *env, p IndicatorPointsParams) types.StrategyResult {
	if len(e.dates) < 2 {
		return e.idleResult()
	}

	buyTerms := p.Buy.Normalized()
	sellTerms := p.Sell.Normalized()

	judge := 1.0
	if !p.BuyLow.TakeOr(true) {
		judge = -1.0
	}

	rows := e.rowsByDate(p.Code)
	l := e.ledger()
	pos := 0.0
	sellLevel := 0

	var prev types.RawRow

	for _, d := range e.dates {
		row, ok := rows[d]
		if !ok {
			continue
		}

		if prev == nil {
			prev = row

			continue
		}

		before := prev
		prev = row

		value, ok1 := datasource.Column(row, p.Col)
		valueB, ok2 := datasource.Column(before, p.Col)

		if !ok1 || !ok2 {
			continue
		}

		for i, term := range buyTerms {
			tail := weightFrom(buyTerms, i)
			if judge*(value-term.Threshold) <= 0 && 0 < judge*(valueB-term.Threshold) && pos+tail <= 1.0+levelTolerance {
				pos += term.Multiplier
				l.Buy(p.Code, utils.Round2(e.req.TotMoney*term.Multiplier), d)
				sellLevel = 0
			}
		}

		for i, term := range sellTerms {
			if !(judge*(value-term.Threshold) >= 0 && 0 > judge*(valueB-term.Threshold)) {
				continue
			}

			if pos <= 0 || sellLevel > i {
				continue
			}

			denom := weightFrom(sellTerms, i)
			if denom <= 0 {
				continue
			}

			delta := utils.Round2(term.Multiplier / denom)
			if delta <= 0 {
				continue
			}

			l.Sell(p.Code, engine.SellFractionSignal(delta), d)
			pos = (1.0 - delta) * pos
			sellLevel = i + 1
		}
	}

	return e.ledgerResult(l)
}

// weightFrom sums the weights of terms[i:].
func weightFrom(terms Pieces, i int) float64 {
	total := 0.0
	for _, t := range terms[i:] {
		total += t.Multiplier
	}

	return total
}
