package strategy

import (
	"encoding/json"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/types"
)

const (
	DefaultGridStepPct = 0.02
	DefaultEveryN      = 20
	DefaultEveryAmount = 1.0
)

// SeriesAction is a buy or sell suggested on one row of a raw series.
type SeriesAction struct {
	Index  int                      `json:"index" yaml:"index"`
	Date   string                   `json:"date" yaml:"date"`
	Val    float64                  `json:"val" yaml:"val"`
	Action types.TxnType            `json:"action" yaml:"action"`
	Amount optional.Option[float64] `json:"amount,omitempty" yaml:"amount,omitempty"`
}

type seriesRow struct {
	index int
	date  string
	val   float64
}

// seriesRows reads rows in input order. A row's own index wins over its position
// and a missing or non-numeric val counts as 0.
func seriesRows(rows []types.RawRow) []seriesRow {
	out := make([]seriesRow, len(rows))

	for i, row := range rows {
		r := seriesRow{index: i, date: datasource.DateOf(row)}

		if raw, ok := row["index"]; ok {
			if idx, ok := datasource.ParseNumber(raw); ok {
				r.index = int(idx)
			}
		}

		if v, ok := datasource.ParseNumber(row["val"]); ok {
			r.val = v
		}

		out[i] = r
	}

	return out
}

// GridActions buys when the value falls stepPct below the anchor and sells when it
// rises stepPct above it. The anchor starts at the first value and moves to every
// traded value. A non-positive anchor is replaced by the next value without trading.
func GridActions(rows []types.RawRow, stepPct float64) []SeriesAction {
	out := []SeriesAction{}
	if len(rows) == 0 || stepPct <= 0 {
		return out
	}

	points := seriesRows(rows)
	anchor := points[0].val

	for _, p := range points[1:] {
		if anchor <= 0 {
			anchor = p.val

			continue
		}

		var action types.TxnType

		switch {
		case p.val <= anchor*(1-stepPct):
			action = types.TxnTypeBuy
		case p.val >= anchor*(1+stepPct):
			action = types.TxnTypeSell
		default:
			continue
		}

		out = append(out, SeriesAction{Index: p.index, Date: p.date, Val: p.val, Action: action})
		anchor = p.val
	}

	return out
}

// ScheduledActions buys amount on every n-th row, starting with the first.
func ScheduledActions(rows []types.RawRow, everyN int, amount float64) []SeriesAction {
	out := []SeriesAction{}
	if everyN <= 0 {
		return out
	}

	for i, p := range seriesRows(rows) {
		if i%everyN != 0 {
			continue
		}

		out = append(out, SeriesAction{
			Index:  p.index,
			Date:   p.date,
			Val:    p.val,
			Action: types.TxnTypeBuy,
			Amount: optional.Some(amount),
		})
	}

	return out
}

// QdiiLeg is one holding of a QDII fund with its daily change and currency move.
type QdiiLeg struct {
	Code          string  `json:"code" yaml:"code"`
	Percent       float64 `json:"percent" yaml:"percent"`
	Ratio         float64 `json:"ratio" yaml:"ratio"`
	CurrencyRatio float64 `json:"currency_ratio" yaml:"currency_ratio" jsonschema:"default=1"`
}

// UnmarshalJSON defaults currency_ratio to 1.
func (l *QdiiLeg) UnmarshalJSON(data []byte) error {
	type plain QdiiLeg

	leg := plain{CurrencyRatio: 1}
	if err := json.Unmarshal(data, &leg); err != nil {
		return err
	}

	*l = QdiiLeg(leg)

	return nil
}

// QdiiComponent is a leg that took part in a prediction.
type QdiiComponent struct {
	Code          string  `json:"code" yaml:"code"`
	Percent       float64 `json:"percent" yaml:"percent"`
	Ratio         float64 `json:"ratio" yaml:"ratio"`
	CurrencyRatio float64 `json:"currency_ratio" yaml:"currency_ratio"`
	Contrib       float64 `json:"contrib" yaml:"contrib"`
}

// QdiiPrediction is the estimated net value of a QDII fund.
type QdiiPrediction struct {
	LastValue      float64                  `json:"last_value" yaml:"last_value"`
	Delta          float64                  `json:"delta" yaml:"delta"`
	PredictedValue float64                  `json:"predicted_value" yaml:"predicted_value"`
	CashPercent    optional.Option[float64] `json:"cash_percent,omitempty" yaml:"cash_percent,omitempty"`
	Components     []QdiiComponent          `json:"components" yaml:"components"`
}

// PredictQDII estimates today's net value from last value and the legs' moves.
// Each leg contributes percent/100 * ratio * currency_ratio, legs without a positive
// percent are skipped, and the uninvested remainder is held as cash at ratio 1.
func PredictQDII(lastValue float64, legs []QdiiLeg) QdiiPrediction {
	if len(legs) == 0 {
		return QdiiPrediction{LastValue: lastValue, Delta: 1, PredictedValue: lastValue, Components: []QdiiComponent{}}
	}

	totalPercent, weighted := 0.0, 0.0
	components := []QdiiComponent{}

	for _, leg := range legs {
		if leg.Percent <= 0 {
			continue
		}

		contrib := leg.Percent / 100 * leg.Ratio * leg.CurrencyRatio
		totalPercent += leg.Percent
		weighted += contrib
		components = append(components, QdiiComponent{
			Code:          strings.TrimSpace(leg.Code),
			Percent:       leg.Percent,
			Ratio:         leg.Ratio,
			CurrencyRatio: leg.CurrencyRatio,
			Contrib:       contrib,
		})
	}

	cash := max(0, 100-totalPercent)
	delta := weighted + cash/100

	return QdiiPrediction{
		LastValue:      lastValue,
		Delta:          delta,
		PredictedValue: lastValue * delta,
		CashPercent:    optional.Some(cash),
		Components:     components,
	}
}
