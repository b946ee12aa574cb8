package strategy

import (
	"slices"
	"strings"

	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/indicator"
	"github.com/rxtech-lab/argo-fund/internal/types"
)

// Signal is a dated trade instruction produced by a signal generator.
type Signal struct {
	Date   string        `json:"date" yaml:"date"`
	Type   types.TxnType `json:"type" yaml:"type"`
	Reason string        `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// SignalGenerator turns a price series and free-form parameters into signals.
type SignalGenerator func(series []types.SeriesPoint, params map[string]any) []Signal

// SignalSpec describes one registered generator.
type SignalSpec struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Generate SignalGenerator `json:"-"`
}

// SignalRegistry is an immutable set of signal generators keyed by id.
// It is built once and shared by reference. Concurrent reads are safe.
type SignalRegistry struct {
	specs map[string]SignalSpec
}

// NewSignalRegistry builds a registry. A later spec with a duplicate id replaces the earlier one.
func NewSignalRegistry(specs ...SignalSpec) *SignalRegistry {
	m := make(map[string]SignalSpec, len(specs))
	for _, s := range specs {
		m[s.ID] = s
	}

	return &SignalRegistry{specs: m}
}

// DefaultSignalRegistry holds the built-in generators.
func DefaultSignalRegistry() *SignalRegistry {
	return NewSignalRegistry(
		SignalSpec{
			ID:       "macd_cross",
			Title:    "MACD cross",
			Generate: MacdCrossSignals,
		},
		SignalSpec{
			ID:       "ma_cross",
			Title:    "Moving average cross",
			Generate: MaCrossSignals,
		},
		SignalSpec{
			ID:       "rsi",
			Title:    "RSI overbought and oversold",
			Generate: RsiSignals,
		},
	)
}

// Get returns the spec registered under id.
func (r *SignalRegistry) Get(id string) (SignalSpec, bool) {
	spec, ok := r.specs[strings.TrimSpace(id)]

	return spec, ok
}

// List returns all specs sorted by id.
func (r *SignalRegistry) List() []SignalSpec {
	out := make([]SignalSpec, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s)
	}

	slices.SortFunc(out, func(a, b SignalSpec) int {
		return strings.Compare(a.ID, b.ID)
	})

	return out
}

// MacdCrossSignals marks MACD zones and emits a buy or sell signal on every trigger.
// Params sell_position and buy_position default to 0.7.
func MacdCrossSignals(series []types.SeriesPoint, params map[string]any) []Signal {
	sell := paramFloat(params, "sell_position", 0.7)
	buy := paramFloat(params, "buy_position", 0.7)

	points := indicator.MarkTransactions(indicator.ComputeMACD(series), sell, buy)

	out := make([]Signal, 0)

	for _, p := range points {
		if p.TxnType.IsNone() {
			continue
		}

		date := signalDate(p.Date)

		switch p.TxnType.Unwrap() {
		case types.TxnTypeBuy:
			out = append(out, Signal{Date: date, Type: types.TxnTypeBuy, Reason: "macd_buy"})
		case types.TxnTypeSell:
			out = append(out, Signal{Date: date, Type: types.TxnTypeSell, Reason: "macd_sell"})
		}
	}

	return out
}

// MaCrossSignals buys when the fast average crosses above the slow one and sells
// when it crosses below. Params fast and slow default to 5 and 20.
func MaCrossSignals(series []types.SeriesPoint, params map[string]any) []Signal {
	fast := int(paramFloat(params, "fast", 5))
	slow := int(paramFloat(params, "slow", 20))

	values := seriesValues(series)
	fastMA := indicator.NewMAWithPeriod(fast).Calculate(values)
	slowMA := indicator.NewMAWithPeriod(slow).Calculate(values)

	out := make([]Signal, 0)

	for i := 1; i < len(series); i++ {
		prevFast, err1 := fastMA[i-1].Take()
		prevSlow, err2 := slowMA[i-1].Take()
		curFast, err3 := fastMA[i].Take()
		curSlow, err4 := slowMA[i].Take()

		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}

		switch {
		case prevFast <= prevSlow && curFast > curSlow:
			out = append(out, Signal{Date: signalDate(series[i].Date), Type: types.TxnTypeBuy, Reason: "ma_golden_cross"})
		case prevFast >= prevSlow && curFast < curSlow:
			out = append(out, Signal{Date: signalDate(series[i].Date), Type: types.TxnTypeSell, Reason: "ma_death_cross"})
		}
	}

	return out
}

// RsiSignals buys when the RSI enters the oversold zone and sells when it enters
// the overbought zone. Params period, lower and upper default to 14, 30 and 70.
func RsiSignals(series []types.SeriesPoint, params map[string]any) []Signal {
	period := int(paramFloat(params, "period", 14))
	lower := paramFloat(params, "lower", 30)
	upper := paramFloat(params, "upper", 70)

	zone := func(v float64) int {
		switch {
		case v < lower:
			return -1
		case v > upper:
			return 1
		default:
			return 0
		}
	}

	out := make([]Signal, 0)
	prev := 0

	for i, value := range indicator.NewRSIWithPeriod(period).Calculate(seriesValues(series)) {
		rsi, err := value.Take()
		if err != nil {
			continue
		}

		cur := zone(rsi)

		if cur != prev {
			switch cur {
			case -1:
				out = append(out, Signal{Date: signalDate(series[i].Date), Type: types.TxnTypeBuy, Reason: "rsi_oversold"})
			case 1:
				out = append(out, Signal{Date: signalDate(series[i].Date), Type: types.TxnTypeSell, Reason: "rsi_overbought"})
			}
		}

		prev = cur
	}

	return out
}

func seriesValues(series []types.SeriesPoint) []float64 {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Value
	}

	return values
}

func signalDate(date string) string {
	if len(date) > 10 {
		return date[:10]
	}

	return date
}

func paramFloat(params map[string]any, key string, fallback float64) float64 {
	raw, ok := params[key]
	if !ok || raw == nil {
		return fallback
	}

	if v, ok := datasource.ParseNumber(raw); ok {
		return v
	}

	return fallback
}
