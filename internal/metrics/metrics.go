// Package metrics derives performance statistics from a value series.
package metrics

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	tradingDaysPerYear = 252.0
	daysPerYear        = 365.0
	stdTolerance       = 1e-12
)

// Metrics are the headline statistics of a series.
type Metrics struct {
	// TotalReturn is last/first - 1, zero when the first value is not positive.
	TotalReturn float64 `json:"total_return" yaml:"total_return"`
	// CAGR annualizes the total return over the calendar span.
	CAGR float64 `json:"cagr" yaml:"cagr"`
	// VolAnnual is the sample standard deviation of step returns times sqrt(252).
	VolAnnual float64 `json:"vol_annual" yaml:"vol_annual"`
	Sharpe    float64 `json:"sharpe" yaml:"sharpe"`
	// MaxDrawdown is the most negative value/peak - 1.
	MaxDrawdown float64 `json:"max_drawdown" yaml:"max_drawdown"`
}

// DrawdownPoint is the drawdown at one point of the series.
type DrawdownPoint struct {
	Index    int     `json:"index" yaml:"index"`
	Date     string  `json:"date" yaml:"date"`
	Drawdown float64 `json:"drawdown" yaml:"drawdown"`
}

// Report bundles metrics with the drawdown series.
type Report struct {
	Metrics        Metrics         `json:"metrics" yaml:"metrics"`
	DrawdownSeries []DrawdownPoint `json:"drawdown_series" yaml:"drawdown_series"`
}

type point struct {
	index int
	date  string
	value float64
	day   time.Time
	dated bool
}

// FromRows computes a report from raw rows. Rows keep their order unless every
// date parses, in which case they are sorted by date. A row without a numeric
// val counts as 0 and a row without index takes its position.
func FromRows(rows []types.RawRow, riskFreeAnnual float64) Report {
	pts := make([]point, len(rows))

	for i, row := range rows {
		index := i
		if raw, ok := datasource.ParseNumber(row["index"]); ok {
			index = int(raw)
		}

		value, _ := datasource.Column(row, "val")
		pts[i] = newPoint(index, datasource.DateOf(row), value)
	}

	return compute(pts, riskFreeAnnual)
}

// FromSeries computes a report from series points.
func FromSeries(series []types.SeriesPoint, riskFreeAnnual float64) Report {
	pts := make([]point, len(series))
	for i, p := range series {
		pts[i] = newPoint(i, p.Date, p.Value)
	}

	return compute(pts, riskFreeAnnual)
}

// FromEquityCurve computes a report from an equity curve.
func FromEquityCurve(curve []types.EquityPoint, riskFreeAnnual float64) Report {
	pts := make([]point, len(curve))
	for i, p := range curve {
		pts[i] = newPoint(i, p.Date, p.Equity)
	}

	return compute(pts, riskFreeAnnual)
}

func newPoint(index int, date string, value float64) point {
	date = strings.TrimSpace(date)
	p := point{index: index, date: date, value: value}

	if len(date) >= 10 {
		if t, err := time.Parse(time.DateOnly, date[:10]); err == nil {
			p.day, p.dated = t, true
		}
	}

	return p
}

func compute(pts []point, riskFreeAnnual float64) Report {
	if len(pts) == 0 {
		return Report{DrawdownSeries: []DrawdownPoint{}}
	}

	allDated := !slices.ContainsFunc(pts, func(p point) bool { return !p.dated })
	if allDated {
		slices.SortStableFunc(pts, func(a, b point) int { return a.day.Compare(b.day) })
	}

	first := pts[0].value
	last := pts[len(pts)-1].value

	var m Metrics
	if first > 0 {
		m.TotalReturn = last/first - 1
	}

	drawdowns := make([]DrawdownPoint, 0, len(pts))
	peak := first

	for _, p := range pts {
		peak = math.Max(peak, p.value)

		dd := 0.0
		if peak > 0 {
			dd = p.value/peak - 1
		}

		m.MaxDrawdown = math.Min(m.MaxDrawdown, dd)
		drawdowns = append(drawdowns, DrawdownPoint{Index: p.index, Date: p.date, Drawdown: dd})
	}

	returns := stepReturns(pts)
	mean := average(returns)
	std := sampleStd(returns)
	m.VolAnnual = std * math.Sqrt(tradingDaysPerYear)

	if std > stdTolerance {
		m.Sharpe = (mean - riskFreeAnnual/tradingDaysPerYear) / std * math.Sqrt(tradingDaysPerYear)
	}

	if days := spanDays(pts); first > 0 && days > 0 {
		m.CAGR = math.Pow(last/first, daysPerYear/float64(days)) - 1
	}

	return Report{Metrics: m, DrawdownSeries: drawdowns}
}

// stepReturns are the returns between consecutive points. A step from a
// non-positive value counts as 0.
func stepReturns(pts []point) []float64 {
	out := make([]float64, 0, max(len(pts)-1, 0))

	for i := 1; i < len(pts); i++ {
		prev := pts[i-1].value
		if prev > 0 {
			out = append(out, pts[i].value/prev-1)

			continue
		}

		out = append(out, 0)
	}

	return out
}

// spanDays is the calendar span when at least two dates parse, else one day per step.
func spanDays(pts []point) int {
	var lo, hi time.Time

	dated := 0

	for _, p := range pts {
		if !p.dated {
			continue
		}

		if dated == 0 || p.day.Before(lo) {
			lo = p.day
		}

		if dated == 0 || p.day.After(hi) {
			hi = p.day
		}

		dated++
	}

	if dated >= 2 {
		return int(hi.Sub(lo).Hours() / 24)
	}

	return len(pts) - 1
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := average(values)

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}

	return math.Sqrt(variance / float64(len(values)-1))
}

// WriteYAML writes the metrics, without the drawdown series, to path.
func (r Report) WriteYAML(path string) error {
	data, err := yaml.Marshal(r.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metrics to file: %w", err)
	}

	return nil
}
