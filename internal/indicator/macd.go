package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/internal/utils"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
)

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() *MACD {
	return &MACD{
		fastPeriod:   12,
		slowPeriod:   26,
		signalPeriod: 9,
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Config configures the MACD indicator. Expected parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int)")
	}

	periods := make([]int, 3)
	names := []string{"fastPeriod", "slowPeriod", "signalPeriod"}

	for i, p := range params {
		period, ok := p.(int)
		if !ok {
			return errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int", names[i])
		}

		if period <= 0 {
			return errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", names[i], period)
		}

		periods[i] = period
	}

	if periods[0] >= periods[1] {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "fastPeriod (%d) must be smaller than slowPeriod (%d)", periods[0], periods[1])
	}

	m.fastPeriod = periods[0]
	m.slowPeriod = periods[1]
	m.signalPeriod = periods[2]

	return nil
}

// Calculate computes the oscillator for every point of the series.
//
// The first point seeds both averages with its value and has zero diff, signal and macd.
// ZonePosition is filled for display, see zonePositions.
func (m *MACD) Calculate(points []types.SeriesPoint) []types.MacdPoint {
	if len(points) == 0 {
		return []types.MacdPoint{}
	}

	fast := NewEMAWithPeriod(m.fastPeriod)
	slow := NewEMAWithPeriod(m.slowPeriod)
	signal := NewEMAWithPeriod(m.signalPeriod)

	out := make([]types.MacdPoint, len(points))

	for i, p := range points {
		if i == 0 {
			out[i] = types.MacdPoint{
				Index:   0,
				Date:    p.Date,
				Value:   p.Value,
				EmaFast: p.Value,
				EmaSlow: p.Value,
			}

			continue
		}

		prev := out[i-1]
		emaFast := fast.Next(prev.EmaFast, p.Value)
		emaSlow := slow.Next(prev.EmaSlow, p.Value)
		diff := emaFast - emaSlow
		dea := signal.Next(prev.Signal, diff)

		out[i] = types.MacdPoint{
			Index:   i,
			Date:    p.Date,
			Value:   p.Value,
			EmaFast: emaFast,
			EmaSlow: emaSlow,
			Diff:    diff,
			Signal:  dea,
			Macd:    2.0 * (diff - dea),
		}
	}

	zonePositions(out)

	return out
}

// ComputeMACD calculates the 12/26/9 oscillator of a series.
func ComputeMACD(points []types.SeriesPoint) []types.MacdPoint {
	return NewMACD().Calculate(points)
}

// zonePositions sets ZonePosition from index 1 onward.
// A zone starts after a near-zero macd or when the sign flips.
func zonePositions(points []types.MacdPoint) {
	if len(points) < 2 {
		return
	}

	var zones [][]int

	for i := 1; i < len(points); i++ {
		prev := points[i-1].Macd
		cur := points[i].Macd

		if len(zones) == 0 || math.Abs(prev) < zeroTolerance || prev*cur < 0 {
			zones = append(zones, []int{i})

			continue
		}

		zones[len(zones)-1] = append(zones[len(zones)-1], i)
	}

	for _, zone := range zones {
		peak := 0.0
		for _, i := range zone {
			peak = math.Max(peak, math.Abs(points[i].Macd))
		}

		for _, i := range zone {
			if peak < zeroTolerance {
				points[i].ZonePosition = 0

				continue
			}

			points[i].ZonePosition = utils.RoundTo(math.Abs(points[i].Macd)/peak, 2)
		}
	}
}
