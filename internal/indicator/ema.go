package indicator

import (
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
)

// EMA indicator implements Exponential Moving Average calculation.
// The average is seeded with the first value, not with a simple average.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() *EMA {
	return &EMA{
		period: 20,
	}
}

// NewEMAWithPeriod creates an EMA of the given period. The period is not validated.
func NewEMAWithPeriod(period int) *EMA {
	return &EMA{period: period}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	e.period = period

	return nil
}

// Period returns the configured period.
func (e *EMA) Period() int {
	return e.period
}

// Next returns the average after observing value, given the previous average.
func (e *EMA) Next(prev, value float64) float64 {
	n := float64(e.period)

	return (2.0*value + (n-1.0)*prev) / (n + 1.0)
}

// Calculate returns the running average of values.
func (e *EMA) Calculate(values []float64) []float64 {
	out := make([]float64, len(values))

	for i, v := range values {
		if i == 0 {
			out[i] = v

			continue
		}

		out[i] = e.Next(out[i-1], v)
	}

	return out
}
