package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
)

// MA indicator implements Simple Moving Average calculation.
type MA struct {
	period int
}

var _ Indicator = (*MA)(nil)

// NewMA creates a new MA indicator with default configuration.
func NewMA() *MA {
	return &MA{
		period: 20, // Default period
	}
}

// NewMAWithPeriod creates an MA of the given period. The period is not validated.
func NewMAWithPeriod(period int) *MA {
	return &MA{period: period}
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Config configures the MA indicator. Expected parameters: period (int or float).
func (m *MA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		// Try to convert to float first
		periodFloat, ok := params[0].(float64)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int or float")
		}

		period = int(periodFloat)
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	m.period = period

	return nil
}

// Period returns the configured period.
func (m *MA) Period() int {
	return m.period
}

// Calculate returns the trailing average of values. Indices before the first
// full window are None.
func (m *MA) Calculate(values []float64) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(values))
	if m.period <= 0 {
		return out
	}

	sum := 0.0

	for i, v := range values {
		sum += v
		if i >= m.period {
			sum -= values[i-m.period]
		}

		if i >= m.period-1 {
			out[i] = optional.Some(sum / float64(m.period))
		}
	}

	return out
}
