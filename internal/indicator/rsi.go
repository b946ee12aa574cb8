package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
)

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	period int
}

var _ Indicator = (*RSI)(nil)

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() *RSI {
	return &RSI{
		period: 14, // Default period
	}
}

// NewRSIWithPeriod creates an RSI of the given period. The period is not validated.
func NewRSIWithPeriod(period int) *RSI {
	return &RSI{period: period}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
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

	r.period = period

	return nil
}

// Calculate returns the RSI of values. The first average of gains and losses is
// a simple mean over period changes, later ones use Wilder's smoothing.
// Indices with fewer than period changes behind them are None.
func (r *RSI) Calculate(values []float64) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(values))
	if r.period <= 0 || len(values) <= r.period {
		return out
	}

	n := float64(r.period)
	avgGain, avgLoss := 0.0, 0.0

	for i := 1; i < len(values); i++ {
		gain, loss := 0.0, 0.0
		if change := values[i] - values[i-1]; change > 0 {
			gain = change
		} else {
			loss = -change
		}

		switch {
		case i < r.period:
			avgGain += gain
			avgLoss += loss

			continue
		case i == r.period:
			avgGain = (avgGain + gain) / n
			avgLoss = (avgLoss + loss) / n
		default:
			avgGain = (avgGain*(n-1) + gain) / n
			avgLoss = (avgLoss*(n-1) + loss) / n
		}

		// Perfect uptrend
		if avgLoss == 0 {
			out[i] = optional.Some(100.0)

			continue
		}

		out[i] = optional.Some(100 - 100/(1+avgGain/avgLoss))
	}

	return out
}
