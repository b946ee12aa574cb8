package indicator

import (
	"github.com/rxtech-lab/argo-fund/internal/types"
)

// Indicator is a configurable technical indicator.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config configures the indicator from positional parameters
	Config(params ...any) error
}

// zeroTolerance is the magnitude below which an oscillator value counts as zero.
const zeroTolerance = 1e-12
