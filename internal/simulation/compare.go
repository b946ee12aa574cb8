package simulation

import (
	"encoding/json"
	"strings"

	"github.com/rxtech-lab/argo-fund/internal/indicator"
	"github.com/rxtech-lab/argo-fund/internal/logger"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
	"go.uber.org/zap"
)

// NamedConfig is one plan in a comparison.
type NamedConfig struct {
	Name   string `json:"name" yaml:"name" validate:"required"`
	Config Config `json:"cfg" yaml:"cfg"`
}

// UnmarshalJSON starts from DefaultConfig so a plan without cfg runs the defaults.
func (n *NamedConfig) UnmarshalJSON(data []byte) error {
	type plain NamedConfig

	p := plain{Name: "", Config: DefaultConfig()}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*n = NamedConfig(p)

	return nil
}

// CompareInput is the shared market data of a comparison.
type CompareInput struct {
	Input

	// ReferSeries is the raw reference index. When ReferPoints is empty, every
	// plan derives its own marks from it using its MACD gates.
	ReferSeries []types.SeriesPoint
}

// Compare runs every named plan over the same data with per-day series enabled.
// Plans with a blank name are skipped.
func Compare(in CompareInput, plans []NamedConfig, log *logger.Logger) (map[string]Result, error) {
	log = logger.OrNop(log)

	if len(plans) == 0 {
		return nil, errors.MissingParameter("strategies")
	}

	var macd []types.MacdPoint
	if len(in.ReferPoints) == 0 && len(in.ReferSeries) > 0 {
		macd = indicator.ComputeMACD(in.ReferSeries)
	}

	results := make(map[string]Result, len(plans))

	for _, plan := range plans {
		name := strings.TrimSpace(plan.Name)
		if name == "" {
			continue
		}

		run := in.Input
		if macd != nil {
			run.ReferPoints = indicator.MarkTransactions(macd,
				macdPosition(plan.Config.SellMacdPoint),
				macdPosition(plan.Config.BuyMacdPoint),
			)
		}

		results[name] = Run(run, plan.Config, true, &logger.Logger{Logger: log.With(zap.String("plan", name))})
	}

	if len(results) == 0 {
		return nil, errors.New(errors.ErrCodeSimulationConfigError, "no valid strategy names")
	}

	return results, nil
}
