package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/rxtech-lab/argo-fund/internal/metrics"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"gopkg.in/yaml.v3"
)

// ActionStats counts the ledger mutations of a run.
type ActionStats struct {
	// Count of all actions.
	NumberOfActions int `yaml:"number_of_actions" json:"number_of_actions"`
	// Count of buy actions.
	NumberOfBuys int `yaml:"number_of_buys" json:"number_of_buys"`
	// Count of sell actions.
	NumberOfSells int `yaml:"number_of_sells" json:"number_of_sells"`
	// Total cash spent on buys.
	TotalBuyAmount float64 `yaml:"total_buy_amount" json:"total_buy_amount"`
	// Total proceeds of sells.
	TotalSellAmount float64 `yaml:"total_sell_amount" json:"total_sell_amount"`
}

type RunStats struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Name of the request.
	Name string `yaml:"name" json:"name"`
	// Strategy is the policy identifier of the request.
	Strategy string `yaml:"strategy" json:"strategy"`
	// FinalDate is the last simulated date.
	FinalDate string `yaml:"final_date" json:"final_date"`
	// FinalEquity is the value of the run on FinalDate.
	FinalEquity float64 `yaml:"final_equity" json:"final_equity"`
	// Actions of the run.
	Actions ActionStats `yaml:"actions" json:"actions"`
	// Performance is only set when the run produced an equity curve.
	Performance *metrics.Metrics `yaml:"performance,omitempty" json:"performance,omitempty"`
	// ResultFilePath is the path to the result JSON file.
	ResultFilePath string `yaml:"result_file_path" json:"result_file_path"`
}

// NewRunStats summarizes result.
func NewRunStats(result RunResult, resultPath string, at time.Time) RunStats {
	stats := RunStats{
		ID:             result.ID,
		Timestamp:      at,
		Name:           result.Name,
		Strategy:       result.Strategy,
		FinalDate:      result.Summary.FinalDate,
		FinalEquity:    result.Summary.FinalEquity,
		ResultFilePath: resultPath,
	}

	for _, a := range result.Actions {
		stats.Actions.NumberOfActions++

		switch a.Type {
		case types.TxnTypeBuy:
			stats.Actions.NumberOfBuys++
			stats.Actions.TotalBuyAmount += a.Amount
		case types.TxnTypeSell:
			stats.Actions.NumberOfSells++
			stats.Actions.TotalSellAmount += a.Amount
		}
	}

	if len(result.EquityCurve) > 0 {
		m := metrics.FromEquityCurve(result.EquityCurve, 0).Metrics
		stats.Performance = &m
	}

	return stats
}

func WriteRunStats(path string, stats RunStats) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run stats to YAML: %w", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run stats to file: %w", err)
	}

	return nil
}
