package types

import (
	"github.com/moznion/go-optional"
)

// Summary is the final state of a policy run.
// Scheduled policies fill FinalNav and Portion, engine backed policies fill Cash and Holdings.
type Summary struct {
	FinalDate   string                   `json:"final_date" yaml:"final_date"`
	FinalNav    optional.Option[float64] `json:"final_nav,omitempty" yaml:"final_nav,omitempty"`
	FinalEquity float64                  `json:"final_equity" yaml:"final_equity"`
	Portion     optional.Option[float64] `json:"portion,omitempty" yaml:"portion,omitempty"`
	Cash        optional.Option[float64] `json:"cash,omitempty" yaml:"cash,omitempty"`
	Holdings    map[string]float64       `json:"holdings,omitempty" yaml:"holdings,omitempty"`
	Status      optional.Option[int]     `json:"status,omitempty" yaml:"status,omitempty"`
}

// EquityPoint is one step of an equity curve.
type EquityPoint struct {
	Date    string  `json:"date" yaml:"date"`
	Equity  float64 `json:"equity" yaml:"equity"`
	Cash    float64 `json:"cash" yaml:"cash"`
	Holding float64 `json:"holding" yaml:"holding"`
}

// StrategyResult is the uniform result of every policy.
type StrategyResult struct {
	Actions     []Action      `json:"actions" yaml:"actions"`
	Summary     Summary       `json:"summary" yaml:"summary"`
	EquityCurve []EquityPoint `json:"equity_curve,omitempty" yaml:"equity_curve,omitempty"`
}

// EmptyResult is returned by policies whose calendar is empty after restriction.
func EmptyResult() StrategyResult {
	return StrategyResult{Actions: []Action{}}
}
