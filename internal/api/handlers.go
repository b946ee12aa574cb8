package api

import (
	"net/http"
	"strings"

	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/indicator"
	"github.com/rxtech-lab/argo-fund/internal/logger"
	"github.com/rxtech-lab/argo-fund/internal/metrics"
	"github.com/rxtech-lab/argo-fund/internal/simulation"
	"github.com/rxtech-lab/argo-fund/internal/strategy"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/internal/utils"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
	"go.uber.org/zap"
)

// MacdRequest computes MACD from series, or marks the given points when series is empty.
type MacdRequest struct {
	Points       []types.MacdPoint `json:"points"`
	Series       []types.RawRow    `json:"series"`
	SellPosition float64           `json:"sell_position" validate:"gte=0"`
	BuyPosition  float64           `json:"buy_position" validate:"gte=0"`
}

// MetricsRequest asks for the performance metrics of a series.
type MetricsRequest struct {
	Series         []types.RawRow `json:"series"`
	RiskFreeAnnual float64        `json:"risk_free_annual"`
}

// GridRequest asks for anchor-reset grid signals on a series.
type GridRequest struct {
	Series      []types.RawRow `json:"series"`
	GridStepPct float64        `json:"grid_step_pct"`
}

// ScheduledRequest asks for a buy on every n-th row of a series.
type ScheduledRequest struct {
	Series []types.RawRow `json:"series"`
	EveryN int            `json:"every_n"`
	Amount float64        `json:"amount"`
}

// QdiiPredictRequest estimates a QDII net value from its legs.
type QdiiPredictRequest struct {
	LastValue *float64           `json:"last_value" validate:"required"`
	Legs      []strategy.QdiiLeg `json:"legs"`
}

// SignalBacktestRequest runs a registered signal generator over one instrument.
type SignalBacktestRequest struct {
	Strategy string                   `json:"strategy"`
	TotMoney float64                  `json:"totmoney" validate:"gte=0"`
	Series   []types.RawRow           `json:"series"`
	Params   map[string]any           `json:"params"`
	Fees     commission_fee.FeeConfig `json:"fees"`
}

// SignalBacktestResponse echoes the strategy and the generated signals next to the result.
type SignalBacktestResponse struct {
	Strategy string            `json:"strategy"`
	Signals  []strategy.Signal `json:"signals"`

	types.StrategyResult
}

// SimulationRequest runs the daily simulation for one configuration.
type SimulationRequest struct {
	FundSeries       []types.RawRow    `json:"fund_series"`
	ShangzhengSeries []types.RawRow    `json:"shangzheng_series"`
	ReferIndexPoints []types.MacdPoint `json:"refer_index_points"`
	Cfg              simulation.Config `json:"cfg"`
}

// CompareRequest runs several named configurations over the same data.
type CompareRequest struct {
	FundSeries       []types.RawRow           `json:"fund_series"`
	ShangzhengSeries []types.RawRow           `json:"shangzheng_series"`
	ReferIndexPoints []types.MacdPoint        `json:"refer_index_points"`
	ReferIndexSeries []types.RawRow           `json:"refer_index_series"`
	Strategies       []simulation.NamedConfig `json:"strategies"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var body strategy.BacktestBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	if err := body.Validate(); err != nil {
		s.writeError(w, err)

		return
	}

	result, err := s.runner.Backtest(r.Context(), body)
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMacd(w http.ResponseWriter, r *http.Request) {
	body := MacdRequest{SellPosition: 0.75, BuyPosition: 0.5}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	points := body.Points
	if len(body.Series) > 0 {
		points = indicator.ComputeMACD(datasource.Normalize(body.Series))
	}

	if points == nil {
		points = []types.MacdPoint{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"points": indicator.MarkTransactions(points, body.SellPosition, body.BuyPosition),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var body MetricsRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, metrics.FromRows(body.Series, body.RiskFreeAnnual))
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	body := GridRequest{GridStepPct: strategy.DefaultGridStepPct}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"actions": strategy.GridActions(body.Series, body.GridStepPct)})
}

func (s *Server) handleScheduled(w http.ResponseWriter, r *http.Request) {
	body := ScheduledRequest{EveryN: strategy.DefaultEveryN, Amount: strategy.DefaultEveryAmount}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"actions": strategy.ScheduledActions(body.Series, body.EveryN, body.Amount)})
}

func (s *Server) handleQdiiPredict(w http.ResponseWriter, r *http.Request) {
	var body QdiiPredictRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, strategy.PredictQDII(*body.LastValue, body.Legs))
}

func (s *Server) handleSignalList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"strategies": s.signals.List()})
}

func (s *Server) handleSignalBacktest(w http.ResponseWriter, r *http.Request) {
	body := SignalBacktestRequest{Fees: commission_fee.FeeConfig{RoundLabel: utils.RoundDown}}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	id := strings.TrimSpace(body.Strategy)
	if id == "" {
		s.writeError(w, errors.MissingParameter("strategy"))

		return
	}

	spec, ok := s.signals.Get(id)
	if !ok {
		s.writeError(w, errors.Newf(errors.ErrCodeSignalNotFound, "unsupported strategy: %s", id))

		return
	}

	series := datasource.Normalize(body.Series)
	if len(series) == 0 {
		s.writeError(w, errors.MissingParameter("series"))

		return
	}

	signals := spec.Generate(series, body.Params)
	if signals == nil {
		signals = []strategy.Signal{}
	}

	result := strategy.RunSignalBacktest(strategy.SignalBacktest{
		Series:   series,
		Signals:  signals,
		TotMoney: body.TotMoney,
		Fee:      body.Fees,
		Code:     strategy.DefaultSignalCode,
	}, &logger.Logger{Logger: s.log.With(zap.String("signal", id))})

	writeJSON(w, http.StatusOK, SignalBacktestResponse{Strategy: id, Signals: signals, StrategyResult: result})
}

func (s *Server) handleFundSimulation(w http.ResponseWriter, r *http.Request) {
	body := SimulationRequest{Cfg: simulation.DefaultConfig()}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	if err := body.Cfg.Validate(); err != nil {
		s.writeError(w, err)

		return
	}

	in := simulation.Input{
		FundSeries:  datasource.Normalize(body.FundSeries),
		IndexSeries: datasource.Normalize(body.ShangzhengSeries),
		ReferPoints: body.ReferIndexPoints,
	}

	writeJSON(w, http.StatusOK, simulation.Run(in, body.Cfg, false, s.log))
}

func (s *Server) handleFundCompare(w http.ResponseWriter, r *http.Request) {
	var body CompareRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	for _, plan := range body.Strategies {
		if err := plan.Config.Validate(); err != nil {
			s.writeError(w, errors.Wrapf(errors.GetCode(err), err, "strategy %s", plan.Name))

			return
		}
	}

	in := simulation.CompareInput{
		Input: simulation.Input{
			FundSeries:  datasource.Normalize(body.FundSeries),
			IndexSeries: datasource.Normalize(body.ShangzhengSeries),
			ReferPoints: body.ReferIndexPoints,
		},
		ReferSeries: datasource.Normalize(body.ReferIndexSeries),
	}

	results, err := simulation.Compare(in, body.Strategies, s.log)
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"strategies": results})
}
