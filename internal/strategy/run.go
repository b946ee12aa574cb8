package strategy

import (
	"strings"

	"github.com/moznion/go-optional"
	engine "github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/logger"
	"github.com/rxtech-lab/argo-fund/internal/trading"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultWindow       = 1
	defaultWindowDist   = 1
	defaultUpThreshold  = 1.0
	defaultPrev         = 10
	defaultXIRRTarget   = 0.2
	defaultHoldingTime  = 180
	defaultCheckWeekday = 4
)

// Run executes the policy selected by req.Params.
// Degenerate inputs never fail: they produce an empty or idle result.
func Run(req Request, log *logger.Logger) (types.StrategyResult, error) {
	e := newEnv(req, log)

	if req.Params != nil {
		e.log.Debug("running policy",
			zap.String("kind", string(req.Params.Kind())),
			zap.Int("open_dates", len(e.dates)),
			zap.String("start", e.start),
			zap.String("end", req.End),
		)
	}

	switch p := req.Params.(type) {
	case ScheduledParams:
		return runScheduled(e, p), nil
	case ScheduledTuneParams:
		return runScheduledTune(e, p), nil
	case ScheduledWindowParams:
		return runScheduledWindow(e, p), nil
	case BuyAndHoldParams:
		return runBuyAndHold(e, p), nil
	case BteScheduledParams:
		return runBteScheduled(e, p), nil
	case AverageScheduledParams:
		return runAverageScheduled(e, p), nil
	case GridParams:
		return runGrid(e, p), nil
	case IndicatorCrossParams:
		return runIndicatorCross(e, p), nil
	case IndicatorPointsParams:
		return runIndicatorPoints(e, p), nil
	case Tendency28Params:
		return runTendency28(e, p), nil
	case BalanceParams:
		return runBalance(e, p), nil
	case SellOnXIRRParams:
		return runSellOnXIRR(e, p), nil
	case nil:
		return types.StrategyResult{}, errors.MissingParameter("params")
	default:
		return types.StrategyResult{}, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported params %T", p)
	}
}

// env is the per-run view of a request shared by all policies.
type env struct {
	req    Request
	series map[string]*datasource.Series
	dates  []string
	start  string
	log    *logger.Logger
}

func newEnv(req Request, log *logger.Logger) *env {
	series := make(map[string]*datasource.Series, len(req.Series))
	for code, rows := range req.Series {
		series[code] = datasource.FromRows(rows)
	}

	dates := datasource.RestrictCalendar(req.OpenDates, req.Start, req.End)

	start := strings.TrimSpace(req.Start)
	if start == "" && len(dates) > 0 {
		start = dates[0]
	}

	return &env{
		req:    req,
		series: series,
		dates:  dates,
		start:  start,
		log:    logger.OrNop(log),
	}
}

func (e *env) ledger() trading.TradingSystem {
	return engine.NewBacktestTrading(engine.BacktestTradingConfig{
		InitialCash: e.req.TotMoney,
		Series:      e.series,
		Fees:        e.req.Fees,
	}, e.log)
}

func (e *env) finalDate() string {
	return e.dates[len(e.dates)-1]
}

// rowsByDate indexes the raw rows of code by trimmed date. Later rows win.
func (e *env) rowsByDate(code string) map[string]types.RawRow {
	rows := e.req.Series[code]

	out := make(map[string]types.RawRow, len(rows))
	for _, row := range rows {
		if d := datasource.DateOf(row); d != "" {
			out[d] = row
		}
	}

	return out
}

// idleResult is returned by engine backed policies that never trade.
func (e *env) idleResult() types.StrategyResult {
	return types.StrategyResult{
		Actions: []types.Action{},
		Summary: types.Summary{FinalEquity: e.req.TotMoney},
	}
}

// ledgerResult summarizes a ledger on the last open date.
func (e *env) ledgerResult(l trading.TradingSystem) types.StrategyResult {
	date := e.finalDate()

	return types.StrategyResult{
		Actions: l.Actions(),
		Summary: types.Summary{
			FinalDate:   date,
			FinalEquity: l.Equity(date),
			Cash:        optional.Some(l.Cash()),
			Holdings:    l.Holdings(),
		},
	}
}

// positive unwraps a price that exists and is above zero.
func positive(v optional.Option[float64]) (float64, bool) {
	if v.IsNone() {
		return 0, false
	}

	value := v.Unwrap()

	return value, value > 0
}
