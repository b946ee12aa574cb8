package strategy

import (
	engine "github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/logger"
	"github.com/rxtech-lab/argo-fund/internal/types"
)

// DefaultSignalCode is the instrument code used when a signal backtest does not name one.
const DefaultSignalCode = "ASSET"

// SignalBacktest configures RunSignalBacktest.
type SignalBacktest struct {
	Series   []types.SeriesPoint
	Signals  []Signal
	TotMoney float64
	Fee      commission_fee.FeeConfig
	Code     string
}

// RunSignalBacktest replays signals over a single instrument. The calendar is the
// series itself. A buy invests all cash, a sell exits the whole position. The
// equity curve has one point per date.
func RunSignalBacktest(cfg SignalBacktest, log *logger.Logger) types.StrategyResult {
	code := cfg.Code
	if code == "" {
		code = DefaultSignalCode
	}

	series := datasource.NewSeries(cfg.Series)
	dates := datasource.RestrictCalendar(series.Dates(), "", "")

	if len(dates) == 0 {
		return types.StrategyResult{
			Actions:     []types.Action{},
			Summary:     types.Summary{FinalEquity: cfg.TotMoney},
			EquityCurve: []types.EquityPoint{},
		}
	}

	l := engine.NewBacktestTrading(engine.BacktestTradingConfig{
		InitialCash: cfg.TotMoney,
		Series:      map[string]*datasource.Series{code: series},
		Fees:        commission_fee.Fees{code: cfg.Fee},
	}, log)

	byDate := make(map[string][]Signal)
	for _, s := range cfg.Signals {
		d := s.Date
		if len(d) > 10 {
			d = d[:10]
		}

		byDate[d] = append(byDate[d], s)
	}

	curve := make([]types.EquityPoint, 0, len(dates))

	for _, d := range dates {
		for _, s := range byDate[d] {
			switch s.Type {
			case types.TxnTypeBuy:
				l.Buy(code, l.Cash(), d)
			case types.TxnTypeSell:
				l.Sell(code, engine.SellAllSignal, d)
			}
		}

		curve = append(curve, types.EquityPoint{
			Date:    d,
			Equity:  l.Equity(d),
			Cash:    l.Cash(),
			Holding: l.Holding(code),
		})
	}

	final := dates[len(dates)-1]

	return types.StrategyResult{
		Actions:     l.Actions(),
		Summary:     types.Summary{FinalDate: final, FinalEquity: l.Equity(final)},
		EquityCurve: curve,
	}
}
