package strategy

import (
	"testing"

	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/stretchr/testify/suite"
)

type SignalTestSuite struct {
	suite.Suite
}

func TestSignalSuite(t *testing.T) {
	suite.Run(t, new(SignalTestSuite))
}

// wave rises to a peak, falls through a trough and recovers.
func wave() []types.SeriesPoint {
	values := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1, 2, 3, 4, 5}

	out := make([]types.SeriesPoint, len(values))
	for i, v := range values {
		out[i] = types.SeriesPoint{Date: day(i + 1), Value: v}
	}

	return out
}

func (suite *SignalTestSuite) TestRegistry() {
	noop := func([]types.SeriesPoint, map[string]any) []Signal { return nil }

	r := NewSignalRegistry(
		SignalSpec{ID: "zeta", Title: "Z", Generate: noop},
		SignalSpec{ID: "alpha", Title: "A", Generate: noop},
		SignalSpec{ID: "zeta", Title: "Z2", Generate: noop},
	)

	list := r.List()
	suite.Require().Len(list, 2)
	suite.Equal("alpha", list[0].ID)
	suite.Equal("Z2", list[1].Title)

	_, ok := r.Get(" alpha ")
	suite.True(ok)

	_, ok = r.Get("missing")
	suite.False(ok)
}

func (suite *SignalTestSuite) TestDefaultRegistry() {
	list := DefaultSignalRegistry().List()
	suite.Require().Len(list, 3)
	suite.Equal("ma_cross", list[0].ID)
	suite.Equal("macd_cross", list[1].ID)
	suite.Equal("rsi", list[2].ID)

	for _, spec := range list {
		suite.NotNil(spec.Generate, spec.ID)
	}
}

func (suite *SignalTestSuite) TestMaCrossSignals() {
	signals := MaCrossSignals(wave(), map[string]any{"fast": 2, "slow": "4"})

	suite.Equal([]Signal{
		{Date: day(7), Type: types.TxnTypeSell, Reason: "ma_death_cross"},
		{Date: day(11), Type: types.TxnTypeBuy, Reason: "ma_golden_cross"},
	}, signals)
}

func (suite *SignalTestSuite) TestMaCrossDefaultsNeedLongSeries() {
	suite.Empty(MaCrossSignals(wave(), nil))
}

func (suite *SignalTestSuite) TestRsiSignals() {
	signals := RsiSignals(wave(), map[string]any{"period": 3})

	suite.Equal([]Signal{
		{Date: day(4), Type: types.TxnTypeSell, Reason: "rsi_overbought"},
		{Date: day(8), Type: types.TxnTypeBuy, Reason: "rsi_oversold"},
		{Date: day(12), Type: types.TxnTypeSell, Reason: "rsi_overbought"},
	}, signals)
}

func (suite *SignalTestSuite) TestMacdCrossSignals() {
	signals := MacdCrossSignals(wave(), map[string]any{"sell_position": 0.7, "buy_position": "0.7"})

	suite.Equal([]Signal{
		{Date: day(8), Type: types.TxnTypeSell, Reason: "macd_sell"},
		{Date: day(11), Type: types.TxnTypeBuy, Reason: "macd_buy"},
	}, signals)
}

func (suite *SignalTestSuite) TestMacdCrossSignalsDisabledSide() {
	signals := MacdCrossSignals(wave(), map[string]any{"sell_position": 0})

	suite.Equal([]Signal{{Date: day(11), Type: types.TxnTypeBuy, Reason: "macd_buy"}}, signals)
}

func (suite *SignalTestSuite) TestRunSignalBacktest() {
	series := wave()

	result := RunSignalBacktest(SignalBacktest{
		Series:   series,
		Signals:  MacdCrossSignals(series, nil),
		TotMoney: 1000,
	}, nil)

	// The sell on 2026-01-08 has nothing to sell.
	suite.Require().Len(result.Actions, 1)
	suite.Equal(DefaultSignalCode, result.Actions[0].Code)
	suite.Equal(333.33, result.Actions[0].Share)

	suite.Len(result.EquityCurve, len(series))
	suite.Equal(types.EquityPoint{Date: day(1), Equity: 1000, Cash: 1000, Holding: 0}, result.EquityCurve[0])
	suite.Equal(333.33, result.EquityCurve[10].Holding)
	suite.Equal(1666.65, result.Summary.FinalEquity)
	suite.Equal(day(13), result.Summary.FinalDate)
}

func (suite *SignalTestSuite) TestRunSignalBacktestRoundTrip() {
	series := []types.SeriesPoint{
		{Date: day(1), Value: 2},
		{Date: day(2), Value: 4},
	}

	result := RunSignalBacktest(SignalBacktest{
		Series: series,
		Signals: []Signal{
			{Date: day(1), Type: types.TxnTypeBuy},
			{Date: day(2) + "T00:00:00", Type: types.TxnTypeSell},
		},
		TotMoney: 100,
		Fee:      commission_fee.FeeConfig{SellFeeRate: 0.01},
		Code:     "X",
	}, nil)

	suite.Require().Len(result.Actions, 2)
	suite.Equal("X", result.Actions[1].Code)
	suite.Equal(198.0, result.Summary.FinalEquity)
	suite.Equal(0.0, result.EquityCurve[1].Holding)
}

func (suite *SignalTestSuite) TestRunSignalBacktestEmpty() {
	result := RunSignalBacktest(SignalBacktest{TotMoney: 50}, nil)

	suite.Empty(result.Actions)
	suite.Empty(result.EquityCurve)
	suite.Equal(50.0, result.Summary.FinalEquity)
}
