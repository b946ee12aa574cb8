package strategy

import (
	"encoding/json"
	"testing"

	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/internal/version"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RequestTestSuite struct {
	suite.Suite
}

func TestRequestSuite(t *testing.T) {
	suite.Run(t, new(RequestTestSuite))
}

func (suite *RequestTestSuite) body(strategy, params string) BacktestBody {
	return BacktestBody{
		Strategy: strategy,
		TotMoney: 1000,
		Series: map[string][]types.RawRow{
			"A": {
				{"date": "2026-01-03", "val": 1.0},
				{"date": "2026-01-01", "val": 1.0},
				{"date": " 2026-01-02 ", "val": 1.0},
			},
		},
		Params: json.RawMessage(params),
	}
}

func (suite *RequestTestSuite) TestBuildDefaultsFromSeries() {
	req, err := suite.body("scheduled", `{"code": "A", "times": ["2026-01-01"], "value": 10}`).Build()
	suite.Require().NoError(err)

	suite.Equal([]string{"2026-01-01", "2026-01-02", "2026-01-03"}, req.OpenDates)
	suite.Equal("2026-01-01", req.Start)
	suite.Equal("2026-01-03", req.End)
	suite.Equal(1000.0, req.TotMoney)
	suite.IsType(ScheduledParams{}, req.Params)
}

func (suite *RequestTestSuite) TestBuildKeepsExplicitCalendarAndBounds() {
	b := suite.body("bte_scheduled", `{"code": "A", "times": [], "value": 10}`)
	b.Calendar = &Calendar{OpenDates: []string{"2026-01-02", "2026-01-01", " "}}
	b.End = "2026-01-01"

	req, err := b.Build()
	suite.Require().NoError(err)
	suite.Equal([]string{"2026-01-01", "2026-01-02"}, req.OpenDates)
	suite.Equal("2026-01-01", req.Start)
	suite.Equal("2026-01-01", req.End)
}

func (suite *RequestTestSuite) TestBuildUnionsSeriesForMultiInstrument() {
	b := BacktestBody{
		Strategy: "bte_balance",
		TotMoney: 1000,
		Series: map[string][]types.RawRow{
			"A": rows(1, 1),
			"B": {{"date": "2026-01-05", "val": 1.0}},
		},
		Params: json.RawMessage(`{"portfolio_dict": {"A": 0.5, "B": 0.5}, "check_dates": ["2026-01-05"]}`),
	}

	req, err := b.Build()
	suite.Require().NoError(err)
	suite.Equal([]string{"2026-01-01", "2026-01-02", "2026-01-05"}, req.OpenDates)
}

func (suite *RequestTestSuite) TestBuildErrors() {
	tests := []struct {
		name   string
		mutate func(b *BacktestBody)
		code   errors.ErrorCode
	}{
		{
			name:   "missing strategy",
			mutate: func(b *BacktestBody) { b.Strategy = "" },
			code:   errors.ErrCodeMissingParameter,
		},
		{
			name:   "unsupported strategy",
			mutate: func(b *BacktestBody) { b.Strategy = "martingale" },
			code:   errors.ErrCodeUnsupportedStrategy,
		},
		{
			name:   "negative money",
			mutate: func(b *BacktestBody) { b.TotMoney = -1 },
			code:   errors.ErrCodeInvalidParameter,
		},
		{
			name:   "missing series",
			mutate: func(b *BacktestBody) { b.Params = json.RawMessage(`{"code": "B"}`) },
			code:   errors.ErrCodeSeriesNotFound,
		},
		{
			name:   "start after end",
			mutate: func(b *BacktestBody) { b.Start, b.End = "2026-02-01", "2026-01-01" },
			code:   errors.ErrCodeInvalidParameter,
		},
		{
			name:   "series without dates",
			mutate: func(b *BacktestBody) { b.Series["A"] = []types.RawRow{{"val": 1.0}} },
			code:   errors.ErrCodeEmptySeries,
		},
		{
			name:   "negative fee",
			mutate: func(b *BacktestBody) { b.Fees = map[string]commission_fee.FeeConfig{"A": {BuyFeeRate: -0.1}} },
			code:   errors.ErrCodeInvalidParameter,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			b := suite.body("buyandhold", `{"code": "A"}`)
			tc.mutate(&b)

			_, err := b.Build()
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, tc.code), err.Error())
			suite.True(errors.IsClientError(err))
		})
	}
}

func (suite *RequestTestSuite) TestBuildChecksVersion() {
	original := version.Version
	defer func() { version.Version = original }()

	version.Version = "v1.2.0"

	b := suite.body("buyandhold", `{"code": "A"}`)

	b.Version = "1.2.9"
	_, err := b.Build()
	suite.NoError(err)

	b.Version = "1.3.0"
	_, err = b.Build()
	suite.True(errors.HasCode(err, errors.ErrCodeVersionMismatch))
}

func (suite *RequestTestSuite) TestOutput() {
	suite.Equal("actions", suite.body("buyandhold", `{"code": "A"}`).Output())
	suite.Equal(OutputSummary, suite.body("buyandhold", `{"code": "A", "output": " Summary "}`).Output())
	suite.Equal("actions", BacktestBody{}.Output())
}
