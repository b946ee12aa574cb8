package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-fund/internal/report"
	"github.com/rxtech-lab/argo-fund/internal/strategy"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type BacktesterTestSuite struct {
	suite.Suite
	backtester *Backtester
}

func TestBacktesterSuite(t *testing.T) {
	suite.Run(t, new(BacktesterTestSuite))
}

func (suite *BacktesterTestSuite) SetupTest() {
	suite.backtester = NewBacktester(nil)
	suite.backtester.now = func() time.Time { return time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC) }
}

const scheduledJSON = `{
	"strategy": "scheduled",
	"series": {"A": [
		{"date": "2026-01-01", "val": 1.0},
		{"date": "2026-01-02", "val": 1.0},
		{"date": "2026-01-03", "val": 1.0}
	]},
	"params": {"code": "A", "times": ["2026-01-01", "2026-01-03"], "value": 1000, "output": "%s"}
}`

func scheduledBody(output string) strategy.BacktestBody {
	var body strategy.BacktestBody
	if err := json.Unmarshal([]byte(sprintf(scheduledJSON, output)), &body); err != nil {
		panic(err)
	}

	return body
}

func (suite *BacktesterTestSuite) TestBacktest() {
	result, err := suite.backtester.Backtest(context.Background(), scheduledBody("actions"))
	suite.Require().NoError(err)

	suite.NotEmpty(result.ID)
	suite.Equal("scheduled", result.Strategy)
	suite.Len(result.Actions, 2)
	suite.Equal(2000.0, result.Summary.FinalEquity)
	suite.Nil(result.Report)

	data, err := json.Marshal(result)
	suite.Require().NoError(err)

	var wire map[string]any
	suite.Require().NoError(json.Unmarshal(data, &wire))
	suite.Contains(wire, "actions")
	suite.Contains(wire, "summary")
	suite.Contains(wire, "run_id")
	suite.NotContains(wire, "report")
}

func (suite *BacktesterTestSuite) TestBacktestWithReport() {
	result, err := suite.backtester.Backtest(context.Background(), scheduledBody("SUMMARY"))
	suite.Require().NoError(err)
	suite.Require().NotNil(result.Report)

	rows := result.Report.Summary
	suite.Require().Len(rows, 2)
	suite.Equal("A", rows[0].Code)
	suite.Equal(2000.0, rows[0].Purchase)
	suite.Equal(2000.0, rows[0].CurrentValue)
	suite.Equal(report.TotalCode, rows[1].Code)
}

func (suite *BacktesterTestSuite) TestAlwaysReport() {
	suite.backtester.SetAlwaysReport(true)

	result, err := suite.backtester.Backtest(context.Background(), scheduledBody("actions"))
	suite.Require().NoError(err)
	suite.Require().NotNil(result.Report)
	suite.Len(result.Report.Summary, 2)
}

func (suite *BacktesterTestSuite) TestBacktestErrors() {
	testCases := []struct {
		name string
		body strategy.BacktestBody
		code errors.ErrorCode
	}{
		{name: "missing strategy", body: strategy.BacktestBody{}, code: errors.ErrCodeMissingParameter},
		{name: "unknown strategy", body: strategy.BacktestBody{Strategy: "martingale"}, code: errors.ErrCodeUnsupportedStrategy},
		{
			name: "missing series",
			body: strategy.BacktestBody{Strategy: "scheduled", Params: json.RawMessage(`{"code": "A", "times": [], "value": 1}`)},
			code: errors.ErrCodeSeriesNotFound,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := suite.backtester.Backtest(context.Background(), tc.body)
			suite.True(errors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func (suite *BacktesterTestSuite) TestBacktestCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.backtester.Backtest(ctx, scheduledBody("actions"))
	suite.ErrorIs(err, context.Canceled)
}

func (suite *BacktesterTestSuite) TestRunWritesResults() {
	folder := filepath.Join(suite.T().TempDir(), "results")
	suite.Require().NoError(suite.backtester.SetResultsFolder(folder))
	suite.Require().NoError(suite.backtester.LoadRequest("first", scheduledBody("actions")))
	suite.Require().NoError(suite.backtester.LoadRequest("second", scheduledBody("summary")))

	var events []string

	onStart := OnBacktestStartCallback(func(total int) error {
		events = append(events, sprintf("start:%d", total))
		return nil
	})
	onRunStart := OnRunStartCallback(func(runID string, index int, name string, strategyName string) error {
		suite.NotEmpty(runID)
		events = append(events, sprintf("run:%s:%s", name, strategyName))
		return nil
	})
	onRunEnd := OnRunEndCallback(func(_ string, index int, name string, resultPath string) {
		suite.FileExists(resultPath)
		events = append(events, sprintf("done:%d", index))
	})
	onProgress := OnProcessDataCallback(func(current, total int) error {
		events = append(events, sprintf("progress:%d/%d", current, total))
		return nil
	})
	onEnd := OnBacktestEndCallback(func(err error) {
		suite.NoError(err)
		events = append(events, "end")
	})

	results, err := suite.backtester.Run(context.Background(), LifecycleCallbacks{
		OnBacktestStart: &onStart,
		OnBacktestEnd:   &onEnd,
		OnRunStart:      &onRunStart,
		OnRunEnd:        &onRunEnd,
		OnProcessData:   &onProgress,
	})
	suite.Require().NoError(err)
	suite.Len(results, 2)
	suite.NotEqual(results[0].ID, results[1].ID)

	suite.Equal([]string{
		"start:2",
		"run:first:scheduled", "done:0", "progress:1/2",
		"run:second:scheduled", "done:1", "progress:2/2",
		"end",
	}, events)

	data, err := os.ReadFile(filepath.Join(folder, "second.stats.yaml"))
	suite.Require().NoError(err)

	var stats RunStats
	suite.Require().NoError(yaml.Unmarshal(data, &stats))
	suite.Equal(results[1].ID, stats.ID)
	suite.Equal("second", stats.Name)
	suite.Equal(2, stats.Actions.NumberOfBuys)
	suite.Equal(2000.0, stats.Actions.TotalBuyAmount)
	suite.Nil(stats.Performance)
	suite.Equal(filepath.Join(folder, "second.result.json"), stats.ResultFilePath)
}

func (suite *BacktesterTestSuite) TestRunStopsOnCallbackError() {
	suite.Require().NoError(suite.backtester.LoadRequest("", scheduledBody("actions")))

	abort := errors.New(errors.ErrCodeInternal, "abort")
	onRunStart := OnRunStartCallback(func(string, int, string, string) error { return abort })

	var ended error

	onEnd := OnBacktestEndCallback(func(err error) { ended = err })

	results, err := suite.backtester.Run(context.Background(), LifecycleCallbacks{OnRunStart: &onRunStart, OnBacktestEnd: &onEnd})
	suite.ErrorIs(err, abort)
	suite.ErrorIs(ended, abort)
	suite.Empty(results)
}

func (suite *BacktesterTestSuite) TestRunWithoutRequests() {
	_, err := suite.backtester.Run(context.Background(), LifecycleCallbacks{})
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}

func (suite *BacktesterTestSuite) TestLoadRequestFromYAML() {
	path := filepath.Join(suite.T().TempDir(), "weekly.yaml")
	content := `
strategy: buyandhold
totmoney: 1000
series:
  A:
    - {date: "2026-01-01", val: 2}
    - {date: "2026-01-02", val: 4}
params:
  code: A
`
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))
	suite.Require().NoError(suite.backtester.LoadRequestFromFile(path))

	results, err := suite.backtester.Run(context.Background(), LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.Require().Len(results, 1)
	suite.Equal("weekly", results[0].Name)
	suite.Equal(2000.0, results[0].Summary.FinalEquity)
}

const unquotedDatesYAML = `
strategy: scheduled
end: "2024-01-02"
series:
  A:
    - {date: 2024-01-01, val: 1.0}
    - {date: 2024-01-02, val: 1.0}
    - {date: 2024-01-03, val: 1.0}
params:
  code: A
  times: [2024-01-01, 2024-01-02]
  value: 1000
`

func (suite *BacktesterTestSuite) TestYAMLUnquotedDates() {
	body, err := DecodeRequest([]byte(unquotedDatesYAML), ".yaml")
	suite.Require().NoError(err)
	suite.Equal("2024-01-01", body.Series["A"][0]["date"])
	suite.JSONEq(`{"code": "A", "times": ["2024-01-01", "2024-01-02"], "value": 1000}`, string(body.Params))

	result, err := suite.backtester.Backtest(context.Background(), body)
	suite.Require().NoError(err)
	suite.Require().Len(result.Actions, 2)
	suite.Equal("2024-01-01", result.Actions[0].Date)
	suite.Equal("2024-01-02", result.Actions[1].Date)
	suite.Equal("2024-01-02", result.Summary.FinalDate)
}

func (suite *BacktesterTestSuite) TestYAMLKeepsPortfolioOrder() {
	content := `
strategy: bte_balance
totmoney: 1000
series:
  B: [{date: 2024-01-01, val: 1}]
  A: [{date: 2024-01-01, val: 1}]
params:
  portfolio_dict: {B: 0.6, A: 0.4}
  check_dates: [2024-01-01]
`
	body, err := DecodeRequest([]byte(content), ".yml")
	suite.Require().NoError(err)

	req, err := body.Build()
	suite.Require().NoError(err)

	params, ok := req.Params.(strategy.BalanceParams)
	suite.Require().True(ok)
	suite.Require().Len(params.Portfolio, 2)
	suite.Equal("B", params.Portfolio[0].Code)
	suite.Equal("A", params.Portfolio[1].Code)
	suite.Equal([]string{"2024-01-01"}, params.CheckDates)
}

func (suite *BacktesterTestSuite) TestYAMLToJSON() {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "scalars", input: "a: 1\nb: 1.5\nc: true\nd: ~\ne: text", expected: `{"a":1,"b":1.5,"c":true,"d":null,"e":"text"}`},
		{name: "timestamps stay literal", input: "d: 2024-01-01\nt: 2024-01-01T10:00:00Z", expected: `{"d":"2024-01-01","t":"2024-01-01T10:00:00Z"}`},
		{name: "quoted number stays a string", input: `v: "1.0"`, expected: `{"v":"1.0"}`},
		{name: "key order kept", input: "z: 1\na: 2\nm: 3", expected: `{"z":1,"a":2,"m":3}`},
		{name: "aliases resolved", input: "base: &b [1, 2]\ncopy: *b", expected: `{"base":[1,2],"copy":[1,2]}`},
		{name: "empty document", input: "", expected: `null`},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			out, err := yamlToJSON([]byte(tc.input))
			suite.Require().NoError(err)
			suite.Equal(tc.expected, string(out))
		})
	}
}

func (suite *BacktesterTestSuite) TestDecodeRequestErrors() {
	_, err := DecodeRequest([]byte("strategy: [unclosed"), ".yml")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidRequestBody))

	_, err = DecodeRequest([]byte("{"), ".json")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidRequestBody))

	err = suite.backtester.LoadRequestFromFile(filepath.Join(suite.T().TempDir(), "missing.json"))
	suite.True(errors.HasCode(err, errors.ErrCodeReadFailed))
}

func (suite *BacktesterTestSuite) TestGetRequestSchema() {
	schema, err := suite.backtester.GetRequestSchema()
	suite.Require().NoError(err)

	var decoded map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &decoded))
	suite.Contains(schema, "totmoney")
	suite.Contains(schema, "open_dates")
}

func (suite *BacktesterTestSuite) TestRunStatsPerformance() {
	result := RunResult{
		ID: "id",
		StrategyResult: types.StrategyResult{
			EquityCurve: []types.EquityPoint{{Date: "2026-01-01", Equity: 100}, {Date: "2026-01-02", Equity: 90}},
		},
	}

	stats := NewRunStats(result, "", time.Time{})
	suite.Require().NotNil(stats.Performance)
	suite.InDelta(-0.1, stats.Performance.MaxDrawdown, 1e-12)
}
