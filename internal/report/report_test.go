package report

import (
	"strings"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/stretchr/testify/suite"
)

type ReportTestSuite struct {
	suite.Suite
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}

func navs() []types.SeriesPoint {
	return []types.SeriesPoint{
		{Date: "2026-01-01", Value: 1.0},
		{Date: "2026-01-02", Value: 1.25},
		{Date: "2026-01-05", Value: 1.5},
	}
}

func roundTrip() []types.Action {
	return []types.Action{
		{Date: "2026-01-02", Code: "A", Type: types.TxnTypeSell, Share: 400},
		{Date: "2026-01-01", Code: "A", Type: types.TxnTypeBuy, Amount: 1000},
		{Date: "2026-01-01", Code: "B", Type: types.TxnTypeBuy, Amount: 500},
	}
}

func (suite *ReportTestSuite) TestReplay() {
	trade := BuildTrade("A", "", navs(), roundTrip(), commission_fee.DefaultFeeConfig())

	suite.Equal("A", trade.Name)
	suite.Equal(600.0, trade.Share())
	suite.Equal([]types.Cashflow{
		{Date: "2026-01-01", Code: "A", Cash: -1000},
		{Date: "2026-01-02", Code: "A", Cash: 500},
	}, trade.Cashflows())

	row := trade.Report("2026-01-02")
	suite.Equal(optional.Some(1.25), row.NetValue)
	suite.Equal(optional.Some(1.0), row.UnitCost)
	suite.Equal(750.0, row.CurrentValue)
	suite.Equal(1000.0, row.Purchase)
	suite.Equal(500.0, row.Output)
	suite.Equal(250.0, row.Earn)
	suite.Equal(1000.0, row.Bottleneck)
	suite.Equal(600.0, row.CostAmount)
	suite.Equal(25.0, row.Rate)
}

func (suite *ReportTestSuite) TestReportDateUsesPreviousClose() {
	trade := BuildTrade("A", "Alpha", navs(), roundTrip(), commission_fee.DefaultFeeConfig())

	row := trade.Report("2026-01-04T00:00:00")
	suite.Equal(optional.Some(1.25), row.NetValue)

	row = trade.Report("2025-12-31")
	suite.Equal(optional.Some(0.0), row.NetValue)
	suite.Equal(0.0, row.Bottleneck)
	suite.Equal(0.0, row.Rate)
}

func (suite *ReportTestSuite) TestFeesAndRoundDown() {
	fee := commission_fee.FeeConfig{BuyFeeRate: 0.015, SellFeeRate: 0.005, RoundLabel: 2}
	actions := []types.Action{{Date: "2026-01-01", Code: "A", Type: types.TxnTypeBuy, Amount: 1000}}

	series := []types.SeriesPoint{{Date: "2026-01-01", Value: 3}, {Date: "2026-01-02", Value: 3.1}}
	trade := BuildTrade("A", "A", series, actions, fee)

	// 1000 / 1.015 = 985.22, / 3 = 328.406 rounded down.
	suite.Equal(328.4, trade.Share())

	row := trade.Report("2026-01-01")
	suite.Equal(optional.Some(3.0451), row.UnitCost)

	// unit cost and rate keep four decimals
	row = trade.Report("2026-01-02")
	suite.Equal(1018.04, row.CurrentValue)
	suite.Equal(18.04, row.Earn)
	suite.Equal(1.804, row.Rate)
}

func (suite *ReportTestSuite) TestRejectedOrders() {
	actions := []types.Action{
		{Date: "2025-12-01", Code: "A", Type: types.TxnTypeBuy, Amount: 1000},
		{Date: "2026-01-01", Code: "A", Type: types.TxnTypeSell, Share: 10},
		{Date: "2026-01-01", Code: "A", Type: types.TxnTypeBuy, Amount: 100},
		{Date: "2026-01-02", Code: "A", Type: types.TxnTypeSell, Share: 101},
	}

	trade := BuildTrade("A", "A", navs(), actions, commission_fee.DefaultFeeConfig())

	suite.Equal(100.0, trade.Share())
	suite.Len(trade.Cashflows(), 1)
}

func (suite *ReportTestSuite) TestSummaryTotalRow() {
	trades := []*Trade{
		BuildTrade("A", "A", navs(), roundTrip(), commission_fee.DefaultFeeConfig()),
		BuildTrade("B", "B", navs(), roundTrip(), commission_fee.DefaultFeeConfig()),
	}

	rows := Summary(trades, "2026-01-05")
	suite.Require().Len(rows, 3)

	total := rows[2]
	suite.Equal(TotalCode, total.Code)
	suite.True(total.NetValue.IsNone())
	suite.True(total.Share.IsNone())
	// A: 600 * 1.5 = 900, B: 500 * 1.5 = 750.
	suite.Equal(1650.0, total.CurrentValue)
	suite.Equal(1500.0, total.Purchase)
	suite.Equal(1500.0, total.Bottleneck)
	// A earns 400, B earns 250.
	suite.Equal(650.0, total.Earn)
	suite.Equal(43.3333, total.Rate)
}

func (suite *ReportTestSuite) TestBuild() {
	testCases := []struct {
		name     string
		src      Source
		expected int
		date     string
	}{
		{
			name: "codeless actions belong to the single series",
			src: Source{
				Series: map[string][]types.RawRow{"A": {{"date": "2026-01-01", "val": 1.0}, {"date": "2026-01-02", "val": 2.0}}},
				Result: types.StrategyResult{
					Actions: []types.Action{{Date: "2026-01-01", Type: types.TxnTypeBuy, Amount: 100}},
				},
			},
			expected: 2,
			date:     "2026-01-02",
		},
		{
			name: "final date wins",
			src: Source{
				Series: map[string][]types.RawRow{"A": {{"date": "2026-01-01", "val": 1.0}, {"date": "2026-01-02", "val": 2.0}}},
				End:    "2026-01-02",
				Result: types.StrategyResult{
					Actions: []types.Action{{Date: "2026-01-01", Type: types.TxnTypeBuy, Amount: 100}},
					Summary: types.Summary{FinalDate: "2026-01-01"},
				},
			},
			expected: 2,
			date:     "2026-01-01",
		},
		{
			name:     "no series",
			src:      Source{},
			expected: 0,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			rows := Build(tc.src)
			suite.Len(rows, tc.expected)

			if tc.expected == 0 {
				return
			}

			suite.Equal(100.0, rows[0].Purchase)

			nav, err := rows[0].NetValue.Take()
			suite.Require().NoError(err)

			if tc.date == "2026-01-01" {
				suite.Equal(1.0, nav)
			} else {
				suite.Equal(2.0, nav)
			}
		})
	}
}

func (suite *ReportTestSuite) TestRenderTable() {
	rows := Summary([]*Trade{BuildTrade("A", "Alpha", navs(), roundTrip(), commission_fee.DefaultFeeConfig())}, "2026-01-02")

	out := RenderTable(rows)

	suite.Contains(out, "Alpha")
	suite.Contains(out, "Bottleneck")
	suite.Contains(out, "25.0000")
	suite.Contains(out, TotalName)
	suite.True(strings.Contains(out, "-"))
}
