package indicator

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type MACDTestSuite struct {
	suite.Suite
}

func TestMACDSuite(t *testing.T) {
	suite.Run(t, new(MACDTestSuite))
}

func macdPoints(values ...float64) []types.MacdPoint {
	points := make([]types.MacdPoint, len(values))
	for i, v := range values {
		points[i] = types.MacdPoint{Index: i, Macd: v}
	}

	return points
}

func marked(points []types.MacdPoint) map[int]types.TxnType {
	out := map[int]types.TxnType{}
	for i, p := range points {
		if p.TxnType.IsSome() {
			out[i] = p.TxnType.Unwrap()
		}
	}

	return out
}

func (suite *MACDTestSuite) TestCalculateSeedsFirstPoint() {
	points := ComputeMACD([]types.SeriesPoint{
		{Date: "2024-01-01", Value: 1},
		{Date: "2024-01-02", Value: 2},
	})
	suite.Require().Len(points, 2)

	first := points[0]
	suite.Equal(1.0, first.EmaFast)
	suite.Equal(1.0, first.EmaSlow)
	suite.Equal(0.0, first.Diff)
	suite.Equal(0.0, first.Signal)
	suite.Equal(0.0, first.Macd)

	second := points[1]
	fast := (2.0*2 + 11.0*1) / 13.0
	slow := (2.0*2 + 25.0*1) / 27.0
	diff := fast - slow
	dea := (2.0 * diff) / 10.0
	suite.InDelta(fast, second.EmaFast, 1e-12)
	suite.InDelta(slow, second.EmaSlow, 1e-12)
	suite.InDelta(diff, second.Diff, 1e-12)
	suite.InDelta(dea, second.Signal, 1e-12)
	suite.InDelta(2*(diff-dea), second.Macd, 1e-12)
	suite.Equal(1, second.Index)
	suite.Equal("2024-01-02", second.Date)
}

func (suite *MACDTestSuite) TestCalculateEmpty() {
	suite.Empty(ComputeMACD(nil))
}

func (suite *MACDTestSuite) TestZonePositions() {
	series := []types.SeriesPoint{}
	values := []float64{1, 1.1, 1.3, 1.2, 1.0, 0.8, 0.7, 0.9, 1.2, 1.4}
	for i, v := range values {
		series = append(series, types.SeriesPoint{Date: "2024-01-" + string(rune('a'+i)), Value: v})
	}

	points := ComputeMACD(series)
	suite.Equal(0.0, points[0].ZonePosition)

	sawPeak := false
	for _, p := range points[1:] {
		suite.GreaterOrEqual(p.ZonePosition, 0.0)
		suite.LessOrEqual(p.ZonePosition, 1.0)
		if p.ZonePosition == 1.0 {
			sawPeak = true
		}
	}
	suite.True(sawPeak)
}

func (suite *MACDTestSuite) TestMarkTransactions() {
	tests := []struct {
		name     string
		macd     []float64
		sell     float64
		buy      float64
		expected map[int]types.TxnType
	}{
		{
			name:     "single positive zone",
			macd:     []float64{1, 4, 2, 1},
			sell:     0.5,
			buy:      0.5,
			expected: map[int]types.TxnType{2: types.TxnTypeSell},
		},
		{
			name:     "mixed zones",
			macd:     []float64{1, 10, 8, 7, -1, -4, -3, -2},
			sell:     0.75,
			buy:      0.5,
			expected: map[int]types.TxnType{3: types.TxnTypeSell, 7: types.TxnTypeBuy},
		},
		{
			name:     "new high after a signal fires again",
			macd:     []float64{4, 2, 5, 2},
			sell:     0.5,
			buy:      0.5,
			expected: map[int]types.TxnType{1: types.TxnTypeSell, 3: types.TxnTypeSell},
		},
		{
			name:     "peak never decays",
			macd:     []float64{1, 4, 3},
			sell:     0.5,
			buy:      0.5,
			expected: map[int]types.TxnType{},
		},
		{
			name:     "zero sell threshold disables positive zones",
			macd:     []float64{1, 10, 8, 7, -1, -4, -3, -2},
			sell:     0,
			buy:      0.5,
			expected: map[int]types.TxnType{7: types.TxnTypeBuy},
		},
		{
			name:     "zero buy threshold disables negative zones",
			macd:     []float64{1, 10, 8, 7, -1, -4, -3, -2},
			sell:     0.75,
			buy:      0,
			expected: map[int]types.TxnType{3: types.TxnTypeSell},
		},
		{
			name:     "flat zone is skipped",
			macd:     []float64{0, 0, 0},
			sell:     0.5,
			buy:      0.5,
			expected: map[int]types.TxnType{},
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, marked(MarkTransactions(macdPoints(tc.macd...), tc.sell, tc.buy)))
		})
	}
}

func (suite *MACDTestSuite) TestMarkTransactionsDoesNotModifyInput() {
	input := macdPoints(1, 4, 2, 1)
	input[0].TxnType = optional.Some(types.TxnTypeBuy)

	out := MarkTransactions(input, 0.5, 0.5)
	suite.True(input[0].TxnType.IsSome())
	suite.True(input[2].TxnType.IsNone())
	suite.True(out[0].TxnType.IsNone())
	suite.Equal(types.TxnTypeSell, out[2].TxnType.Unwrap())
}

func (suite *MACDTestSuite) TestConfig() {
	m := NewMACD()
	suite.Equal(types.IndicatorTypeMACD, m.Name())
	suite.NoError(m.Config(6, 13, 5))

	err := m.Config(6, 13)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))

	err = m.Config(6, "13", 5)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidType))

	err = m.Config(0, 13, 5)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	err = m.Config(26, 12, 9)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (suite *MACDTestSuite) TestEMA() {
	ema := NewEMA()
	suite.Equal(types.IndicatorTypeEMA, ema.Name())
	suite.Equal(20, ema.Period())
	suite.NoError(ema.Config(3))

	// alpha = 2/(3+1) = 0.5
	suite.Equal([]float64{2, 3, 3.5}, ema.Calculate([]float64{2, 4, 4}))

	suite.Error(ema.Config())
	suite.Error(ema.Config(-1))
	suite.Error(ema.Config(1.5))
}
