package datasource

import (
	"encoding/json"
	"testing"

	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/stretchr/testify/suite"
)

type SeriesTestSuite struct {
	suite.Suite
}

func TestSeriesSuite(t *testing.T) {
	suite.Run(t, new(SeriesTestSuite))
}

func (suite *SeriesTestSuite) TestNormalize() {
	rows := []types.RawRow{
		{"date": "2024-01-03", "val": 1.3},
		{"date": "", "val": 9.0},
		{"date": "2024-01-01", "val": "1.1"},
		{"date": "2024-01-02", "val": "abc"},
		{"date": " 2024-01-04 ", "netvalue": json.Number("1.4")},
		{"date": "2024-01-05"},
		{"val": 2.0},
	}

	points := Normalize(rows)
	suite.Equal([]types.SeriesPoint{
		{Date: "2024-01-01", Value: 1.1},
		{Date: "2024-01-03", Value: 1.3},
		{Date: "2024-01-04", Value: 1.4},
	}, points)
}

func (suite *SeriesTestSuite) TestValueOnOrAfter() {
	s := NewSeries([]types.SeriesPoint{
		{Date: "2024-01-05", Value: 1.5},
		{Date: "2024-01-02", Value: 1.2},
	})

	tests := []struct {
		name     string
		date     string
		expected float64
		found    bool
	}{
		{name: "before first resolves to first", date: "2024-01-01", expected: 1.2, found: true},
		{name: "exact date", date: "2024-01-02", expected: 1.2, found: true},
		{name: "gap rolls forward not back", date: "2024-01-03", expected: 1.5, found: true},
		{name: "after last is unavailable", date: "2024-01-06", found: false},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			v := s.ValueOnOrAfter(tc.date)
			suite.Equal(tc.found, v.IsSome())
			if tc.found {
				suite.Equal(tc.expected, v.Unwrap())
			}
		})
	}
}

func (suite *SeriesTestSuite) TestValueOnOrBefore() {
	s := NewSeries([]types.SeriesPoint{
		{Date: "2024-01-02", Value: 1.2},
		{Date: "2024-01-05", Value: 1.5},
	})

	suite.True(s.ValueOnOrBefore("2024-01-01").IsNone())
	suite.Equal(1.2, s.ValueOnOrBefore("2024-01-03").Unwrap())
	suite.Equal(1.5, s.ValueOnOrBefore("2024-02-01").Unwrap())
}

func (suite *SeriesTestSuite) TestBeforeAndValueAt() {
	s := NewSeries([]types.SeriesPoint{
		{Date: "2024-01-01", Value: 1},
		{Date: "2024-01-02", Value: 2},
		{Date: "2024-01-03", Value: 3},
	})

	suite.Len(s.Before("2024-01-03"), 2)
	suite.Len(s.Before("2024-01-01"), 0)
	suite.Equal(2.0, s.ValueAt("2024-01-02").Unwrap())
	suite.True(s.ValueAt("2024-01-04").IsNone())
	suite.Equal("2024-01-03", s.Last().Unwrap().Date)
}

func (suite *SeriesTestSuite) TestEmptySeries() {
	var s *Series
	suite.Equal(0, s.Len())
	suite.True(s.ValueOnOrAfter("2024-01-01").IsNone())
	suite.True(s.ValueOnOrBefore("2024-01-01").IsNone())
	suite.True(s.Last().IsNone())
	suite.Empty(s.Before("2024-01-01"))
}

func (suite *SeriesTestSuite) TestRestrictCalendar() {
	dates := []string{"2024-01-03", " ", "2024-01-01", "2024-01-02", "2024-01-04"}

	suite.Equal([]string{"2024-01-02", "2024-01-03"}, RestrictCalendar(dates, "2024-01-02", "2024-01-03"))
	suite.Equal([]string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"}, RestrictCalendar(dates, "", ""))
	suite.Empty(RestrictCalendar(dates, "2025-01-01", ""))
}

func (suite *SeriesTestSuite) TestUnionDates() {
	a := NewSeries([]types.SeriesPoint{{Date: "2024-01-01"}, {Date: "2024-01-03"}})
	b := NewSeries([]types.SeriesPoint{{Date: "2024-01-02"}, {Date: "2024-01-03"}})

	suite.Equal([]string{"2024-01-01", "2024-01-02", "2024-01-03"}, UnionDates(a, b))
}
