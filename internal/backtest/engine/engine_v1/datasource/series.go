package datasource

import (
	"encoding/json"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fund/internal/types"
)

// valueKeys are the row keys read as the observation value, in order of precedence.
var valueKeys = []string{"val", "netvalue", "close"}

// Normalize parses raw rows into an ascending series.
// Rows with an empty date or without a numeric value are dropped.
// Input is treated as already deduplicated; equal dates keep their input order.
func Normalize(rows []types.RawRow) []types.SeriesPoint {
	points := make([]types.SeriesPoint, 0, len(rows))

	for _, row := range rows {
		date := DateOf(row)
		if date == "" {
			continue
		}

		value, ok := rowValue(row)
		if !ok {
			continue
		}

		points = append(points, types.SeriesPoint{Date: date, Value: value})
	}

	SortPoints(points)

	return points
}

// SortPoints sorts points by date, keeping the order of equal dates.
func SortPoints(points []types.SeriesPoint) {
	slices.SortStableFunc(points, func(a, b types.SeriesPoint) int {
		return strings.Compare(a.Date, b.Date)
	})
}

// DateOf returns the trimmed date of a raw row, or "" when absent.
func DateOf(row types.RawRow) string {
	raw, ok := row["date"]
	if !ok || raw == nil {
		return ""
	}

	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}

		return strings.Trim(strings.TrimSpace(string(b)), `"`)
	}
}

// Column reads a numeric column of a raw row.
func Column(row types.RawRow, key string) (float64, bool) {
	raw, ok := row[key]
	if !ok {
		return 0, false
	}

	return ParseNumber(raw)
}

// ParseNumber converts a decoded JSON or YAML scalar into a float.
func ParseNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()

		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)

		return f, err == nil
	default:
		return 0, false
	}
}

func rowValue(row types.RawRow) (float64, bool) {
	for _, key := range valueKeys {
		if _, ok := row[key]; ok {
			return Column(row, key)
		}
	}

	return 0, false
}

// Series is an ascending date series with indexed lookups.
type Series struct {
	points []types.SeriesPoint
	index  map[string]int
}

// NewSeries builds a series from points. The points are copied and sorted.
func NewSeries(points []types.SeriesPoint) *Series {
	copied := slices.Clone(points)
	SortPoints(copied)

	index := make(map[string]int, len(copied))
	for i, p := range copied {
		index[p.Date] = i
	}

	return &Series{points: copied, index: index}
}

// FromRows normalizes raw rows into a Series.
func FromRows(rows []types.RawRow) *Series {
	return NewSeries(Normalize(rows))
}

// Len returns the number of points.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}

	return len(s.points)
}

// Points returns the underlying points. Callers must not modify them.
func (s *Series) Points() []types.SeriesPoint {
	if s == nil {
		return nil
	}

	return s.points
}

// Dates returns the series dates in ascending order.
func (s *Series) Dates() []string {
	return types.Dates(s.Points())
}

// Last returns the last point of the series.
func (s *Series) Last() optional.Option[types.SeriesPoint] {
	if s.Len() == 0 {
		return optional.None[types.SeriesPoint]()
	}

	return optional.Some(s.points[len(s.points)-1])
}

// ValueAt returns the value observed exactly on date.
func (s *Series) ValueAt(date string) optional.Option[float64] {
	if s == nil {
		return optional.None[float64]()
	}

	i, ok := s.index[strings.TrimSpace(date)]
	if !ok {
		return optional.None[float64]()
	}

	return optional.Some(s.points[i].Value)
}

// ValueOnOrAfter returns the value of the first point dated on or after date.
// A non-trading date resolves to the next available observation.
func (s *Series) ValueOnOrAfter(date string) optional.Option[float64] {
	i := s.ceiling(strings.TrimSpace(date))
	if i < 0 {
		return optional.None[float64]()
	}

	return optional.Some(s.points[i].Value)
}

// ValueOnOrBefore returns the value of the last point dated on or before date.
func (s *Series) ValueOnOrBefore(date string) optional.Option[float64] {
	date = strings.TrimSpace(date)
	n := s.Len()
	i := sort.Search(n, func(i int) bool { return s.points[i].Date > date })

	if i == 0 {
		return optional.None[float64]()
	}

	return optional.Some(s.points[i-1].Value)
}

// Before returns the points dated strictly before date.
func (s *Series) Before(date string) []types.SeriesPoint {
	date = strings.TrimSpace(date)
	n := s.Len()
	i := sort.Search(n, func(i int) bool { return s.points[i].Date >= date })

	return s.points[:i]
}

func (s *Series) ceiling(date string) int {
	n := s.Len()
	i := sort.Search(n, func(i int) bool { return s.points[i].Date >= date })

	if i == n {
		return -1
	}

	return i
}

// RestrictCalendar trims, sorts and restricts open dates to [start, end].
// An empty bound leaves that side open.
func RestrictCalendar(openDates []string, start, end string) []string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)

	out := make([]string, 0, len(openDates))
	for _, d := range openDates {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}

		if start != "" && d < start {
			continue
		}

		if end != "" && d > end {
			continue
		}

		out = append(out, d)
	}

	slices.Sort(out)

	return out
}

// UnionDates returns the sorted union of the dates of all series.
func UnionDates(series ...*Series) []string {
	seen := make(map[string]struct{})

	var out []string

	for _, s := range series {
		for _, p := range s.Points() {
			if _, ok := seen[p.Date]; ok {
				continue
			}

			seen[p.Date] = struct{}{}
			out = append(out, p.Date)
		}
	}

	slices.Sort(out)

	return out
}

// DateSet builds a lookup set from a list of dates.
func DateSet(dates []string) map[string]struct{} {
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[strings.TrimSpace(d)] = struct{}{}
	}

	return set
}
