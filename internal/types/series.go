package types

// SeriesPoint is one NAV or price observation.
type SeriesPoint struct {
	// Date is an ISO calendar date (YYYY-MM-DD). Dates compare lexicographically.
	Date string `json:"date" yaml:"date" jsonschema:"title=Date,description=Observation date in YYYY-MM-DD format"`
	// Value is the NAV or close price observed on Date.
	Value float64 `json:"val" yaml:"val" jsonschema:"title=Value,description=NAV or close price"`
}

// RawRow is an unparsed series row as received from a request body.
// Besides date and value it may carry indicator columns used by the indicator policies.
type RawRow map[string]any

// Dates returns the dates of the points in order.
func Dates(points []SeriesPoint) []string {
	dates := make([]string, 0, len(points))
	for _, p := range points {
		dates = append(dates, p.Date)
	}

	return dates
}
