package report

import (
	"slices"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/internal/utils"
)

const (
	TotalCode = "total"
	TotalName = "Total"
)

// Row is one line of the summary report. The per-unit columns are empty on the total row.
type Row struct {
	Name         string                   `json:"name" yaml:"name"`
	Code         string                   `json:"code" yaml:"code"`
	NetValue     optional.Option[float64] `json:"netvalue" yaml:"netvalue"`
	UnitCost     optional.Option[float64] `json:"unit_cost" yaml:"unit_cost"`
	Share        optional.Option[float64] `json:"share" yaml:"share"`
	CurrentValue float64                  `json:"current_value" yaml:"current_value"`
	Purchase     float64                  `json:"purchase" yaml:"purchase"`
	// Bottleneck is the largest cumulative net cash outlay.
	Bottleneck float64 `json:"bottleneck" yaml:"bottleneck"`
	CostAmount float64 `json:"cost_amount" yaml:"cost_amount"`
	Output     float64 `json:"output" yaml:"output"`
	Earn       float64 `json:"earn" yaml:"earn"`
	// Rate is Earn over Bottleneck in percent.
	Rate float64 `json:"rate" yaml:"rate"`
}

func some(v float64) optional.Option[float64] {
	return optional.Some(v)
}

// Summary reports every trade on date and appends a total row.
func Summary(trades []*Trade, date string) []Row {
	rows := make([]Row, 0, len(trades)+1)
	total := Row{Name: TotalName, Code: TotalCode}

	for _, t := range trades {
		row := t.Report(date)
		rows = append(rows, row)

		total.CurrentValue += row.CurrentValue
		total.Purchase += row.Purchase
		total.Bottleneck += row.Bottleneck
		total.CostAmount += row.CostAmount
		total.Output += row.Output
		total.Earn += row.Earn
	}

	for _, v := range []*float64{&total.CurrentValue, &total.Purchase, &total.Bottleneck, &total.CostAmount, &total.Output, &total.Earn} {
		*v = utils.Round2(*v)
	}

	if total.Bottleneck > 0 {
		total.Rate = utils.Round4(total.Earn / total.Bottleneck * 100)
	}

	return append(rows, total)
}

// Source is what a report is built from: the request inputs and the run result.
type Source struct {
	Series    map[string][]types.RawRow
	Fees      commission_fee.Fees
	End       string
	OpenDates []string
	Result    types.StrategyResult
}

// Build replays the result actions per series code and summarizes them on
// the report date. Actions without a code belong to the only series when
// there is exactly one.
func Build(src Source) []Row {
	codes := make([]string, 0, len(src.Series))
	series := make(map[string][]types.SeriesPoint, len(src.Series))

	for code, rows := range src.Series {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}

		codes = append(codes, code)
		series[code] = datasource.Normalize(rows)
	}

	if len(codes) == 0 {
		return []Row{}
	}

	slices.Sort(codes)

	actions := src.Result.Actions
	if len(codes) == 1 {
		actions = withDefaultCode(actions, codes[0])
	}

	date := reportDate(src, series[codes[0]])

	trades := make([]*Trade, 0, len(codes))
	for _, code := range codes {
		trades = append(trades, BuildTrade(code, code, series[code], actions, src.Fees.For(code)))
	}

	return Summary(trades, date)
}

// reportDate falls back from the final date to the request end, the last
// open date and finally the last observation.
func reportDate(src Source, fallback []types.SeriesPoint) string {
	candidates := []string{src.Result.Summary.FinalDate, src.End}
	if n := len(src.OpenDates); n > 0 {
		candidates = append(candidates, src.OpenDates[n-1])
	}

	if n := len(fallback); n > 0 {
		candidates = append(candidates, fallback[n-1].Date)
	}

	for _, c := range candidates {
		if c = dateOnly(c); c != "" {
			return c
		}
	}

	return ""
}

func withDefaultCode(actions []types.Action, code string) []types.Action {
	out := make([]types.Action, len(actions))
	for i, a := range actions {
		if strings.TrimSpace(a.Code) == "" {
			a.Code = code
		}

		out[i] = a
	}

	return out
}
