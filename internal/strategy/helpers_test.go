package strategy

import (
	"fmt"

	"github.com/rxtech-lab/argo-fund/internal/types"
)

// day returns 2026-01-dd.
func day(d int) string {
	return fmt.Sprintf("2026-01-%02d", d)
}

// days returns n consecutive dates starting on 2026-01-01.
func days(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = day(i + 1)
	}

	return out
}

// rows builds daily val rows starting on 2026-01-01.
func rows(values ...float64) []types.RawRow {
	out := make([]types.RawRow, len(values))
	for i, v := range values {
		out[i] = types.RawRow{"date": day(i + 1), "val": v}
	}

	return out
}

func request(params Params, totmoney float64, series map[string][]types.RawRow, openDates []string) Request {
	return Request{
		Series:    series,
		OpenDates: openDates,
		Start:     openDates[0],
		End:       openDates[len(openDates)-1],
		TotMoney:  totmoney,
		Params:    params,
	}
}
