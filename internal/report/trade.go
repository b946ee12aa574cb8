// Package report rebuilds per-instrument holdings from an action log and
// summarizes them on a report date.
package report

import (
	"math"
	"slices"
	"strings"

	engine "github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/internal/utils"
)

const epsilon = 1e-9

// order is one replayed instruction. Buys carry a cash amount, sells a
// negative share count in the legacy encoding.
type order struct {
	date     string
	quantity float64
}

// Trade is the replayed position of one instrument.
type Trade struct {
	Code string
	Name string

	series *datasource.Series
	fee    commission_fee.FeeConfig

	share     float64
	unitCost  float64
	totalBuy  float64
	totalSell float64
	cashflows []types.Cashflow
}

// BuildTrade replays the actions of code against series. Actions of other
// codes are ignored. Prices resolve to the latest observation on or before
// the action date, and non-positive prices are dropped.
func BuildTrade(code, name string, series []types.SeriesPoint, actions []types.Action, fee commission_fee.FeeConfig) *Trade {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)

	if name == "" {
		name = code
	}

	positive := make([]types.SeriesPoint, 0, len(series))
	for _, p := range series {
		if p.Value > 0 {
			positive = append(positive, p)
		}
	}

	t := &Trade{
		Code:   code,
		Name:   name,
		series: datasource.NewSeries(positive),
		fee:    fee,
	}

	t.replay(ordersFor(code, actions))

	return t
}

func ordersFor(code string, actions []types.Action) []order {
	var orders []order

	for _, a := range actions {
		if strings.TrimSpace(a.Code) != code {
			continue
		}

		date := dateOnly(a.Date)
		if date == "" {
			continue
		}

		switch a.Type {
		case types.TxnTypeBuy:
			orders = append(orders, order{date: date, quantity: a.Amount})
		case types.TxnTypeSell:
			orders = append(orders, order{date: date, quantity: -a.Share})
		}
	}

	slices.SortStableFunc(orders, func(a, b order) int { return strings.Compare(a.date, b.date) })

	return orders
}

func (t *Trade) replay(orders []order) {
	label := t.fee.Label()

	for _, o := range orders {
		nav, err := t.series.ValueOnOrBefore(o.date).Take()
		if err != nil || nav <= 0 {
			continue
		}

		switch {
		case o.quantity > 0:
			share := t.fee.BuyShares(o.quantity, nav)
			if share <= 0 {
				continue
			}

			prevCost := utils.Round2(t.unitCost * t.share)
			t.totalBuy = utils.Round2(t.totalBuy + o.quantity)
			t.share = utils.Round(t.share+share, label)
			t.unitCost = utils.Round4((prevCost + o.quantity) / t.share)
			t.cashflows = append(t.cashflows, types.Cashflow{Date: o.date, Code: t.Code, Cash: -utils.Round2(o.quantity)})

		case o.quantity < 0:
			share := utils.Round(math.Abs(engine.DecodeSellQuantity(o.quantity, t.share)), label)
			if share <= 0 || share-t.share > epsilon {
				continue
			}

			proceeds := t.fee.SellProceeds(nav, share)
			t.share = utils.Round(t.share-share, label)
			t.totalSell = utils.Round2(t.totalSell + proceeds)
			t.cashflows = append(t.cashflows, types.Cashflow{Date: o.date, Code: t.Code, Cash: proceeds})
		}
	}
}

// Share is the replayed share count.
func (t *Trade) Share() float64 {
	return t.share
}

// Cashflows returns the trade cashflows, buys negative.
func (t *Trade) Cashflows() []types.Cashflow {
	return slices.Clone(t.cashflows)
}

// bottleneck is the largest cumulative net outlay up to date.
func (t *Trade) bottleneck(date string) float64 {
	outlay := 0.0
	peak := 0.0
	seen := false

	for _, cf := range t.cashflows {
		if cf.Date > date {
			continue
		}

		outlay -= cf.Cash
		if !seen || outlay > peak {
			peak = outlay
		}

		seen = true
	}

	return utils.Round2(peak)
}

// Report returns the position row on date.
func (t *Trade) Report(date string) Row {
	date = dateOnly(date)
	nav := t.series.ValueOnOrBefore(date).TakeOr(0)

	current := utils.Round2(nav * t.share)
	earn := utils.Round2(current - t.totalBuy + t.totalSell)
	btnk := t.bottleneck(date)

	rate := 0.0
	if btnk > 0 {
		rate = utils.Round4(earn / btnk * 100)
	}

	return Row{
		Name:         t.Name,
		Code:         t.Code,
		NetValue:     some(nav),
		UnitCost:     some(t.unitCost),
		Share:        some(t.share),
		CurrentValue: current,
		Purchase:     t.totalBuy,
		Bottleneck:   btnk,
		CostAmount:   utils.Round2(t.unitCost * t.share),
		Output:       t.totalSell,
		Earn:         earn,
		Rate:         rate,
	}
}

func dateOnly(date string) string {
	date = strings.TrimSpace(date)
	if len(date) > 10 {
		return date[:10]
	}

	return date
}
