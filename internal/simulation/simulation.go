// Package simulation replays a fund investment plan day by day: a salary, a
// fixed investment schedule, index-gated profit taking and optional MACD
// timing on a reference index.
package simulation

import (
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/logger"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/internal/utils"
	"go.uber.org/zap"
)

const (
	epsilon = 1e-9
	// disabledProfitThreshold replaces a zero profit_rate so the check always passes.
	disabledProfitThreshold = -1e9
)

// Input carries the market data of one simulation.
type Input struct {
	// FundSeries is the fund net value. Its first and last dates bound the run.
	FundSeries []types.SeriesPoint
	// IndexSeries is the composite index compared against sh_composite_index.
	IndexSeries []types.SeriesPoint
	// ReferPoints are MACD points of the reference index. Only their TxnType is read.
	ReferPoints []types.MacdPoint
}

// ProfitMark is the date and amount of the highest accumulated profit.
type ProfitMark struct {
	Date   string  `json:"date" yaml:"date"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// Summary is the state after the last simulated day.
type Summary struct {
	Days                 int        `json:"days" yaml:"days"`
	LastDate             string     `json:"last_date,omitempty" yaml:"last_date,omitempty"`
	LastNav              float64    `json:"last_nav" yaml:"last_nav"`
	LeftAmount           float64    `json:"left_amount" yaml:"left_amount"`
	Portion              float64    `json:"portion" yaml:"portion"`
	Cost                 float64    `json:"cost" yaml:"cost"`
	FundAmount           float64    `json:"fund_amount" yaml:"fund_amount"`
	TotalAmount          float64    `json:"total_amount" yaml:"total_amount"`
	ProfitRate           float64    `json:"profit_rate" yaml:"profit_rate"`
	AccumulatedProfit    float64    `json:"accumulated_profit" yaml:"accumulated_profit"`
	MaxPrincipal         float64    `json:"max_principal" yaml:"max_principal"`
	TotalProfitRate      float64    `json:"total_profit_rate" yaml:"total_profit_rate"`
	MaxAccumulatedProfit ProfitMark `json:"max_accumulated_profit" yaml:"max_accumulated_profit"`
}

// Snapshot is the state at the end of one simulated day.
type Snapshot struct {
	Date              string  `json:"date" yaml:"date"`
	Nav               float64 `json:"nav" yaml:"nav"`
	LeftAmount        float64 `json:"left_amount" yaml:"left_amount"`
	Portion           float64 `json:"portion" yaml:"portion"`
	Cost              float64 `json:"cost" yaml:"cost"`
	FundAmount        float64 `json:"fund_amount" yaml:"fund_amount"`
	TotalAmount       float64 `json:"total_amount" yaml:"total_amount"`
	ProfitRate        float64 `json:"profit_rate" yaml:"profit_rate"`
	AccumulatedProfit float64 `json:"accumulated_profit" yaml:"accumulated_profit"`
	MaxPrincipal      float64 `json:"max_principal" yaml:"max_principal"`
	TotalProfitRate   float64 `json:"total_profit_rate" yaml:"total_profit_rate"`
	Position          float64 `json:"position" yaml:"position"`
	DateBuyAmount     float64 `json:"date_buy_amount" yaml:"date_buy_amount"`
	DateSellAmount    float64 `json:"date_sell_amount" yaml:"date_sell_amount"`
}

// MacdGates echoes the MACD gates a result was produced with.
type MacdGates struct {
	SellMacdPoint optional.Option[float64] `json:"sell_macd_point" yaml:"sell_macd_point"`
	BuyMacdPoint  optional.Option[float64] `json:"buy_macd_point" yaml:"buy_macd_point"`
}

// ResultParams echoes run parameters.
type ResultParams struct {
	ReferIndexMacd MacdGates `json:"refer_index_macd" yaml:"refer_index_macd"`
}

// Result is the outcome of Run.
type Result struct {
	Actions []types.Action `json:"actions" yaml:"actions"`
	Summary Summary        `json:"summary" yaml:"summary"`
	Series  []Snapshot     `json:"series,omitempty" yaml:"series,omitempty"`
	Params  ResultParams   `json:"params" yaml:"params"`
}

// round2 and round4 round like the plan calculator this engine reproduces:
// on the binary value with ties to even.
func round2(x float64) float64 { return utils.RoundBinary(x, 2) }

func round4(x float64) float64 { return utils.RoundBinary(x, 4) }

// account is the fund position and idle cash of a simulation.
type account struct {
	cfg Config

	portion      float64
	cost         float64
	totalBuy     float64
	totalSell    float64
	left         float64
	maxPrincipal float64
}

func (a *account) fundAmount(nav float64) float64 {
	return round2(nav * a.portion)
}

func (a *account) totalAmount(nav float64) float64 {
	return round2(a.left + a.fundAmount(nav))
}

func (a *account) costAmount() float64 {
	return round2(a.cost * a.portion)
}

func (a *account) profitRate(nav float64) float64 {
	if a.costAmount() == 0 || a.cost <= 0 {
		return 0
	}

	return round4(nav/a.cost - 1)
}

func (a *account) accumulatedProfit(nav float64) float64 {
	return round2(a.fundAmount(nav) - a.totalBuy + a.totalSell)
}

func (a *account) totalProfitRate(nav float64) float64 {
	if a.maxPrincipal <= 0 {
		return 0
	}

	return round4(a.accumulatedProfit(nav) / a.maxPrincipal)
}

// buy spends amount at nav after the buy fee. It reports the bought shares,
// zero when nothing changed.
func (a *account) buy(amount, nav float64) float64 {
	if amount <= 0 || nav <= 0 || a.left < amount {
		return 0
	}

	net := round2(amount / (1 + a.cfg.BuyFeeRate))

	share := round2(net / nav)
	if share <= 0 {
		return 0
	}

	prevCost := a.costAmount()
	a.totalBuy = round2(a.totalBuy + amount)
	a.portion = round2(a.portion + share)
	a.cost = round4((prevCost + amount) / a.portion)
	a.left = round2(a.left - amount)

	if a.maxPrincipal < a.costAmount() {
		a.maxPrincipal = a.costAmount()
	}

	return share
}

// sell redeems shares worth target at nav. It returns the sold shares and the
// proceeds after the sell fee, both zero when nothing changed.
func (a *account) sell(target, nav float64) (float64, float64) {
	if target <= 0 || nav <= 0 || a.portion <= 0 {
		return 0, 0
	}

	share := round2(target / nav)
	if share <= 0 || a.portion-share < -epsilon {
		return 0, 0
	}

	proceeds := round2(nav * share * (1 - a.cfg.SellFeeRate))
	a.portion = round2(a.portion - share)
	a.left = round2(a.left + proceeds)
	a.totalSell = round2(a.totalSell + proceeds)

	return share, proceeds
}

// isFixedInvestDay reports whether day is on the fixed investment schedule.
func (c Config) isFixedInvestDay(day time.Time) bool {
	if c.Period.Kind == PeriodWeekly {
		return int(day.Weekday()) == c.Period.Day%7
	}

	return day.Day() == c.Period.Day
}

// Run simulates the plan on every calendar day between the first and the last
// fund date. Prices of non-trading days fall back to the latest earlier point.
func Run(in Input, cfg Config, includeSeries bool, log *logger.Logger) Result {
	log = logger.OrNop(log)

	result := Result{
		Actions: []types.Action{},
		Params: ResultParams{ReferIndexMacd: MacdGates{
			SellMacdPoint: cfg.SellMacdPoint,
			BuyMacdPoint:  cfg.BuyMacdPoint,
		}},
	}

	fund := datasource.NewSeries(in.FundSeries)
	index := datasource.NewSeries(in.IndexSeries)

	first, okFirst := firstDate(fund)
	last, okLast := lastDate(fund)

	if !okFirst || !okLast {
		return result
	}

	signals := referSignals(in.ReferPoints)
	acct := &account{cfg: cfg, left: cfg.TotalAmount}

	profitThreshold := cfg.ProfitRate / 100
	if cfg.ProfitRate == 0 {
		profitThreshold = disabledProfitThreshold
	}

	maxProfit := ProfitMark{Date: first.Format(time.DateOnly)}
	dayIdx := 0

	for day := first; !day.After(last); day, dayIdx = day.AddDate(0, 0, 1), dayIdx+1 {
		date := day.Format(time.DateOnly)

		nav := fund.ValueOnOrBefore(date).TakeOr(0)
		if nav <= 0 {
			continue
		}

		if day.Day() == 1 && cfg.Salary != 0 {
			acct.left = round2(acct.left + cfg.Salary)
		}

		var dayBuy, daySell float64

		tryBuy := func(amount float64, reason types.ActionReason) {
			share := acct.buy(amount, nav)
			if share <= 0 {
				return
			}

			dayBuy = round2(dayBuy + amount)
			result.Actions = append(result.Actions, types.Action{
				Date: date, Type: types.TxnTypeBuy, Amount: amount, Share: share, Reason: reason, Nav: nav,
			})
		}

		trySell := func(target float64, reason types.ActionReason) {
			share, proceeds := acct.sell(target, nav)
			if share <= 0 {
				return
			}

			daySell = round2(daySell + proceeds)
			result.Actions = append(result.Actions, types.Action{
				Date: date, Type: types.TxnTypeSell, Amount: target, Share: share, Reason: reason, Nav: nav,
			})
		}

		if dayIdx == 0 && cfg.PurchasedFundAmount != 0 {
			tryBuy(cfg.PurchasedFundAmount, types.ActionReasonInitial)
		}

		if cfg.FixedAmount != 0 && cfg.isFixedInvestDay(day) {
			tryBuy(cfg.FixedAmount, types.ActionReasonFixedInvest)
		}

		// The high-water mark is taken before the day's discretionary trades.
		profit := acct.accumulatedProfit(nav)
		if dayIdx == 0 || profit >= maxProfit.Amount {
			maxProfit = ProfitMark{Date: date, Amount: profit}
		}

		level := 0.0
		if total := acct.totalAmount(nav); total > 0 {
			level = round2(acct.fundAmount(nav) / total)
		}

		signal := signals[date]
		sellAllowed := !cfg.sellGateEnabled() || signal == types.TxnTypeSell
		buyAllowed := cfg.buyGateEnabled() && signal == types.TxnTypeBuy

		if level > cfg.FundPosition/100 &&
			index.ValueOnOrBefore(date).TakeOr(0) > cfg.ShCompositeIndex &&
			(!cfg.SellAtTop || maxProfit.Date == date) &&
			sellAllowed &&
			acct.profitRate(nav) > profitThreshold {
			amount := cfg.SellNum
			if cfg.SellUnit != SellUnitAmount {
				amount = round2(cfg.SellNum / 100 * acct.fundAmount(nav))
			}

			if amount > 0 {
				trySell(amount, types.ActionReasonStopProfit)
			}
		}

		if buyAllowed {
			amount := cfg.BuyAmountPercent
			if amount <= 100 {
				amount = utils.RoundBinary(acct.left*cfg.BuyAmountPercent/100, 0)
			}

			if amount > 0 {
				tryBuy(amount, types.ActionReasonMacdBuy)
			}
		}

		if includeSeries {
			result.Series = append(result.Series, acct.snapshot(date, nav, dayBuy, daySell))
		}
	}

	lastNav := fund.ValueOnOrBefore(last.Format(time.DateOnly)).TakeOr(0)
	result.Summary = acct.summary(dayIdx, last.Format(time.DateOnly), lastNav, maxProfit)

	log.Debug("simulation finished",
		zap.Int("days", dayIdx),
		zap.Int("actions", len(result.Actions)),
		zap.Float64("total_amount", result.Summary.TotalAmount),
	)

	return result
}

func (a *account) snapshot(date string, nav, dayBuy, daySell float64) Snapshot {
	total := a.totalAmount(nav)
	fundAmount := a.fundAmount(nav)

	position := 0.0
	if total > 0 {
		position = round4(fundAmount / total)
	}

	return Snapshot{
		Date:              date,
		Nav:               nav,
		LeftAmount:        a.left,
		Portion:           a.portion,
		Cost:              a.cost,
		FundAmount:        fundAmount,
		TotalAmount:       total,
		ProfitRate:        a.profitRate(nav),
		AccumulatedProfit: a.accumulatedProfit(nav),
		MaxPrincipal:      a.maxPrincipal,
		TotalProfitRate:   a.totalProfitRate(nav),
		Position:          position,
		DateBuyAmount:     dayBuy,
		DateSellAmount:    daySell,
	}
}

func (a *account) summary(days int, lastDate string, nav float64, maxProfit ProfitMark) Summary {
	s := Summary{
		Days:                 days,
		LastDate:             lastDate,
		LastNav:              nav,
		LeftAmount:           a.left,
		Portion:              a.portion,
		Cost:                 a.cost,
		TotalAmount:          a.left,
		MaxPrincipal:         a.maxPrincipal,
		MaxAccumulatedProfit: maxProfit,
	}

	if nav > 0 {
		s.FundAmount = a.fundAmount(nav)
		s.TotalAmount = a.totalAmount(nav)
		s.ProfitRate = a.profitRate(nav)
		s.AccumulatedProfit = a.accumulatedProfit(nav)
		s.TotalProfitRate = a.totalProfitRate(nav)
	}

	return s
}

// referSignals indexes the marked reference points by date. A signal only
// applies on its own date, never on the following non-trading days.
func referSignals(points []types.MacdPoint) map[string]types.TxnType {
	signals := make(map[string]types.TxnType)

	for _, p := range points {
		txn, err := p.TxnType.Take()
		if err != nil {
			continue
		}

		signals[strings.TrimSpace(p.Date)] = types.TxnType(strings.ToLower(string(txn)))
	}

	return signals
}

func firstDate(s *datasource.Series) (time.Time, bool) {
	if s.Len() == 0 {
		return time.Time{}, false
	}

	return parseDay(s.Dates()[0])
}

func lastDate(s *datasource.Series) (time.Time, bool) {
	last, err := s.Last().Take()
	if err != nil {
		return time.Time{}, false
	}

	return parseDay(last.Date)
}

func parseDay(date string) (time.Time, bool) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}
