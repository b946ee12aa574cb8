package strategy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
)

// Params is the closed set of policy parameter records.
// Each variant belongs to exactly one Kind, and Run dispatches on the concrete type.
type Params interface {
	Kind() Kind
	// Codes lists the instruments whose series must be present in the request.
	Codes() []string
	sealed()
}

// Piece is one row of a piecewise table: the first row whose threshold is not
// below the key selects Multiplier.
type Piece struct {
	Threshold  float64
	Multiplier float64
}

// Pieces decodes from a list of [threshold, multiplier] pairs. Malformed rows are skipped.
type Pieces []Piece

// UnmarshalJSON implements json.Unmarshaler.
func (p *Pieces) UnmarshalJSON(data []byte) error {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}

	out := make(Pieces, 0, len(rows))

	for _, raw := range rows {
		var pair []any
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
			continue
		}

		threshold, ok1 := datasource.ParseNumber(pair[0])
		multiplier, ok2 := datasource.ParseNumber(pair[1])

		if !ok1 || !ok2 {
			continue
		}

		out = append(out, Piece{Threshold: threshold, Multiplier: multiplier})
	}

	*p = out

	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Pieces) MarshalJSON() ([]byte, error) {
	rows := make([][2]float64, 0, len(p))
	for _, piece := range p {
		rows = append(rows, [2]float64{piece.Threshold, piece.Multiplier})
	}

	return json.Marshal(rows)
}

// Lookup returns the multiplier of the first piece whose threshold is >= key, or 0.
func (p Pieces) Lookup(key float64) float64 {
	for _, piece := range p {
		if key <= piece.Threshold {
			return piece.Multiplier
		}
	}

	return 0
}

// Normalized scales the weights so they sum to one.
// A non-positive weight sum yields an empty table.
func (p Pieces) Normalized() Pieces {
	total := 0.0
	for _, piece := range p {
		total += piece.Multiplier
	}

	if total <= 0 {
		return Pieces{}
	}

	out := make(Pieces, len(p))
	for i, piece := range p {
		out[i] = Piece{Threshold: piece.Threshold, Multiplier: piece.Multiplier / total}
	}

	return out
}

// Allocation is a target weight of one instrument.
type Allocation struct {
	Code  string
	Ratio float64
}

// Portfolio decodes from a JSON object of code to ratio and keeps the key order.
type Portfolio []Allocation

// UnmarshalJSON implements json.Unmarshaler.
func (p *Portfolio) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.InvalidParameter("portfolio_dict", "must be an object")
	}

	out := Portfolio{}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}

		key, _ := keyTok.(string)

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		ratio, ok := datasource.ParseNumber(raw)
		if !ok {
			return errors.InvalidParameter("portfolio_dict", fmt.Sprintf("weight of %q must be a number", key))
		}

		if code := strings.TrimSpace(key); code != "" {
			out = append(out, Allocation{Code: code, Ratio: ratio})
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = out

	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Portfolio) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, a := range p {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(a.Code)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(a.Ratio)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// ScheduledParams buys a fixed amount on every date of Times.
type ScheduledParams struct {
	Code  string   `json:"code" validate:"required" jsonschema:"title=Code,description=Instrument code"`
	Times []string `json:"times" jsonschema:"title=Times,description=Dates to buy on"`
	Value float64  `json:"value" jsonschema:"title=Value,description=Cash amount per buy"`
}

func (ScheduledParams) Kind() Kind { return KindScheduled }

func (p ScheduledParams) Codes() []string { return []string{p.Code} }

func (ScheduledParams) sealed() {}

// ScheduledTuneParams scales the scheduled amount by a multiplier keyed on price.
type ScheduledTuneParams struct {
	Code  string   `json:"code" validate:"required"`
	Times []string `json:"times"`
	Value float64  `json:"value"`
	Piece Pieces   `json:"piece" jsonschema:"title=Piece,description=List of [price threshold, multiplier]"`
}

func (ScheduledTuneParams) Kind() Kind { return KindScheduledTune }

func (p ScheduledTuneParams) Codes() []string { return []string{p.Code} }

func (ScheduledTuneParams) sealed() {}

// WindowMethod aggregates the trailing window of scheduled_window.
type WindowMethod string

const (
	WindowMethodMax WindowMethod = "MAX"
	WindowMethodMin WindowMethod = "MIN"
	WindowMethodAvg WindowMethod = "AVG"
)

// ScheduledWindowParams keys the multiplier on the percent deviation from a trailing window aggregate.
type ScheduledWindowParams struct {
	Code       string               `json:"code" validate:"required"`
	Times      []string             `json:"times"`
	Value      float64              `json:"value"`
	Piece      Pieces               `json:"piece"`
	Window     optional.Option[int] `json:"window" jsonschema:"title=Window,description=Number of prices aggregated,default=1"`
	WindowDist optional.Option[int] `json:"window_dist" jsonschema:"title=Window Distance,description=Offset of the window from the current date,default=1"`
	Method     WindowMethod         `json:"method" jsonschema:"enum=MAX,enum=MIN,enum=AVG,default=AVG"`
}

func (ScheduledWindowParams) Kind() Kind { return KindScheduledWindow }

func (p ScheduledWindowParams) Codes() []string { return []string{p.Code} }

func (ScheduledWindowParams) sealed() {}

func (p ScheduledWindowParams) method() WindowMethod {
	switch m := WindowMethod(strings.ToUpper(strings.TrimSpace(string(p.Method)))); m {
	case WindowMethodMax, WindowMethodMin:
		return m
	default:
		return WindowMethodAvg
	}
}

// BuyAndHoldParams invests the whole amount on the first date.
type BuyAndHoldParams struct {
	Code string `json:"code" validate:"required"`
}

func (BuyAndHoldParams) Kind() Kind { return KindBuyAndHold }

func (p BuyAndHoldParams) Codes() []string { return []string{p.Code} }

func (BuyAndHoldParams) sealed() {}

// BteScheduledParams is the cash constrained version of ScheduledParams.
type BteScheduledParams struct {
	Code  string   `json:"code" validate:"required"`
	Times []string `json:"times"`
	Value float64  `json:"value"`
}

func (BteScheduledParams) Kind() Kind { return KindBteScheduled }

func (p BteScheduledParams) Codes() []string { return []string{p.Code} }

func (BteScheduledParams) sealed() {}

// AverageScheduledParams rebalances the position value to a target that grows by Value on each date of Times.
type AverageScheduledParams struct {
	Code  string   `json:"code" validate:"required"`
	Times []string `json:"times"`
	Value float64  `json:"value"`
}

func (AverageScheduledParams) Kind() Kind { return KindAverageScheduled }

func (p AverageScheduledParams) Codes() []string { return []string{p.Code} }

func (AverageScheduledParams) sealed() {}

// GridParams describes geometric buy levels below the start price and sell levels above each buy level.
type GridParams struct {
	Code        string    `json:"code" validate:"required"`
	BuyPercent  []float64 `json:"buypercent" jsonschema:"title=Buy Percent,description=Drop in percent from the previous level"`
	SellPercent []float64 `json:"sellpercent" jsonschema:"title=Sell Percent,description=Rise in percent above the matching buy level"`
}

func (GridParams) Kind() Kind { return KindGrid }

func (p GridParams) Codes() []string { return []string{p.Code} }

func (GridParams) sealed() {}

// IndicatorCrossParams trades the cross of two series columns.
type IndicatorCrossParams struct {
	Code string   `json:"code" validate:"required"`
	Col  []string `json:"col" validate:"len=2,dive,required" jsonschema:"title=Columns,description=[left, right] column names,minItems=2,maxItems=2"`
}

func (IndicatorCrossParams) Kind() Kind { return KindIndicatorCross }

func (p IndicatorCrossParams) Codes() []string { return []string{p.Code} }

func (IndicatorCrossParams) sealed() {}

// IndicatorPointsParams trades weighted threshold levels of one column.
type IndicatorPointsParams struct {
	Code   string                `json:"code" validate:"required"`
	Col    string                `json:"col" validate:"required"`
	Buy    Pieces                `json:"buy" validate:"min=1" jsonschema:"title=Buy Levels,description=List of [level, weight]"`
	Sell   Pieces                `json:"sell" jsonschema:"title=Sell Levels,description=List of [level, weight]"`
	BuyLow optional.Option[bool] `json:"buylow" jsonschema:"title=Buy Low,description=Buy when the column falls through a level,default=true"`
}

func (IndicatorPointsParams) Kind() Kind { return KindIndicatorPoints }

func (p IndicatorPointsParams) Codes() []string { return []string{p.Code} }

func (IndicatorPointsParams) sealed() {}

// Tendency28Params switches between a baseline and two candidates by momentum.
type Tendency28Params struct {
	Aim0          string                   `json:"aim0" validate:"required" jsonschema:"title=Baseline"`
	Aim1          string                   `json:"aim1" validate:"required"`
	Aim2          string                   `json:"aim2" validate:"required"`
	CheckDates    []string                 `json:"check_dates" validate:"min=1"`
	UpThreshold   optional.Option[float64] `json:"upthreshold" jsonschema:"default=1"`
	DiffThreshold optional.Option[float64] `json:"diffthreshold" jsonschema:"description=Defaults to upthreshold"`
	Prev          optional.Option[int]     `json:"prev" jsonschema:"default=10"`
	InitialMoney  optional.Option[float64] `json:"initial_money" jsonschema:"description=Defaults to half of totmoney"`
}

func (Tendency28Params) Kind() Kind { return KindTendency28 }

func (Tendency28Params) Codes() []string { return nil }

func (Tendency28Params) sealed() {}

// BalanceParams rebalances to fixed weights on check dates.
type BalanceParams struct {
	Portfolio  Portfolio `json:"portfolio_dict" validate:"min=1" jsonschema:"title=Portfolio,description=Object of code to target weight"`
	CheckDates []string  `json:"check_dates" validate:"min=1"`
}

func (BalanceParams) Kind() Kind { return KindBalance }

func (BalanceParams) Codes() []string { return nil }

func (BalanceParams) sealed() {}

// SellOnXIRRParams buys on schedule until the trailing XIRR beats Threshold.
type SellOnXIRRParams struct {
	Code         string                   `json:"code" validate:"required"`
	Times        []string                 `json:"times"`
	Value        float64                  `json:"value"`
	Threshold    optional.Option[float64] `json:"threshold" jsonschema:"default=0.2"`
	HoldingTime  optional.Option[int]     `json:"holding_time" jsonschema:"description=Minimum days since start,default=180"`
	CheckWeekday optional.Option[int]     `json:"check_weekday" jsonschema:"description=Monday is 0,default=4"`
}

func (SellOnXIRRParams) Kind() Kind { return KindSellOnXIRR }

func (p SellOnXIRRParams) Codes() []string { return []string{p.Code} }

func (SellOnXIRRParams) sealed() {}

// decodeParams decodes raw into the record type T.
func decodeParams[T Params](raw json.RawMessage) (Params, error) {
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}

	return p, nil
}

var paramDecoders = map[Kind]func(json.RawMessage) (Params, error){
	KindScheduled:        decodeParams[ScheduledParams],
	KindScheduledTune:    decodeParams[ScheduledTuneParams],
	KindScheduledWindow:  decodeParams[ScheduledWindowParams],
	KindBuyAndHold:       decodeParams[BuyAndHoldParams],
	KindBteScheduled:     decodeParams[BteScheduledParams],
	KindAverageScheduled: decodeParams[AverageScheduledParams],
	KindGrid:             decodeParams[GridParams],
	KindIndicatorCross:   decodeParams[IndicatorCrossParams],
	KindIndicatorPoints:  decodeParams[IndicatorPointsParams],
	KindTendency28:       decodeParams[Tendency28Params],
	KindBalance:          decodeParams[BalanceParams],
	KindSellOnXIRR:       decodeParams[SellOnXIRRParams],
}

// paramChecker is implemented by records with constraints struct tags cannot express.
type paramChecker interface {
	check() error
}

func (p ScheduledWindowParams) check() error {
	if p.Window.TakeOr(1) < 1 {
		return errors.InvalidParameter("window", "must be at least 1")
	}

	if p.WindowDist.TakeOr(1) < 1 {
		return errors.InvalidParameter("window_dist", "must be at least 1")
	}

	return nil
}

func (p GridParams) check() error {
	if len(p.BuyPercent) == 0 {
		return errors.MissingParameter("buypercent")
	}

	if len(p.BuyPercent) != len(p.SellPercent) {
		return errors.InvalidParameter("sellpercent", "must have as many entries as buypercent")
	}

	return nil
}

func (p SellOnXIRRParams) check() error {
	if wd := p.CheckWeekday.TakeOr(defaultCheckWeekday); wd < 0 || wd > 6 {
		return errors.InvalidParameter("check_weekday", "must be between 0 (Monday) and 6 (Sunday)")
	}

	return nil
}

func (p Tendency28Params) check() error {
	if p.Prev.TakeOr(defaultPrev) < 0 {
		return errors.InvalidParameter("prev", "must not be negative")
	}

	return nil
}
