package simulation

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
)

// PeriodKind is the cadence of the fixed investment.
type PeriodKind string

const (
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"
)

// Period schedules the fixed investment. For monthly plans Day is the day of
// month, for weekly plans it is the weekday with Monday = 1.
// On the wire it is the pair ["monthly", 1].
type Period struct {
	Kind PeriodKind
	Day  int
}

// UnmarshalJSON implements json.Unmarshaler. null keeps the monthly default.
func (p *Period) UnmarshalJSON(data []byte) error {
	var pair []any
	if err := json.Unmarshal(data, &pair); err != nil {
		return errors.InvalidParameter("period", "must be a [kind, day] pair")
	}

	if pair == nil {
		*p = Period{Kind: PeriodMonthly, Day: 1}

		return nil
	}

	if len(pair) != 2 {
		return errors.InvalidParameter("period", "must be a [kind, day] pair")
	}

	kind, _ := pair[0].(string)
	day, ok := pair[1].(float64)

	if !ok || day != float64(int(day)) {
		return errors.InvalidParameter("period", "day must be an integer")
	}

	*p = Period{Kind: PeriodKind(strings.TrimSpace(kind)), Day: int(day)}

	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Kind, p.Day})
}

// SellUnit selects how sell_num is read.
type SellUnit string

const (
	// SellUnitAmount sells sell_num of cash value.
	SellUnitAmount SellUnit = "amount"
	// SellUnitFundPercent sells sell_num percent of the position value.
	SellUnitFundPercent SellUnit = "fundPercent"
)

// Config parameterizes one daily simulation.
type Config struct {
	TotalAmount         float64 `json:"total_amount" yaml:"total_amount" validate:"gte=0" jsonschema:"title=Total Amount,default=10000"`
	Salary              float64 `json:"salary" yaml:"salary" validate:"gte=0" jsonschema:"description=Cash added on the 1st of every month,default=10000"`
	PurchasedFundAmount float64 `json:"purchased_fund_amount" yaml:"purchased_fund_amount" validate:"gte=0" jsonschema:"description=Bought on the first day"`
	FixedAmount         float64 `json:"fixed_amount" yaml:"fixed_amount" validate:"gte=0" jsonschema:"default=1000"`
	Period              Period  `json:"period" yaml:"period"`

	ShCompositeIndex float64  `json:"sh_composite_index" yaml:"sh_composite_index" jsonschema:"description=Index level above which profit is taken,default=3000"`
	FundPosition     float64  `json:"fund_position" yaml:"fund_position" validate:"gte=0,lte=100" jsonschema:"description=Position percent above which profit is taken,default=70"`
	SellAtTop        bool     `json:"sell_at_top" yaml:"sell_at_top" jsonschema:"description=Only take profit on a new accumulated profit high,default=true"`
	SellNum          float64  `json:"sell_num" yaml:"sell_num" validate:"gte=0" jsonschema:"default=10"`
	SellUnit         SellUnit `json:"sell_unit" yaml:"sell_unit" validate:"oneof=amount fundPercent" jsonschema:"enum=amount,enum=fundPercent,default=fundPercent"`
	ProfitRate       float64  `json:"profit_rate" yaml:"profit_rate" jsonschema:"description=Minimum profit percent for taking profit. 0 disables the check,default=5"`

	SellMacdPoint    optional.Option[float64] `json:"sell_macd_point" yaml:"sell_macd_point" jsonschema:"description=MACD sell gate in percent. Absent or 0 disables it"`
	BuyMacdPoint     optional.Option[float64] `json:"buy_macd_point" yaml:"buy_macd_point" jsonschema:"description=MACD buy gate in percent. Absent or 0 disables it"`
	BuyAmountPercent float64                  `json:"buy_amount_percent" yaml:"buy_amount_percent" validate:"gte=0" jsonschema:"description=Up to 100 a percent of idle cash and above 100 an absolute amount,default=20"`

	BuyFeeRate  float64 `json:"buy_fee_rate" yaml:"buy_fee_rate" validate:"gte=0" jsonschema:"default=0.0015"`
	SellFeeRate float64 `json:"sell_fee_rate" yaml:"sell_fee_rate" validate:"gte=0" jsonschema:"default=0.005"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		TotalAmount:      10000,
		Salary:           10000,
		FixedAmount:      1000,
		Period:           Period{Kind: PeriodMonthly, Day: 1},
		ShCompositeIndex: 3000,
		FundPosition:     70,
		SellAtTop:        true,
		SellNum:          10,
		SellUnit:         SellUnitFundPercent,
		ProfitRate:       5,
		BuyAmountPercent: 20,
		BuyFeeRate:       0.0015,
		SellFeeRate:      0.005,
	}
}

// UnmarshalJSON fills absent fields from DefaultConfig.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config

	p := plain(DefaultConfig())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*c = Config(p)

	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})

	return v
}

// Validate checks field ranges and the period.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]

			return errors.Newf(errors.ErrCodeSimulationConfigError, "invalid parameter %s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}

		return errors.Wrap(errors.ErrCodeSimulationConfigError, "invalid simulation config", err)
	}

	switch c.Period.Kind {
	case PeriodMonthly:
		if c.Period.Day < 1 || c.Period.Day > 31 {
			return errors.Newf(errors.ErrCodeSimulationConfigError, "invalid parameter period: monthly day %d out of range", c.Period.Day)
		}
	case PeriodWeekly:
		if c.Period.Day < 1 || c.Period.Day > 7 {
			return errors.Newf(errors.ErrCodeSimulationConfigError, "invalid parameter period: weekday %d out of range", c.Period.Day)
		}
	default:
		return errors.Newf(errors.ErrCodeSimulationConfigError, "invalid parameter period: unknown kind %q", c.Period.Kind)
	}

	return nil
}

// macdPosition converts a percent gate into a threshold in [0, 1].
func macdPosition(point optional.Option[float64]) float64 {
	return min(max(point.TakeOr(0)/100.0, 0), 1)
}

func (c Config) sellGateEnabled() bool {
	return c.SellMacdPoint.TakeOr(0) > 0
}

func (c Config) buyGateEnabled() bool {
	return c.BuyMacdPoint.TakeOr(0) > 0
}

func (c Config) String() string {
	return fmt.Sprintf("total=%.2f fixed=%.2f period=%s/%d", c.TotalAmount, c.FixedAmount, c.Period.Kind, c.Period.Day)
}
