package commission_fee

import (
	"github.com/rxtech-lab/argo-fund/internal/utils"
)

// FeeConfig is the per-instrument fee and rounding configuration.
// It is immutable for the duration of a backtest run.
type FeeConfig struct {
	// BuyFeeRate is charged on top of the net purchase amount.
	BuyFeeRate float64 `json:"buy_fee_rate" yaml:"buy_fee_rate" jsonschema:"title=Buy Fee Rate,minimum=0" validate:"gte=0"`
	// SellFeeRate is deducted from the gross sell proceeds.
	SellFeeRate float64 `json:"sell_fee_rate" yaml:"sell_fee_rate" jsonschema:"title=Sell Fee Rate,minimum=0" validate:"gte=0"`
	// RoundLabel selects share rounding: 1 half up, 2 round down.
	RoundLabel utils.RoundLabel `json:"round_label" yaml:"round_label" jsonschema:"title=Round Label,enum=1,enum=2,default=1"`
}

// DefaultFeeConfig has no fees and half up rounding.
func DefaultFeeConfig() FeeConfig {
	return FeeConfig{RoundLabel: utils.RoundHalfUp}
}

// Label returns the effective round label. Zero means the default.
func (f FeeConfig) Label() utils.RoundLabel {
	if f.RoundLabel == 0 {
		return utils.RoundHalfUp
	}

	return f.RoundLabel
}

// NetBuyAmount is the rounded amount that is actually invested once the buy fee is taken.
func (f FeeConfig) NetBuyAmount(amount float64) float64 {
	return utils.Round2(amount / (1.0 + f.BuyFeeRate))
}

// BuyShares converts a gross cash amount into rounded shares at price.
func (f FeeConfig) BuyShares(amount, price float64) float64 {
	return utils.Round(f.NetBuyAmount(amount)/price, f.Label())
}

// SellProceeds is the rounded cash received for selling share units at price.
func (f FeeConfig) SellProceeds(price, share float64) float64 {
	return utils.Round2(price * share * (1.0 - f.SellFeeRate))
}

// Fees maps instrument codes to their fee configuration.
type Fees map[string]FeeConfig

// For returns the configuration of code, or the default when none is set.
func (f Fees) For(code string) FeeConfig {
	if cfg, ok := f[code]; ok {
		return cfg
	}

	return DefaultFeeConfig()
}
