package commission_fee

import (
	"testing"

	"github.com/rxtech-lab/argo-fund/internal/utils"
	"github.com/stretchr/testify/suite"
)

type CommissionFeeTestSuite struct {
	suite.Suite
}

func TestCommissionFeeSuite(t *testing.T) {
	suite.Run(t, new(CommissionFeeTestSuite))
}

func (suite *CommissionFeeTestSuite) TestDefaultFeeConfig() {
	cfg := Fees{}.For("missing")
	suite.Equal(0.0, cfg.BuyFeeRate)
	suite.Equal(0.0, cfg.SellFeeRate)
	suite.Equal(utils.RoundHalfUp, cfg.Label())
}

func (suite *CommissionFeeTestSuite) TestZeroLabelIsHalfUp() {
	suite.Equal(utils.RoundHalfUp, FeeConfig{}.Label())
	suite.Equal(utils.RoundDown, FeeConfig{RoundLabel: utils.RoundDown}.Label())
}

func (suite *CommissionFeeTestSuite) TestBuyShares() {
	tests := []struct {
		name     string
		cfg      FeeConfig
		amount   float64
		price    float64
		expected float64
	}{
		{name: "no fee", cfg: FeeConfig{}, amount: 1000, price: 1.2, expected: 833.33},
		{name: "buy fee", cfg: FeeConfig{BuyFeeRate: 0.0015}, amount: 1000, price: 1, expected: 998.5},
		{name: "round down", cfg: FeeConfig{RoundLabel: utils.RoundDown}, amount: 1000, price: 0.6, expected: 1666.66},
		{name: "half up", cfg: FeeConfig{}, amount: 1000, price: 0.6, expected: 1666.67},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, tc.cfg.BuyShares(tc.amount, tc.price))
		})
	}
}

func (suite *CommissionFeeTestSuite) TestSellProceeds() {
	suite.Equal(1000.0, FeeConfig{}.SellProceeds(1.25, 800))
	suite.Equal(995.0, FeeConfig{SellFeeRate: 0.005}.SellProceeds(1.25, 800))
}
