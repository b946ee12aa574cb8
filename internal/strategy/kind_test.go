package strategy

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type KindTestSuite struct {
	suite.Suite
}

func TestKindSuite(t *testing.T) {
	suite.Run(t, new(KindTestSuite))
}

func (suite *KindTestSuite) TestParseKind() {
	tests := []struct {
		name  string
		input string
		want  Kind
		ok    bool
	}{
		{name: "exact", input: "grid", want: KindGrid, ok: true},
		{name: "case and space", input: "  BuyAndHold ", want: KindBuyAndHold, ok: true},
		{name: "alias", input: "tendency28", want: KindTendency28, ok: true},
		{name: "long form", input: "bte_scheduled_sell_on_xirr", want: KindSellOnXIRR, ok: true},
		{name: "unknown", input: "martingale", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			got, ok := ParseKind(tc.input)
			suite.Equal(tc.ok, ok)
			suite.Equal(tc.want, got)
		})
	}
}

func (suite *KindTestSuite) TestEveryKindHasDecoder() {
	for _, k := range AllKinds {
		_, ok := paramDecoders[k]
		suite.True(ok, string(k))
	}
}

func (suite *KindTestSuite) TestFamilies() {
	suite.False(KindScheduled.EngineBacked())
	suite.False(KindBuyAndHold.EngineBacked())
	suite.True(KindBteScheduled.EngineBacked())
	suite.True(KindGrid.EngineBacked())

	suite.True(KindBalance.MultiInstrument())
	suite.True(KindTendency28.MultiInstrument())
	suite.False(KindGrid.MultiInstrument())
}
