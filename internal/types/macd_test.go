package types

import (
	"encoding/json"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type MacdPointTestSuite struct {
	suite.Suite
}

func TestMacdPointSuite(t *testing.T) {
	suite.Run(t, new(MacdPointTestSuite))
}

func (suite *MacdPointTestSuite) TestUnmarshalJSON() {
	tests := []struct {
		name     string
		input    string
		txn      optional.Option[TxnType]
		position float64
	}{
		{
			name:     "camel case keys",
			input:    `{"date": "2024-01-02", "macd": 1.5, "txnType": "sell", "macdPosition": 0.4}`,
			txn:      optional.Some(TxnTypeSell),
			position: 0.4,
		},
		{
			name:     "snake case keys",
			input:    `{"date": "2024-01-02", "macd": 1.5, "txn_type": "buy", "macd_position": 0.25}`,
			txn:      optional.Some(TxnTypeBuy),
			position: 0.25,
		},
		{
			name:     "camel case wins",
			input:    `{"date": "2024-01-02", "txnType": "sell", "txn_type": "buy"}`,
			txn:      optional.Some(TxnTypeSell),
			position: 0,
		},
		{
			name:     "no mark",
			input:    `{"date": "2024-01-02", "macd": -2}`,
			txn:      optional.None[TxnType](),
			position: 0,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			var p MacdPoint
			suite.Require().NoError(json.Unmarshal([]byte(tc.input), &p))
			suite.Equal("2024-01-02", p.Date)
			suite.Equal(tc.txn, p.TxnType)
			suite.Equal(tc.position, p.ZonePosition)
		})
	}
}

func (suite *MacdPointTestSuite) TestMarshalOmitsMissingMark() {
	data, err := json.Marshal(MacdPoint{Date: "2024-01-02", Macd: 1})
	suite.Require().NoError(err)
	suite.NotContains(string(data), "txnType")

	data, err = json.Marshal(MacdPoint{Date: "2024-01-02", TxnType: optional.Some(TxnTypeBuy)})
	suite.Require().NoError(err)
	suite.Contains(string(data), `"txnType":"buy"`)
}
