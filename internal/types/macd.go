package types

import (
	"encoding/json"

	"github.com/moznion/go-optional"
)

// MacdPoint is one point of a computed MACD oscillator.
type MacdPoint struct {
	Index   int     `json:"index" yaml:"index"`
	Date    string  `json:"date" yaml:"date"`
	Value   float64 `json:"val" yaml:"val"`
	EmaFast float64 `json:"ema12" yaml:"ema12"`
	EmaSlow float64 `json:"ema26" yaml:"ema26"`
	Diff    float64 `json:"diff" yaml:"diff"`
	Signal  float64 `json:"dea" yaml:"dea"`
	Macd    float64 `json:"macd" yaml:"macd"`
	// ZonePosition is |macd| relative to the zone peak, in [0,1]. Display only.
	ZonePosition float64 `json:"macdPosition" yaml:"macd_position"`
	// TxnType is set only on points selected by MarkTransactions.
	TxnType optional.Option[TxnType] `json:"txnType,omitempty" yaml:"txn_type,omitempty"`
}

// UnmarshalJSON also accepts the snake_case txn_type and macd_position keys.
func (p *MacdPoint) UnmarshalJSON(data []byte) error {
	type plain MacdPoint

	var aux struct {
		plain
		SnakeTxnType  optional.Option[TxnType] `json:"txn_type"`
		SnakePosition optional.Option[float64] `json:"macd_position"`
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*p = MacdPoint(aux.plain)

	if p.TxnType.IsNone() {
		p.TxnType = aux.SnakeTxnType
	}

	if pos, err := aux.SnakePosition.Take(); err == nil && p.ZonePosition == 0 {
		p.ZonePosition = pos
	}

	return nil
}
