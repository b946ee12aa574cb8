package types

// IndicatorType names a technical indicator.
type IndicatorType string

const (
	IndicatorTypeEMA  IndicatorType = "ema"
	IndicatorTypeMACD IndicatorType = "macd"
	IndicatorTypeMA   IndicatorType = "ma"
	IndicatorTypeRSI  IndicatorType = "rsi"
)
