package utils

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// RoundLabel selects the rounding behaviour applied to monetary quantities.
type RoundLabel int

const (
	// RoundHalfUp rounds ties away from zero. It is the default label.
	RoundHalfUp RoundLabel = 1
	// RoundDown truncates toward zero.
	RoundDown RoundLabel = 2
)

// Round rounds x to 2 decimal places using the given label.
// Any label other than RoundDown rounds half up.
//
// The value goes through its shortest decimal representation first, so
// Round(2.675, RoundHalfUp) is 2.68 even though the binary float is slightly below.
func Round(x float64, label RoundLabel) float64 {
	d := decimal.NewFromFloat(x)
	if label == RoundDown {
		return d.RoundDown(2).InexactFloat64()
	}

	return d.Round(2).InexactFloat64()
}

// Round2 rounds x half up to 2 decimal places.
func Round2(x float64) float64 {
	return Round(x, RoundHalfUp)
}

// Round4 rounds x half up to 4 decimal places. Used for per-share cost and rates.
func Round4(x float64) float64 {
	return RoundTo(x, 4)
}

// RoundTo rounds x half up to the given number of decimal places.
func RoundTo(x float64, places int32) float64 {
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// RoundToDecimalPrecision truncates the quantity to the specified decimal precision.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int32) float64 {
	return decimal.NewFromFloat(quantity).RoundDown(decimalPrecision).InexactFloat64()
}

// RoundBinary rounds the exact binary value of x to places decimals, ties to even.
// Unlike Round it does not go through the shortest decimal form, so
// RoundBinary(2.675, 2) is 2.67 and RoundBinary(2.5, 0) is 2.
func RoundBinary(x float64, places int) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}

	return v
}
