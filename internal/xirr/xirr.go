// Package xirr computes the annualized internal rate of return of irregular cashflows.
package xirr

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
)

const (
	// DefaultGuess is the Newton starting rate.
	DefaultGuess = 0.1

	tolerance       = 1e-7
	stepTolerance   = 1e-10
	derivativeFloor = 1e-12
	newtonMaxIter   = 64
	bisectMaxIter   = 80
	guessFloor      = -0.95
	rateFloor       = -0.9999
	bracketLow      = -0.9
	bracketHigh     = 10.0
	daysPerYear     = 365.0
)

// Cashflow is a dated amount. Outflows are negative.
type Cashflow struct {
	Date   time.Time
	Amount float64
}

// ParseDate parses the YYYY-MM-DD prefix of s.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrCodeInvalidDate, err, "invalid date %q", s)
	}

	return t, nil
}

// FromLedger converts ledger cashflows into solver input.
func FromLedger(flows []types.Cashflow) ([]Cashflow, error) {
	out := make([]Cashflow, 0, len(flows))

	for _, f := range flows {
		t, err := ParseDate(f.Date)
		if err != nil {
			return nil, err
		}

		out = append(out, Cashflow{Date: t, Amount: f.Cash})
	}

	return out, nil
}

func sorted(cfs []Cashflow) []Cashflow {
	out := slices.Clone(cfs)
	slices.SortStableFunc(out, func(a, b Cashflow) int {
		return a.Date.Compare(b.Date)
	})

	return out
}

func yearFraction(t, t0 time.Time) float64 {
	days := math.Round(t.Sub(t0).Hours() / 24)

	return days / daysPerYear
}

// XNPV is the net present value of the cashflows at rate, discounted from the earliest date.
func XNPV(rate float64, cfs []Cashflow) float64 {
	if len(cfs) == 0 {
		return 0
	}

	items := sorted(cfs)
	t0 := items[0].Date

	total := 0.0
	for _, cf := range items {
		total += cf.Amount / math.Pow(1.0+rate, yearFraction(cf.Date, t0))
	}

	return total
}

// XNPVDerivative is d XNPV / d rate.
func XNPVDerivative(rate float64, cfs []Cashflow) float64 {
	if len(cfs) == 0 {
		return 0
	}

	items := sorted(cfs)
	t0 := items[0].Date

	total := 0.0
	for _, cf := range items {
		if math.Abs(1.0+rate) < derivativeFloor {
			continue
		}

		dt := yearFraction(cf.Date, t0)
		total += -dt * cf.Amount / math.Pow(1.0+rate, dt+1.0)
	}

	return total
}

// XIRR solves XNPV(rate) = 0.
//
// Newton iteration starts from guess (floored at -0.95). When the derivative
// vanishes or Newton does not settle, the root is bisected inside [-0.9, 10].
// If that bracket holds no sign change the last Newton estimate is returned.
// Fewer than two cashflows yield 0.
func XIRR(cfs []Cashflow, guess float64) float64 {
	if len(cfs) < 2 {
		return 0
	}

	r := math.Max(guess, guessFloor)

	for i := 0; i < newtonMaxIter; i++ {
		f := XNPV(r, cfs)
		if math.Abs(f) < tolerance {
			return r
		}

		df := XNPVDerivative(r, cfs)
		if math.Abs(df) < derivativeFloor {
			break
		}

		next := r - f/df
		if next <= rateFloor {
			next = rateFloor
		}

		if math.Abs(next-r) < stepTolerance {
			return next
		}

		r = next
	}

	return bisect(cfs, r)
}

func bisect(cfs []Cashflow, fallback float64) float64 {
	lo, hi := bracketLow, bracketHigh
	flo := XNPV(lo, cfs)
	fhi := XNPV(hi, cfs)

	if flo == 0 {
		return lo
	}

	if fhi == 0 {
		return hi
	}

	if flo*fhi > 0 {
		return fallback
	}

	for i := 0; i < bisectMaxIter; i++ {
		mid := (lo + hi) / 2
		fmid := XNPV(mid, cfs)

		if math.Abs(fmid) < tolerance {
			return mid
		}

		if flo*fmid <= 0 {
			hi = mid
		} else {
			lo = mid
			flo = fmid
		}
	}

	return (lo + hi) / 2
}
