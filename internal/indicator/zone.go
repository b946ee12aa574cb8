package indicator

import (
	"math"
	"slices"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fund/internal/types"
)

// peakUnit tracks a running peak inside a zone and the index that fired for it.
type peakUnit struct {
	peak    float64
	trigger int
}

// MarkTransactions marks sell points in positive zones and buy points in negative zones.
//
// Zones are split on strict macd sign changes. Inside a zone the magnitude peak is
// tracked, and a point fires once its magnitude decays to threshold times the peak.
// After a unit fired, a new peak starts a fresh unit, so one zone can fire several times.
// A unit whose peak never decays enough fires nothing. A zero threshold disables
// that side. The input is not modified; previous marks are cleared on the copy.
func MarkTransactions(points []types.MacdPoint, sellThreshold, buyThreshold float64) []types.MacdPoint {
	out := slices.Clone(points)
	for i := range out {
		out[i].TxnType = optional.None[types.TxnType]()
	}

	for _, zone := range signZones(out) {
		positive, ok := zoneSign(out, zone)
		if !ok {
			continue
		}

		threshold, txn := buyThreshold, types.TxnTypeBuy
		if positive {
			threshold, txn = sellThreshold, types.TxnTypeSell
		}

		if threshold == 0 {
			continue
		}

		for _, idx := range zoneTriggers(out, zone, threshold) {
			out[idx].TxnType = optional.Some(txn)
		}
	}

	return out
}

// signZones groups indices into runs where consecutive macd values never have a negative product.
func signZones(points []types.MacdPoint) [][]int {
	if len(points) == 0 {
		return nil
	}

	zones := [][]int{{0}}

	for i := 1; i < len(points); i++ {
		current := zones[len(zones)-1]
		prev := points[current[len(current)-1]].Macd

		if prev*points[i].Macd < 0 {
			zones = append(zones, []int{i})

			continue
		}

		zones[len(zones)-1] = append(current, i)
	}

	return zones
}

// zoneSign reports the sign of the first non-zero macd of the zone.
// ok is false for a zone whose values are all near zero.
func zoneSign(points []types.MacdPoint, zone []int) (positive bool, ok bool) {
	for _, i := range zone {
		if math.Abs(points[i].Macd) >= zeroTolerance {
			return points[i].Macd > 0, true
		}
	}

	return false, false
}

func zoneTriggers(points []types.MacdPoint, zone []int, threshold float64) []int {
	units := []peakUnit{{peak: 0, trigger: -1}}

	for _, i := range zone {
		magnitude := math.Abs(points[i].Macd)
		latest := &units[len(units)-1]

		if magnitude >= latest.peak {
			if latest.trigger != -1 {
				units = append(units, peakUnit{peak: magnitude, trigger: -1})
				latest = &units[len(units)-1]
			} else {
				latest.peak = magnitude
			}
		}

		if latest.trigger == -1 && latest.peak >= zeroTolerance && magnitude <= latest.peak*threshold {
			latest.trigger = i
		}
	}

	var triggers []int

	for _, u := range units {
		if u.trigger >= 0 {
			triggers = append(triggers, u.trigger)
		}
	}

	return triggers
}
