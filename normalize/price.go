// Package normalize is the defensive boundary between the upstream market
// data source and the evaluators. The source is inconsistent per record about
// whether prices are absolute VND or VND/1000, and occasionally ships bars
// that violate basic OHLC invariants; nothing passes to the evaluators
// without going through this package.
package normalize

import (
	"sort"
	"time"

	"vnsignal/models"
)

// ohlcTolerance is the floating tolerance applied on both sides of every
// OHLC comparison, in currency units.
const ohlcTolerance = 0.01

// PriceScale classifies a set of same-kind prices.
type PriceScale int

const (
	// ScaleNative means prices are already in absolute currency units.
	ScaleNative PriceScale = iota
	// ScaleThousands means prices are expressed in currency/1000.
	ScaleThousands
)

// DetectScale classifies a set of same-kind prices (e.g. the OHLC of one
// bar, or the target prices of one report) as native currency or thousands.
// The heuristic is applied per record, never globally:
//   - any value >= 10,000: the whole set is native
//   - all values < 1,000: the set is in thousands
//   - otherwise: mean > 5,000 means native
//
// Non-positive values are ignored; an empty set is treated as native so
// normalization is a no-op.
func DetectScale(prices []float64) PriceScale {
	sum := 0.0
	n := 0
	allBelowThousand := true
	for _, p := range prices {
		if p <= 0 {
			continue
		}
		if p >= 10000 {
			return ScaleNative
		}
		if p >= 1000 {
			allBelowThousand = false
		}
		sum += p
		n++
	}
	if n == 0 {
		return ScaleNative
	}
	if allBelowThousand {
		return ScaleThousands
	}
	if sum/float64(n) > 5000 {
		return ScaleNative
	}
	return ScaleThousands
}

// Price converts a single price to absolute currency units under the given
// scale.
func Price(v float64, scale PriceScale) float64 {
	if scale == ScaleThousands {
		return v * 1000
	}
	return v
}

// Prices converts a set of same-kind prices to absolute currency units,
// detecting the scale from the set itself.
func Prices(values []float64) []float64 {
	scale := DetectScale(values)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = Price(v, scale)
	}
	return out
}

// ComparableScale brings a price into thousands-of-VND space for upside
// comparisons: values at or above 1000 are divided by 1000, smaller values
// are assumed to already be in that space. Both sides of a comparison must
// pass through this same rule.
func ComparableScale(v float64) float64 {
	if v >= 1000 {
		return v / 1000
	}
	return v
}

// leq is a <= b within the OHLC tolerance.
func leq(a, b float64) bool {
	return a <= b+ohlcTolerance
}

// validOHLC checks the bar invariants for one price tuple:
// low <= min(open,close) <= max(open,close) <= high, all strictly positive.
func validOHLC(open, high, low, close float64) bool {
	if open <= 0 || high <= 0 || low <= 0 || close <= 0 {
		return false
	}
	lo, hi := open, close
	if lo > hi {
		lo, hi = hi, lo
	}
	return leq(low, lo) && leq(hi, high) && leq(low, high)
}

// ValidBar reports whether a bar passes OHLC validation on both the raw and
// adjusted price tuples and is not dated in the future relative to now.
func ValidBar(bar models.PriceBar, now time.Time) bool {
	if bar.Date.After(now) {
		return false
	}
	if !validOHLC(bar.Open, bar.High, bar.Low, bar.Close) {
		return false
	}
	return validOHLC(bar.AdOpen, bar.AdHigh, bar.AdLow, bar.AdClose)
}

// FilterBars returns the ascending-by-date series with invalid and
// future-dated bars excluded. The input is not mutated.
func FilterBars(bars []models.PriceBar, now time.Time) []models.PriceBar {
	out := make([]models.PriceBar, 0, len(bars))
	for _, b := range bars {
		if ValidBar(b, now) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
