// Package series provides windowed numeric transforms over ordered price
// sequences: simple moving averages, rolling standard deviation, Bollinger
// bands, and Woodie pivot points. Undefined values are represented as NaN;
// any window that contains an undefined or non-finite input produces an
// undefined output rather than a silent zero-fill.
package series

import "math"

// Undefined is the marker for an index where a windowed statistic cannot
// be computed.
var Undefined = math.NaN()

// IsDefined reports whether v is a usable statistic value.
func IsDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SMA returns the simple moving average of values with the given period.
// Indexes below period-1 are Undefined. A window containing any non-finite
// value yields Undefined at that index.
func SMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 0 {
		for i := range out {
			out[i] = Undefined
		}
		return out
	}
	for i := range values {
		if i < period-1 {
			out[i] = Undefined
			continue
		}
		sum := 0.0
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if !IsDefined(values[j]) {
				ok = false
				break
			}
			sum += values[j]
		}
		if !ok {
			out[i] = Undefined
			continue
		}
		out[i] = sum / float64(period)
	}
	return out
}

// StdDev returns the population standard deviation (divide by period, not
// period-1) of the trailing window of the given period ending at index.
// Undefined under the same missing-data rule as SMA.
func StdDev(values []float64, period, index int) float64 {
	if period <= 0 || index < period-1 || index >= len(values) {
		return Undefined
	}
	sum := 0.0
	for j := index - period + 1; j <= index; j++ {
		if !IsDefined(values[j]) {
			return Undefined
		}
		sum += values[j]
	}
	mean := sum / float64(period)
	ss := 0.0
	for j := index - period + 1; j <= index; j++ {
		d := values[j] - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(period))
}

// BollingerConfig parameterizes band computation. Upstream chart variants
// disagree (20/2 for the default view, 30/3 for the long-term chart), so the
// period and multiplier are caller-selectable rather than hard-coded.
type BollingerConfig struct {
	Period     int
	StdDevMult float64
}

// DefaultBollinger is the standard 20-period, 2-sigma configuration.
var DefaultBollinger = BollingerConfig{Period: 20, StdDevMult: 2}

// LongTermBollinger is the wider 30-period, 3-sigma chart variant.
var LongTermBollinger = BollingerConfig{Period: 30, StdDevMult: 3}

// BollingerBands holds the parallel upper/middle/lower band series.
type BollingerBands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger computes Bollinger bands over closes: middle is the SMA, upper
// and lower are middle plus/minus StdDevMult times the population sigma.
func Bollinger(closes []float64, cfg BollingerConfig) BollingerBands {
	middle := SMA(closes, cfg.Period)
	upper := make([]float64, len(closes))
	lower := make([]float64, len(closes))
	for i := range closes {
		if !IsDefined(middle[i]) {
			upper[i] = Undefined
			lower[i] = Undefined
			continue
		}
		sigma := StdDev(closes, cfg.Period, i)
		if !IsDefined(sigma) {
			upper[i] = Undefined
			lower[i] = Undefined
			continue
		}
		upper[i] = middle[i] + cfg.StdDevMult*sigma
		lower[i] = middle[i] - cfg.StdDevMult*sigma
	}
	return BollingerBands{Upper: upper, Middle: middle, Lower: lower}
}

// PivotPoints holds Woodie support/resistance levels derived from the
// previous period's high, low, and close.
type PivotPoints struct {
	Pivot float64
	R1    float64
	R2    float64
	R3    float64
	S1    float64
	S2    float64
	S3    float64
}

// WoodiePivots computes Woodie pivot points from the previous period's
// high/low/close. Returns ok=false when the inputs violate the OHLC
// preconditions (non-positive, low above high, close outside range); callers
// omit pivot-dependent levels instead of failing the whole evaluation.
func WoodiePivots(prevHigh, prevLow, prevClose float64) (PivotPoints, bool) {
	if prevHigh <= 0 || prevLow <= 0 || prevClose <= 0 {
		return PivotPoints{}, false
	}
	if prevLow > prevHigh || prevClose < prevLow || prevClose > prevHigh {
		return PivotPoints{}, false
	}
	pivot := (prevHigh + prevLow + 2*prevClose) / 4
	return PivotPoints{
		Pivot: pivot,
		R1:    2*pivot - prevLow,
		R2:    pivot + (prevHigh - prevLow),
		R3:    prevHigh + 2*(pivot-prevLow),
		S1:    2*pivot - prevHigh,
		S2:    pivot - (prevHigh - prevLow),
		S3:    prevLow - 2*(prevHigh-pivot),
	}, true
}
