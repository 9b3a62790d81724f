package evaluator

import (
	"fmt"

	"vnsignal/models"
	"vnsignal/series"
)

// MinShortTermBars is the minimum series length the short-term evaluator
// needs; shorter series degrade to HOLD with zero confidence.
const MinShortTermBars = 30

// Short-term factor weights. Each factor contributes to either the bullish
// or the bearish score, never both; totalWeight accumulates only the weight
// of factors that could actually be evaluated.
const (
	weightMACross   = 30
	weightBollinger = 25
	weightMomentum  = 20
	weightVolume    = 15
	weightRangePos  = 10
)

// ShortTermEvaluator scores a symbol from price action alone: moving-average
// crossover, Bollinger band position, momentum, volume confirmation, and
// position within the supplied range. It is a pure function of its inputs.
type ShortTermEvaluator struct {
	bollinger series.BollingerConfig
	strategy  SignalStrategy
}

// NewShortTermEvaluator creates an evaluator with the standard 20/2
// Bollinger configuration and ±15 signal thresholds.
func NewShortTermEvaluator() *ShortTermEvaluator {
	return &ShortTermEvaluator{
		bollinger: series.DefaultBollinger,
		strategy:  NewDefaultStrategy(),
	}
}

// NewShortTermEvaluatorWith creates an evaluator with explicit Bollinger and
// strategy configuration.
func NewShortTermEvaluatorWith(cfg series.BollingerConfig, strategy SignalStrategy) *ShortTermEvaluator {
	return &ShortTermEvaluator{bollinger: cfg, strategy: strategy}
}

// Evaluate scores an ascending-by-date, pre-validated bar series. All
// historical comparisons use adjusted prices. The result is complete for any
// input: missing or short data lowers confidence, it never errors.
func (e *ShortTermEvaluator) Evaluate(symbol string, bars []models.PriceBar) models.Evaluation {
	if len(bars) < MinShortTermBars {
		return models.HoldEvaluation(symbol, models.HorizonShortTerm, "insufficient data")
	}

	closes := models.AdCloses(bars)
	n := len(closes)
	current := closes[n-1]

	var bullish, bearish, totalWeight float64
	reasons := make([]string, 0, 5)

	// Factor 1: MA crossover (10 vs 30 on adjusted close).
	ma10 := series.SMA(closes, 10)[n-1]
	ma30 := series.SMA(closes, 30)[n-1]
	if series.IsDefined(ma10) && series.IsDefined(ma30) && ma30 > 0 {
		totalWeight += weightMACross
		gap := (ma10 - ma30) / ma30 * 100
		switch {
		case ma10 > ma30 && gap > 2:
			bullish += weightMACross
			reasons = append(reasons, fmt.Sprintf("golden cross: MA10 above MA30 by %.1f%%", gap))
		case ma10 > ma30:
			bullish += 20
			reasons = append(reasons, "MA10 above MA30, mild uptrend")
		case ma10 < ma30 && gap < -2:
			bearish += weightMACross
			reasons = append(reasons, fmt.Sprintf("death cross: MA10 below MA30 by %.1f%%", -gap))
		case ma10 < ma30:
			bearish += 20
			reasons = append(reasons, "MA10 below MA30, mild downtrend")
		}
	}

	// Factor 2: position inside the Bollinger bands.
	bands := series.Bollinger(closes, e.bollinger)
	upper, lower := bands.Upper[n-1], bands.Lower[n-1]
	if series.IsDefined(upper) && series.IsDefined(lower) && upper > lower {
		totalWeight += weightBollinger
		pos := (current - lower) / (upper - lower)
		switch {
		case pos <= 0.2:
			bullish += weightBollinger
			reasons = append(reasons, "price near lower Bollinger band, oversold zone")
		case pos >= 0.8:
			bearish += weightBollinger
			reasons = append(reasons, "price near upper Bollinger band, overbought zone")
		case pos < 0.4:
			bullish += 15
			reasons = append(reasons, "price in lower half of Bollinger bands")
		case pos > 0.6:
			bearish += 15
			reasons = append(reasons, "price in upper half of Bollinger bands")
		}
	}

	// Factor 3: 5-day and 10-day momentum.
	mom5 := pctChange(closes[n-6], current)
	mom10 := pctChange(closes[n-11], current)
	totalWeight += weightMomentum
	switch {
	case mom5 > 3 && mom10 > 5:
		bullish += weightMomentum
		reasons = append(reasons, fmt.Sprintf("strong momentum: %+.1f%% over 5 days, %+.1f%% over 10", mom5, mom10))
	case mom5 < -3 && mom10 < -5:
		bearish += weightMomentum
		reasons = append(reasons, fmt.Sprintf("strong downward momentum: %+.1f%% over 5 days, %+.1f%% over 10", mom5, mom10))
	case mom5 > 0:
		bullish += 10
		reasons = append(reasons, fmt.Sprintf("mild positive momentum: %+.1f%% over 5 days", mom5))
	default:
		bearish += 10
		reasons = append(reasons, fmt.Sprintf("mild negative momentum: %+.1f%% over 5 days", mom5))
	}

	// Factor 4: latest volume vs trailing 10-day average.
	avgVol := 0.0
	for i := n - 11; i < n-1; i++ {
		avgVol += float64(bars[i].Volume)
	}
	avgVol /= 10
	if avgVol > 0 {
		totalWeight += weightVolume
		ratio := float64(bars[n-1].Volume) / avgVol
		switch {
		case ratio > 1.5 && mom5 > 0:
			bullish += weightVolume
			reasons = append(reasons, fmt.Sprintf("volume %.1fx average confirms the advance", ratio))
		case ratio > 1.5:
			bearish += weightVolume
			reasons = append(reasons, fmt.Sprintf("volume %.1fx average on a decline", ratio))
		case ratio < 0.7:
			reasons = append(reasons, "low trading volume, weak conviction")
		}
	}

	// Factor 5: position within the supplied range (52-week proxy).
	lo, hi := closes[0], closes[0]
	for _, c := range closes {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	if hi > lo {
		totalWeight += weightRangePos
		pos := (current - lo) / (hi - lo)
		if pos < 0.3 {
			bullish += weightRangePos
			reasons = append(reasons, "price near the low of its 52-week range")
		} else if pos > 0.7 {
			bearish += weightRangePos
			reasons = append(reasons, "price near the high of its 52-week range")
		}
	}

	netScore := bullish - bearish
	confidence := min(abs(netScore), 100)
	signal := e.strategy.DetermineSignal(netScore, confidence)

	eval := models.Evaluation{
		Symbol:       symbol,
		Horizon:      models.HorizonShortTerm,
		Signal:       signal,
		Confidence:   confidence,
		Reasons:      reasons,
		NetScore:     netScore,
		TotalWeight:  totalWeight,
		CurrentPrice: &current,
	}

	if signal == models.SignalBuy {
		eval.BuyPrice, eval.CutLossPrice = buyLevels(bars[n-2], current)
	}
	return eval
}

func pctChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
