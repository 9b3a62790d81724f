package evaluator

import (
	"fmt"

	"vnsignal/models"
	"vnsignal/normalize"
)

// Long-term factor weights. Consensus splits into the recommendation tally
// and the target-price upside; the remaining factors come from the ratio set.
const (
	weightConsensus = 30
	weightUpside    = 15
	weightPE        = 20
	weightPB        = 15
	weightROE       = 20
	weightDividend  = 10
	weightMarketCap = 3
	weightFreeFloat = 2
)

// maxLongTermWeight is the weight when every factor has data. Confidence is
// damped when less than half of it was evaluable.
const maxLongTermWeight = weightConsensus + weightUpside + weightPE + weightPB +
	weightROE + weightDividend + weightMarketCap + weightFreeFloat

// Market-cap tiers in VND.
const (
	largeCapVND = 10e12
	midCapVND   = 1e12
)

// LongTermEvaluator scores a symbol from analyst consensus and financial
// ratios. Ratio values follow the upstream convention of fractions (ROE,
// dividend yield, free float are multiplied by 100 for the percentage
// thresholds). Like the short-term evaluator it is pure and never errors:
// missing factors reduce the evaluable weight instead.
type LongTermEvaluator struct {
	strategy SignalStrategy
}

// NewLongTermEvaluator creates an evaluator with ±15 signal thresholds.
func NewLongTermEvaluator() *LongTermEvaluator {
	return &LongTermEvaluator{strategy: NewDefaultStrategy()}
}

// NewLongTermEvaluatorWith creates an evaluator with an explicit strategy.
func NewLongTermEvaluatorWith(strategy SignalStrategy) *LongTermEvaluator {
	return &LongTermEvaluator{strategy: strategy}
}

// Evaluate scores a symbol. The bar series supplies the current price only;
// reports must already be price-normalized (see normalize.Reports) and
// ideally pre-filtered to a 12-month lookback, though any list, filtered or
// empty, is tolerated.
func (e *LongTermEvaluator) Evaluate(symbol string, bars []models.PriceBar, ratios models.RatioSet, reports []models.AnalystReport) models.Evaluation {
	var bullish, bearish, totalWeight float64
	var reasons []string

	var currentPrice *float64
	if len(bars) > 0 {
		p := bars[len(bars)-1].Close
		currentPrice = &p
	}

	// Factor 1: analyst consensus and target-price upside.
	var consensus *models.Consensus
	if len(reports) > 0 {
		c := AggregateConsensus(reports)
		consensus = &c
		totalWeight += weightConsensus

		buyPct := c.BuyPercent()
		sellPct := c.SellPercent()
		switch {
		case buyPct >= 60:
			bullish += weightConsensus
			reasons = append(reasons, fmt.Sprintf("strong analyst consensus: %d of %d recommend buying", c.Buy, c.Total))
		case buyPct >= 40:
			bullish += 20
			reasons = append(reasons, fmt.Sprintf("positive analyst lean: %d of %d recommend buying", c.Buy, c.Total))
		case sellPct >= 40:
			bearish += 20
			reasons = append(reasons, fmt.Sprintf("negative analyst lean: %d of %d recommend selling", c.Sell, c.Total))
		default:
			reasons = append(reasons, fmt.Sprintf("mixed analyst consensus across %d reports", c.Total))
		}

		if currentPrice != nil && c.AvgTargetPrice.IsPositive() {
			totalWeight += weightUpside
			target := normalize.ComparableScale(c.AvgTargetPrice.InexactFloat64())
			price := normalize.ComparableScale(*currentPrice)
			if price > 0 {
				upside := (target - price) / price * 100
				switch {
				case upside > 20:
					bullish += weightUpside
					reasons = append(reasons, fmt.Sprintf("average analyst target implies %+.1f%% upside", upside))
				case upside > 10:
					bullish += 10
					reasons = append(reasons, fmt.Sprintf("average analyst target implies %+.1f%% upside", upside))
				case upside > 0:
					bullish += 5
					reasons = append(reasons, fmt.Sprintf("average analyst target implies %+.1f%% upside", upside))
				case upside < -10:
					bearish += weightUpside
					reasons = append(reasons, fmt.Sprintf("price is %.1f%% above the average analyst target", -upside))
				}
			}
		}
	}

	// Factor 2: P/E.
	if pe, ok := ratios.Get(models.RatioPriceToEarnings); ok && pe != 0 {
		totalWeight += weightPE
		switch {
		case pe < 0:
			bearish += 16
			reasons = append(reasons, "negative P/E: the company is losing money")
		case pe < 10:
			bullish += weightPE
			reasons = append(reasons, fmt.Sprintf("attractive P/E of %.1f", pe))
		case pe < 20:
			bullish += 12
			reasons = append(reasons, fmt.Sprintf("reasonable P/E of %.1f", pe))
		case pe < 30:
			bearish += 8
			reasons = append(reasons, fmt.Sprintf("elevated P/E of %.1f", pe))
		default:
			bearish += weightPE
			reasons = append(reasons, fmt.Sprintf("expensive P/E of %.1f", pe))
		}
	}

	// Factor 3: P/B.
	if pb, ok := ratios.Get(models.RatioPriceToBook); ok && pb > 0 {
		totalWeight += weightPB
		switch {
		case pb < 1:
			bullish += weightPB
			reasons = append(reasons, fmt.Sprintf("trading below book value (P/B %.2f)", pb))
		case pb < 2:
			bullish += 8
			reasons = append(reasons, fmt.Sprintf("moderate P/B of %.2f", pb))
		case pb < 3:
			bearish += 4
			reasons = append(reasons, fmt.Sprintf("elevated P/B of %.2f", pb))
		default:
			bearish += weightPB
			reasons = append(reasons, fmt.Sprintf("expensive P/B of %.2f", pb))
		}
	}

	// Factor 4: ROE, delivered as a fraction.
	if roe, ok := ratios.Get(models.RatioROE); ok {
		totalWeight += weightROE
		roePct := roe * 100
		switch {
		case roePct > 20:
			bullish += weightROE
			reasons = append(reasons, fmt.Sprintf("excellent ROE of %.1f%%", roePct))
		case roePct > 15:
			bullish += 12
			reasons = append(reasons, fmt.Sprintf("good ROE of %.1f%%", roePct))
		case roePct > 10:
			bullish += 4
			reasons = append(reasons, fmt.Sprintf("average ROE of %.1f%%", roePct))
		case roePct > 0:
			bearish += 8
			reasons = append(reasons, fmt.Sprintf("weak ROE of %.1f%%", roePct))
		default:
			bearish += weightROE
			reasons = append(reasons, fmt.Sprintf("negative ROE of %.1f%%", roePct))
		}
	}

	// Factor 5: dividend yield, delivered as a fraction.
	if dy, ok := ratios.Get(models.RatioDividendYield); ok {
		totalWeight += weightDividend
		dyPct := dy * 100
		switch {
		case dyPct > 5:
			bullish += weightDividend
			reasons = append(reasons, fmt.Sprintf("high dividend yield of %.1f%%", dyPct))
		case dyPct >= 3:
			bullish += 7
			reasons = append(reasons, fmt.Sprintf("solid dividend yield of %.1f%%", dyPct))
		case dyPct > 0:
			reasons = append(reasons, fmt.Sprintf("modest dividend yield of %.1f%%", dyPct))
		default:
			reasons = append(reasons, "no dividend paid")
		}
	}

	// Factor 6: market cap and free float.
	if mc, ok := ratios.Get(models.RatioMarketCap); ok && mc > 0 {
		totalWeight += weightMarketCap
		switch {
		case mc > largeCapVND:
			bullish += 3
			reasons = append(reasons, "large-cap stock, lower volatility")
		case mc > midCapVND:
			bullish += 2
			reasons = append(reasons, "mid-cap stock")
		default:
			reasons = append(reasons, "small-cap stock, higher risk")
		}
	}
	if ff, ok := ratios.Get(models.RatioFreeFloat); ok {
		totalWeight += weightFreeFloat
		ffPct := ff * 100
		if ffPct > 30 {
			bullish += 2
			reasons = append(reasons, fmt.Sprintf("healthy free float of %.0f%%", ffPct))
		} else if ffPct < 15 {
			bearish += 2
			reasons = append(reasons, fmt.Sprintf("thin free float of %.0f%%, liquidity risk", ffPct))
		}
	}

	if totalWeight == 0 {
		return models.HoldEvaluation(symbol, models.HorizonLongTerm, "insufficient fundamental data")
	}

	netScore := bullish - bearish
	confidence := min(abs(netScore), 100)
	if totalWeight < maxLongTermWeight/2.0 {
		confidence = min(confidence*0.7, 70)
		reasons = append(reasons, "limited fundamental data coverage, confidence reduced")
	}
	signal := e.strategy.DetermineSignal(netScore, confidence)

	return models.Evaluation{
		Symbol:       symbol,
		Horizon:      models.HorizonLongTerm,
		Signal:       signal,
		Confidence:   confidence,
		Reasons:      reasons,
		NetScore:     netScore,
		TotalWeight:  totalWeight,
		CurrentPrice: currentPrice,
		Consensus:    consensus,
	}
}
