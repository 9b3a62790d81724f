package evaluator

import (
	"math"
	"strings"
	"testing"
	"time"

	"vnsignal/models"

	"github.com/shopspring/decimal"
)

func priceBar(closePrice float64) []models.PriceBar {
	return []models.PriceBar{{
		Symbol: "VNM",
		Date:   time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Close:  closePrice,
	}}
}

func buyReport(target int64) models.AnalystReport {
	return models.AnalystReport{
		Symbol:      "VNM",
		Firm:        "SSI",
		Type:        "BUY",
		TargetPrice: decimal.NewFromInt(target),
	}
}

func TestLongTerm_NoData(t *testing.T) {
	eval := NewLongTermEvaluator().Evaluate("VNM", nil, nil, nil)

	if eval.Signal != models.SignalHold {
		t.Errorf("expected HOLD, got %s", eval.Signal)
	}
	if eval.Confidence != 0 {
		t.Errorf("expected confidence 0, got %.1f", eval.Confidence)
	}
	if len(eval.Reasons) != 1 || eval.Reasons[0] != "insufficient fundamental data" {
		t.Errorf("unexpected reasons %v", eval.Reasons)
	}
}

func TestLongTerm_WeakFundamentals(t *testing.T) {
	// Expensive P/E, expensive P/B, negative ROE; no analyst coverage.
	// Only 55 of 115 weight is evaluable, so confidence is damped.
	ratios := models.RatioSet{
		models.RatioPriceToEarnings: 35,
		models.RatioPriceToBook:     4.5,
		models.RatioROE:             -0.02,
	}
	eval := NewLongTermEvaluator().Evaluate("VNM", priceBar(50000), ratios, nil)

	if eval.Signal != models.SignalSell {
		t.Fatalf("expected SELL, got %s (net %.1f)", eval.Signal, eval.NetScore)
	}
	if eval.NetScore != -55 {
		t.Errorf("expected net score -55, got %.1f", eval.NetScore)
	}
	if eval.TotalWeight != 55 {
		t.Errorf("expected total weight 55, got %.1f", eval.TotalWeight)
	}
	// 55 * 0.7 with partial data coverage
	if math.Abs(eval.Confidence-38.5) > 1e-9 {
		t.Errorf("expected damped confidence 38.5, got %.1f", eval.Confidence)
	}
	last := eval.Reasons[len(eval.Reasons)-1]
	if !strings.Contains(last, "confidence reduced") {
		t.Errorf("expected damping note last, got %q", last)
	}
	if eval.Consensus != nil {
		t.Error("expected no consensus without reports")
	}
}

func TestLongTerm_StrongFundamentals(t *testing.T) {
	ratios := models.RatioSet{
		models.RatioPriceToEarnings: 8,
		models.RatioPriceToBook:     0.8,
		models.RatioROE:             0.25,
		models.RatioDividendYield:   0.06,
		models.RatioMarketCap:       20e12,
		models.RatioFreeFloat:       0.5,
	}
	// 3 of 4 buy, average target 65000 vs price 50000: 30% upside
	reports := []models.AnalystReport{
		buyReport(65000),
		buyReport(65000),
		{Symbol: "VNM", Firm: "VCSC", Type: "MUA", TargetPrice: decimal.NewFromInt(65000)},
		{Symbol: "VNM", Firm: "HSC", Type: "HOLD", TargetPrice: decimal.NewFromInt(65000)},
	}

	eval := NewLongTermEvaluator().Evaluate("VNM", priceBar(50000), ratios, reports)

	if eval.Signal != models.SignalBuy {
		t.Fatalf("expected BUY, got %s (net %.1f)", eval.Signal, eval.NetScore)
	}
	if eval.NetScore != 115 {
		t.Errorf("expected net score 115, got %.1f", eval.NetScore)
	}
	if eval.TotalWeight != 115 {
		t.Errorf("expected total weight 115, got %.1f", eval.TotalWeight)
	}
	// Confidence caps at 100 and is not damped with full coverage
	if eval.Confidence != 100 {
		t.Errorf("expected confidence 100, got %.1f", eval.Confidence)
	}
	if eval.Consensus == nil {
		t.Fatal("expected consensus to be attached")
	}
	if eval.Consensus.Buy != 3 || eval.Consensus.Total != 4 {
		t.Errorf("expected 3/4 buy consensus, got %d/%d", eval.Consensus.Buy, eval.Consensus.Total)
	}
	if !strings.Contains(eval.Reasons[0], "strong analyst consensus") {
		t.Errorf("expected consensus reason first, got %q", eval.Reasons[0])
	}
	if !strings.Contains(eval.Reasons[1], "upside") {
		t.Errorf("expected upside reason second, got %q", eval.Reasons[1])
	}
}

func TestLongTerm_UpsideAgainstThousandsPrice(t *testing.T) {
	// Targets in absolute VND against a bar price in VND/1000 must still
	// compare on the same scale: 65000 vs 50 is 30% upside, not 129900%.
	reports := []models.AnalystReport{buyReport(65000)}
	eval := NewLongTermEvaluator().Evaluate("VNM", priceBar(50), nil, reports)

	found := false
	for _, r := range eval.Reasons {
		if strings.Contains(r, "+30.0% upside") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected +30.0%% upside reason, got %v", eval.Reasons)
	}
}

func TestLongTerm_MixedConsensus(t *testing.T) {
	reports := []models.AnalystReport{
		{Type: "BUY"}, {Type: "SELL"}, {Type: "HOLD"},
	}
	eval := NewLongTermEvaluator().Evaluate("VNM", nil, nil, reports)

	if eval.Consensus == nil || eval.Consensus.Buy != 1 || eval.Consensus.Sell != 1 || eval.Consensus.Hold != 1 {
		t.Fatalf("unexpected consensus %+v", eval.Consensus)
	}
	if !strings.Contains(eval.Reasons[0], "mixed analyst consensus") {
		t.Errorf("expected mixed consensus reason, got %q", eval.Reasons[0])
	}
}

func TestLongTerm_NegativePE(t *testing.T) {
	ratios := models.RatioSet{models.RatioPriceToEarnings: -5}
	eval := NewLongTermEvaluator().Evaluate("VNM", nil, ratios, nil)

	found := false
	for _, r := range eval.Reasons {
		if strings.Contains(r, "losing money") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected negative P/E reason, got %v", eval.Reasons)
	}
}

func TestLongTerm_MissingRatiosSkipFactors(t *testing.T) {
	// A zero-valued P/E key is treated as missing, not as a real zero
	ratios := models.RatioSet{
		models.RatioPriceToEarnings: 0,
		models.RatioPriceToBook:     1.5,
	}
	eval := NewLongTermEvaluator().Evaluate("VNM", nil, ratios, nil)

	if eval.TotalWeight != 15 {
		t.Errorf("expected only P/B weight 15, got %.1f", eval.TotalWeight)
	}
}
