package evaluator

import (
	"github.com/shopspring/decimal"

	"vnsignal/models"
)

// AggregateConsensus tallies buy/hold/sell counts and average target/report
// prices from analyst reports. Reports must already be price-normalized;
// records with an unrecognized recommendation type count toward the total but
// no bucket, and non-positive prices are excluded from the averages.
func AggregateConsensus(reports []models.AnalystReport) models.Consensus {
	c := models.Consensus{Total: len(reports)}

	targetSum := decimal.Zero
	targetN := int64(0)
	reportSum := decimal.Zero
	reportN := int64(0)

	for _, r := range reports {
		switch r.Action() {
		case models.ReportActionBuy:
			c.Buy++
		case models.ReportActionHold:
			c.Hold++
		case models.ReportActionSell:
			c.Sell++
		}
		if r.TargetPrice.IsPositive() {
			targetSum = targetSum.Add(r.TargetPrice)
			targetN++
		}
		if r.ReportPrice.IsPositive() {
			reportSum = reportSum.Add(r.ReportPrice)
			reportN++
		}
	}

	if targetN > 0 {
		c.AvgTargetPrice = targetSum.Div(decimal.NewFromInt(targetN)).Round(2)
	}
	if reportN > 0 {
		c.AvgReportPrice = reportSum.Div(decimal.NewFromInt(reportN)).Round(2)
	}
	return c
}
