package normalize

import (
	"github.com/shopspring/decimal"

	"vnsignal/models"
)

var thousand = decimal.NewFromInt(1000)

// Report returns a copy of the analyst report with every price field in
// absolute VND.
//
// The upstream source can ship the report price and the target prices of the
// same record in different units, so each price field is normalized using its
// own local context on the record: the report price forms a set of one, the
// target and cross-firm average target form a second set. This is the
// detect-then-convert policy; the alternative upstream behavior of dividing
// target prices by 1000 unconditionally corrupts records that already arrive
// in thousands.
func Report(r models.AnalystReport) models.AnalystReport {
	out := r

	reportScale := DetectScale([]float64{r.ReportPrice.InexactFloat64()})
	out.ReportPrice = scaleDecimal(r.ReportPrice, reportScale)

	targetScale := DetectScale([]float64{
		r.TargetPrice.InexactFloat64(),
		r.AvgTargetPrice.InexactFloat64(),
	})
	out.TargetPrice = scaleDecimal(r.TargetPrice, targetScale)
	out.AvgTargetPrice = scaleDecimal(r.AvgTargetPrice, targetScale)

	return out
}

// Reports normalizes a slice of analyst reports, record by record.
func Reports(reports []models.AnalystReport) []models.AnalystReport {
	out := make([]models.AnalystReport, len(reports))
	for i, r := range reports {
		out[i] = Report(r)
	}
	return out
}

func scaleDecimal(v decimal.Decimal, scale PriceScale) decimal.Decimal {
	if scale == ScaleThousands && v.IsPositive() {
		return v.Mul(thousand)
	}
	return v
}
