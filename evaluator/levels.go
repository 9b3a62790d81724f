package evaluator

import (
	"vnsignal/models"
	"vnsignal/series"
)

// cutLossRatio is the fixed 3.5% stop below the current price attached to
// every BUY signal.
const cutLossRatio = 0.965

// buyLevels derives the suggested entry and stop for a BUY signal: the entry
// is the Woodie S2 support from the prior day's adjusted OHLC, the stop is a
// fixed fraction of the current price. The entry is omitted (nil) when the
// prior bar violates the pivot preconditions; the stop is always available.
func buyLevels(prev models.PriceBar, currentPrice float64) (buyPrice, cutLossPrice *float64) {
	if pp, ok := series.WoodiePivots(prev.AdHigh, prev.AdLow, prev.AdClose); ok && pp.S2 > 0 {
		s2 := pp.S2
		buyPrice = &s2
	}
	stop := currentPrice * cutLossRatio
	cutLossPrice = &stop
	return buyPrice, cutLossPrice
}
