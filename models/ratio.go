package models

// Ratio codes as delivered by the VNDirect finfo API.
const (
	RatioPriceToEarnings = "PRICE_TO_EARNINGS"
	RatioPriceToBook     = "PRICE_TO_BOOK"
	RatioROE             = "ROAE_TR_AVG5Q"
	RatioDividendYield   = "DIVIDEND_YIELD"
	RatioMarketCap       = "MARKETCAP"
	RatioFreeFloat       = "FREEFLOAT"
)

// RatioSet maps a ratio code to its value for one symbol at one point in
// time. A missing key means "insufficient data for that factor": consumers
// must skip the factor, never substitute zero.
type RatioSet map[string]float64

// Get returns the ratio value and whether it is present.
func (r RatioSet) Get(code string) (float64, bool) {
	v, ok := r[code]
	return v, ok
}

// Has reports whether every given code is present.
func (r RatioSet) Has(codes ...string) bool {
	for _, c := range codes {
		if _, ok := r[c]; !ok {
			return false
		}
	}
	return true
}
