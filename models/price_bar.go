package models

import "time"

// PriceBar is one trading day (or aggregated period) for one symbol.
// The ad* fields carry corporate-action-adjusted prices and are what the
// evaluators use for every historical comparison; raw prices are kept for
// display. Bars are never mutated after creation.
type PriceBar struct {
	Symbol    string    `json:"symbol"`
	Date      time.Time `json:"date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	AdOpen    float64   `json:"ad_open"`
	AdHigh    float64   `json:"ad_high"`
	AdLow     float64   `json:"ad_low"`
	AdClose   float64   `json:"ad_close"`
	Volume    int64     `json:"volume"`
	Value     float64   `json:"value"`
	Change    float64   `json:"change"`
	PctChange float64   `json:"pct_change"`
}

// AdCloses extracts the adjusted close series from ascending-by-date bars.
func AdCloses(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.AdClose
	}
	return closes
}

// Volumes extracts the volume series from ascending-by-date bars.
func Volumes(bars []PriceBar) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = float64(b.Volume)
	}
	return vols
}
