package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AnalystReport is one analyst recommendation record for one symbol.
// Prices from the upstream source arrive in inconsistent units (absolute VND
// or VND/1000) and must pass through the normalize package before any
// comparison or arithmetic.
type AnalystReport struct {
	Symbol         string          `json:"symbol"`
	Firm           string          `json:"firm"`
	Type           string          `json:"type"` // BUY / HOLD / SELL, case- and locale-insensitive
	ReportDate     time.Time       `json:"report_date"`
	ReportPrice    decimal.Decimal `json:"report_price"`
	TargetPrice    decimal.Decimal `json:"target_price"`
	AvgTargetPrice decimal.Decimal `json:"avg_target_price"`
}

// ReportAction is the normalized recommendation type of a report.
type ReportAction string

const (
	ReportActionBuy     ReportAction = "buy"
	ReportActionHold    ReportAction = "hold"
	ReportActionSell    ReportAction = "sell"
	ReportActionUnknown ReportAction = "unknown"
)

// Action normalizes the free-form recommendation type. The upstream mixes
// English and Vietnamese labels in arbitrary case.
func (r AnalystReport) Action() ReportAction {
	switch strings.ToUpper(strings.TrimSpace(r.Type)) {
	case "BUY", "MUA":
		return ReportActionBuy
	case "HOLD", "NEUTRAL", "GIỮ", "NẮM GIỮ", "TRUNG LẬP":
		return ReportActionHold
	case "SELL", "BÁN":
		return ReportActionSell
	default:
		return ReportActionUnknown
	}
}

// Consensus is the aggregate tally of analyst recommendations for a symbol.
// Average prices are in normalized (absolute VND) units.
type Consensus struct {
	Total          int             `json:"total"`
	Buy            int             `json:"buy"`
	Hold           int             `json:"hold"`
	Sell           int             `json:"sell"`
	AvgTargetPrice decimal.Decimal `json:"avg_target_price"`
	AvgReportPrice decimal.Decimal `json:"avg_report_price"`
}

// BuyPercent returns the share of buy recommendations, 0-100.
func (c Consensus) BuyPercent() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Buy) / float64(c.Total) * 100
}

// SellPercent returns the share of sell recommendations, 0-100.
func (c Consensus) SellPercent() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Sell) / float64(c.Total) * 100
}
