package services

import (
	"context"
	"time"

	"vnsignal/models"
)

// VNDirectServiceInterface defines the market data operations the evaluation
// engine consumes: daily price history, financial ratios, and analyst reports.
type VNDirectServiceInterface interface {
	GetBars(ctx context.Context, symbol string, size int) ([]models.PriceBar, error)
	GetRatios(ctx context.Context, symbol string) (models.RatioSet, error)
	GetReports(ctx context.Context, symbol string, lookback time.Duration) ([]models.AnalystReport, error)
}

// Compile-time interface verification
var _ VNDirectServiceInterface = (*VNDirectService)(nil)
