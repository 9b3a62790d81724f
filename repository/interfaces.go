package repository

import (
	"context"
	"encoding/json"
	"time"

	"vnsignal/models"
)

// RepositoryInterface defines all repository operations
type RepositoryInterface interface {
	// Health and lifecycle
	Close()
	Health(ctx context.Context) error

	// Evaluations
	SaveEvaluation(ctx context.Context, eval *models.Evaluation) error
	GetEvaluations(ctx context.Context, symbol string, limit int) ([]StoredEvaluation, error)
	GetLatestEvaluation(ctx context.Context, symbol string, horizon models.Horizon) (*StoredEvaluation, error)
	DeleteEvaluationsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Cache
	GetCachedData(ctx context.Context, symbol, dataType string) (json.RawMessage, error)
	SetCachedData(ctx context.Context, symbol, dataType string, data json.RawMessage, ttl time.Duration) error
	GetCachedBars(ctx context.Context, symbol, resolution string) ([]models.PriceBar, error)
	SetCachedBars(ctx context.Context, symbol, resolution string, bars []models.PriceBar, ttl time.Duration) error
	InvalidateCache(ctx context.Context, symbol, dataType string) error
	InvalidateAllCacheForSymbol(ctx context.Context, symbol string) error
	CleanExpiredCache(ctx context.Context) (int64, error)
}

// Compile-time interface verification
var _ RepositoryInterface = (*Repository)(nil)
