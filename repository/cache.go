package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vnsignal/models"
	"vnsignal/observability"

	"github.com/jackc/pgx/v5"
)

// Cache data types stored in market_data_cache. Bars are keyed per
// resolution so intraday and daily series never collide.
const (
	CacheTypeRatios  = "ratios"
	CacheTypeReports = "reports"
)

// CacheTypeBars builds the data_type key for a bar series.
func CacheTypeBars(resolution string) string {
	return "bars:" + resolution
}

// GetCachedData retrieves raw cached data for a symbol and data type.
// Returns nil with no error when the entry is absent or expired.
func (r *Repository) GetCachedData(ctx context.Context, symbol, dataType string) (json.RawMessage, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "market_data_cache")

	var data []byte

	// Let the database handle expiry check to avoid timezone issues
	err := r.db.QueryRow(ctx, `
		SELECT data FROM market_data_cache
		WHERE symbol = $1 AND data_type = $2 AND expires_at > NOW()
	`, symbol, dataType).Scan(&data)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		metrics.RecordDBError("select", "market_data_cache")
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	return data, nil
}

// SetCachedData stores raw data in the cache with a TTL
func (r *Repository) SetCachedData(ctx context.Context, symbol, dataType string, data json.RawMessage, ttl time.Duration) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("upsert", "market_data_cache")

	_, err := r.db.Exec(ctx, `
		INSERT INTO market_data_cache (symbol, data_type, data, expires_at)
		VALUES ($1, $2, $3, NOW() + $4::interval)
		ON CONFLICT (symbol, data_type)
		DO UPDATE SET data = EXCLUDED.data, expires_at = NOW() + $4::interval, created_at = NOW()
	`, symbol, dataType, []byte(data), ttl.String())

	if err != nil {
		metrics.RecordDBError("upsert", "market_data_cache")
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// GetCachedBars returns the cached bar series for a symbol and resolution,
// or nil when no fresh entry exists.
func (r *Repository) GetCachedBars(ctx context.Context, symbol, resolution string) ([]models.PriceBar, error) {
	data, err := r.GetCachedData(ctx, symbol, CacheTypeBars(resolution))
	if err != nil || data == nil {
		return nil, err
	}

	var bars []models.PriceBar
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached bars: %w", err)
	}
	return bars, nil
}

// SetCachedBars stores a bar series for a symbol and resolution.
func (r *Repository) SetCachedBars(ctx context.Context, symbol, resolution string, bars []models.PriceBar, ttl time.Duration) error {
	data, err := json.Marshal(bars)
	if err != nil {
		return fmt.Errorf("failed to marshal bars: %w", err)
	}
	return r.SetCachedData(ctx, symbol, CacheTypeBars(resolution), data, ttl)
}

// InvalidateCache removes cached data for a symbol and data type
func (r *Repository) InvalidateCache(ctx context.Context, symbol, dataType string) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		DELETE FROM market_data_cache WHERE symbol = $1 AND data_type = $2
	`, symbol, dataType)

	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	return nil
}

// InvalidateAllCacheForSymbol removes all cached data for a symbol
func (r *Repository) InvalidateAllCacheForSymbol(ctx context.Context, symbol string) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `DELETE FROM market_data_cache WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// CleanExpiredCache removes all expired cache entries
func (r *Repository) CleanExpiredCache(ctx context.Context) (int64, error) {
	if err := r.checkDB(); err != nil {
		return 0, err
	}
	result, err := r.db.Exec(ctx, `DELETE FROM market_data_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to clean expired cache: %w", err)
	}
	return result.RowsAffected(), nil
}
