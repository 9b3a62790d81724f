package services

import (
	"context"
	"encoding/json"
	"time"

	"vnsignal/models"
	"vnsignal/observability"
	"vnsignal/repository"
)

// MarketDataCache is the persistence-backed cache the decorator reads through.
type MarketDataCache interface {
	GetCachedBars(ctx context.Context, symbol, resolution string) ([]models.PriceBar, error)
	SetCachedBars(ctx context.Context, symbol, resolution string, bars []models.PriceBar, ttl time.Duration) error
	GetCachedData(ctx context.Context, symbol, dataType string) (json.RawMessage, error)
	SetCachedData(ctx context.Context, symbol, dataType string, data json.RawMessage, ttl time.Duration) error
}

// CachedMarketData wraps a VNDirect service with the database-backed
// market_data_cache table. Cache failures degrade to upstream fetches; they
// never fail a request.
type CachedMarketData struct {
	upstream   VNDirectServiceInterface
	cache      MarketDataCache
	resolution string
	ttl        time.Duration
}

// NewCachedMarketData creates the caching decorator.
func NewCachedMarketData(upstream VNDirectServiceInterface, cache MarketDataCache, resolution string, ttl time.Duration) *CachedMarketData {
	return &CachedMarketData{
		upstream:   upstream,
		cache:      cache,
		resolution: resolution,
		ttl:        ttl,
	}
}

// GetBars returns the bar series for symbol, serving from the database cache
// when a fresh entry exists.
func (c *CachedMarketData) GetBars(ctx context.Context, symbol string, size int) ([]models.PriceBar, error) {
	cached, err := c.cache.GetCachedBars(ctx, symbol, c.resolution)
	if err != nil {
		observability.Warn("bar cache read failed", "symbol", symbol, "error", err)
	}
	if len(cached) > 0 {
		observability.GetMetrics().RecordCacheHit("bars")
		return cached, nil
	}
	observability.GetMetrics().RecordCacheMiss("bars")

	bars, err := c.upstream.GetBars(ctx, symbol, size)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetCachedBars(ctx, symbol, c.resolution, bars, c.ttl); err != nil {
		observability.Warn("bar cache write failed", "symbol", symbol, "error", err)
	}
	return bars, nil
}

// GetRatios returns the latest financial ratios for symbol, cached under the
// ratios data type.
func (c *CachedMarketData) GetRatios(ctx context.Context, symbol string) (models.RatioSet, error) {
	raw, err := c.cache.GetCachedData(ctx, symbol, repository.CacheTypeRatios)
	if err != nil {
		observability.Warn("ratio cache read failed", "symbol", symbol, "error", err)
	}
	if raw != nil {
		var ratios models.RatioSet
		if err := json.Unmarshal(raw, &ratios); err == nil {
			observability.GetMetrics().RecordCacheHit("ratios")
			return ratios, nil
		}
		observability.Warn("discarding unreadable cached ratios", "symbol", symbol)
	}
	observability.GetMetrics().RecordCacheMiss("ratios")

	ratios, err := c.upstream.GetRatios(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(ratios); err == nil {
		if err := c.cache.SetCachedData(ctx, symbol, repository.CacheTypeRatios, data, c.ttl); err != nil {
			observability.Warn("ratio cache write failed", "symbol", symbol, "error", err)
		}
	}
	return ratios, nil
}

// GetReports returns analyst reports for symbol within lookback, cached under
// the reports data type.
func (c *CachedMarketData) GetReports(ctx context.Context, symbol string, lookback time.Duration) ([]models.AnalystReport, error) {
	raw, err := c.cache.GetCachedData(ctx, symbol, repository.CacheTypeReports)
	if err != nil {
		observability.Warn("report cache read failed", "symbol", symbol, "error", err)
	}
	if raw != nil {
		var reports []models.AnalystReport
		if err := json.Unmarshal(raw, &reports); err == nil {
			observability.GetMetrics().RecordCacheHit("reports")
			return reports, nil
		}
		observability.Warn("discarding unreadable cached reports", "symbol", symbol)
	}
	observability.GetMetrics().RecordCacheMiss("reports")

	reports, err := c.upstream.GetReports(ctx, symbol, lookback)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(reports); err == nil {
		if err := c.cache.SetCachedData(ctx, symbol, repository.CacheTypeReports, data, c.ttl); err != nil {
			observability.Warn("report cache write failed", "symbol", symbol, "error", err)
		}
	}
	return reports, nil
}
