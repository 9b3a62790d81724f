package evaluator

import (
	"sync"
	"time"

	"vnsignal/models"
)

// SeriesKey identifies one cached bar series.
type SeriesKey struct {
	Symbol     string
	Resolution string
	Size       int
}

type seriesEntry struct {
	bars     []models.PriceBar
	storedAt time.Time
}

// SeriesCache is an in-memory TTL cache for normalized bar series, keyed by
// (symbol, resolution, size). It sits in front of the market data fetch; the
// evaluators themselves stay cache-agnostic.
type SeriesCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[SeriesKey]seriesEntry
}

// NewSeriesCache creates a cache with the given TTL. A TTL of 0 effectively
// disables caching.
func NewSeriesCache(ttl time.Duration) *SeriesCache {
	return &SeriesCache{
		ttl:     ttl,
		entries: make(map[SeriesKey]seriesEntry),
	}
}

// Get returns the cached series for key and whether it is still within TTL.
func (c *SeriesCache) Get(key SeriesKey) ([]models.PriceBar, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Since(e.storedAt) >= c.ttl {
		return nil, false
	}
	return e.bars, true
}

// Set stores a series under key, replacing any previous entry.
func (c *SeriesCache) Set(key SeriesKey, bars []models.PriceBar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = seriesEntry{bars: bars, storedAt: time.Now()}
}

// Invalidate removes the entry for key, forcing the next Get to miss.
func (c *SeriesCache) Invalidate(key SeriesKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Purge drops every expired entry and returns how many were removed.
func (c *SeriesCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if time.Since(e.storedAt) >= c.ttl {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// TTL returns the cache's time-to-live duration.
func (c *SeriesCache) TTL() time.Duration {
	return c.ttl
}
