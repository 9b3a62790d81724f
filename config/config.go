package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// VNDirect upstream configuration
	VNDirect VNDirectConfig

	// Evaluator configuration
	Evaluator EvaluatorConfig

	// Cache configuration
	Cache CacheConfig

	// Watchlist scheduler configuration
	Watchlist WatchlistConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// VNDirectConfig holds VNDirect API configuration
type VNDirectConfig struct {
	BaseURL            string
	Resolution         string
	BarSize            int
	ReportLookbackDays int
}

// EvaluatorConfig holds evaluation engine configuration
type EvaluatorConfig struct {
	TimeoutSeconds   int
	ConcurrencyLimit int
	Strategy         string  // default, conservative, or custom
	BuyThreshold     float64 // for custom strategy
	SellThreshold    float64 // for custom strategy
	MinConfidence    float64 // for custom/conservative strategy
	BollingerPeriod  int
	BollingerStdDev  float64
}

// CacheConfig holds cache TTL configuration
type CacheConfig struct {
	SeriesTTLSeconds  int // in-memory bar series cache
	DBCacheTTLMinutes int // market_data_cache table entries
}

// WatchlistConfig holds the scheduled watchlist refresh configuration
type WatchlistConfig struct {
	Symbols       []string
	CronSpec      string
	RetentionDays int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Addr               string
	CORSAllowedOrigins string
	Production         bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		VNDirect: VNDirectConfig{
			BaseURL:            getEnvString("VNDIRECT_BASE_URL", "https://finfo-api.vndirect.com.vn"),
			Resolution:         getEnvString("VNDIRECT_RESOLUTION", "D"),
			BarSize:            getEnvInt("VNDIRECT_BAR_SIZE", 260),
			ReportLookbackDays: getEnvInt("VNDIRECT_REPORT_LOOKBACK_DAYS", 365),
		},
		Evaluator: EvaluatorConfig{
			TimeoutSeconds:   getEnvInt("EVALUATOR_TIMEOUT_SECONDS", 30),
			ConcurrencyLimit: getEnvInt("EVALUATOR_CONCURRENCY_LIMIT", 3),
			Strategy:         getEnvString("EVALUATOR_STRATEGY", "default"),
			BuyThreshold:     getEnvFloatUnbounded("EVALUATOR_BUY_THRESHOLD", 15),
			SellThreshold:    getEnvFloatUnbounded("EVALUATOR_SELL_THRESHOLD", -15),
			MinConfidence:    getEnvFloatUnbounded("EVALUATOR_MIN_CONFIDENCE", 0),
			BollingerPeriod:  getEnvInt("EVALUATOR_BOLLINGER_PERIOD", 20),
			BollingerStdDev:  getEnvFloatUnbounded("EVALUATOR_BOLLINGER_STDDEV", 2),
		},
		Cache: CacheConfig{
			SeriesTTLSeconds:  getEnvInt("SERIES_CACHE_TTL_SECONDS", 300),
			DBCacheTTLMinutes: getEnvInt("DB_CACHE_TTL_MINUTES", 60),
		},
		Watchlist: WatchlistConfig{
			Symbols:       splitSymbols(os.Getenv("WATCHLIST_SYMBOLS")),
			CronSpec:      getEnvString("WATCHLIST_CRON", "0 30 8 * * MON-FRI"),
			RetentionDays: getEnvInt("EVALUATION_RETENTION_DAYS", 90),
		},
		HTTP: HTTPConfig{
			Addr:               getEnvString("HTTP_ADDR", ":8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
			Production:         getEnvBool("PRODUCTION", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Evaluator.TimeoutSeconds <= 0 {
		return fmt.Errorf("EVALUATOR_TIMEOUT_SECONDS must be positive, got %d", c.Evaluator.TimeoutSeconds)
	}
	if c.Evaluator.ConcurrencyLimit <= 0 {
		return fmt.Errorf("EVALUATOR_CONCURRENCY_LIMIT must be positive, got %d", c.Evaluator.ConcurrencyLimit)
	}
	if c.Evaluator.BuyThreshold <= c.Evaluator.SellThreshold {
		return fmt.Errorf("EVALUATOR_BUY_THRESHOLD (%.1f) must exceed EVALUATOR_SELL_THRESHOLD (%.1f)",
			c.Evaluator.BuyThreshold, c.Evaluator.SellThreshold)
	}
	if c.Evaluator.BollingerPeriod < 2 {
		return fmt.Errorf("EVALUATOR_BOLLINGER_PERIOD must be at least 2, got %d", c.Evaluator.BollingerPeriod)
	}
	if c.Evaluator.BollingerStdDev <= 0 {
		return fmt.Errorf("EVALUATOR_BOLLINGER_STDDEV must be positive, got %.1f", c.Evaluator.BollingerStdDev)
	}
	if c.VNDirect.BarSize <= 0 {
		return fmt.Errorf("VNDIRECT_BAR_SIZE must be positive, got %d", c.VNDirect.BarSize)
	}

	return nil
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasWatchlist returns true if a watchlist refresh schedule is configured
func (c *Config) HasWatchlist() bool {
	return len(c.Watchlist.Symbols) > 0
}

// splitSymbols parses a comma-separated symbol list, uppercasing entries
func splitSymbols(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.ToUpper(strings.TrimSpace(p))
		if s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatUnbounded(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL: "",
		},
		VNDirect: VNDirectConfig{
			BaseURL:            "https://finfo-api.vndirect.com.vn",
			Resolution:         "D",
			BarSize:            260,
			ReportLookbackDays: 365,
		},
		Evaluator: EvaluatorConfig{
			TimeoutSeconds:   30,
			ConcurrencyLimit: 3,
			Strategy:         "default",
			BuyThreshold:     15,
			SellThreshold:    -15,
			MinConfidence:    0,
			BollingerPeriod:  20,
			BollingerStdDev:  2,
		},
		Cache: CacheConfig{
			SeriesTTLSeconds:  300,
			DBCacheTTLMinutes: 60,
		},
		Watchlist: WatchlistConfig{
			Symbols:       nil,
			CronSpec:      "0 30 8 * * MON-FRI",
			RetentionDays: 90,
		},
		HTTP: HTTPConfig{
			Addr:               ":8080",
			CORSAllowedOrigins: "*",
			Production:         false,
		},
	}
}
