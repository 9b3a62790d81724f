package config

import (
	"os"
	"reflect"
	"testing"
)

// saveEnv saves current environment variables for restoration
func saveEnv(t *testing.T, keys []string) map[string]string {
	t.Helper()
	saved := make(map[string]string)
	for _, key := range keys {
		saved[key] = os.Getenv(key)
	}
	return saved
}

// restoreEnv restores previously saved environment variables
func restoreEnv(t *testing.T, saved map[string]string) {
	t.Helper()
	for key, val := range saved {
		if val == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, val)
		}
	}
}

// clearEnv clears environment variables
func clearEnv(t *testing.T, keys []string) {
	t.Helper()
	for _, key := range keys {
		os.Unsetenv(key)
	}
}

var allEnvKeys = []string{
	"DATABASE_URL",
	"VNDIRECT_BASE_URL",
	"VNDIRECT_RESOLUTION",
	"VNDIRECT_BAR_SIZE",
	"VNDIRECT_REPORT_LOOKBACK_DAYS",
	"EVALUATOR_TIMEOUT_SECONDS",
	"EVALUATOR_CONCURRENCY_LIMIT",
	"EVALUATOR_STRATEGY",
	"EVALUATOR_BUY_THRESHOLD",
	"EVALUATOR_SELL_THRESHOLD",
	"EVALUATOR_MIN_CONFIDENCE",
	"EVALUATOR_BOLLINGER_PERIOD",
	"EVALUATOR_BOLLINGER_STDDEV",
	"SERIES_CACHE_TTL_SECONDS",
	"DB_CACHE_TTL_MINUTES",
	"WATCHLIST_SYMBOLS",
	"WATCHLIST_CRON",
	"EVALUATION_RETENTION_DAYS",
	"HTTP_ADDR",
	"CORS_ALLOWED_ORIGINS",
	"PRODUCTION",
}

func TestLoad_Defaults(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	if cfg.VNDirect.BaseURL != "https://finfo-api.vndirect.com.vn" {
		t.Errorf("expected default VNDirect base URL, got %s", cfg.VNDirect.BaseURL)
	}
	if cfg.VNDirect.Resolution != "D" {
		t.Errorf("expected Resolution='D', got %s", cfg.VNDirect.Resolution)
	}
	if cfg.VNDirect.BarSize != 260 {
		t.Errorf("expected BarSize=260, got %d", cfg.VNDirect.BarSize)
	}
	if cfg.Evaluator.TimeoutSeconds != 30 {
		t.Errorf("expected TimeoutSeconds=30, got %d", cfg.Evaluator.TimeoutSeconds)
	}
	if cfg.Evaluator.ConcurrencyLimit != 3 {
		t.Errorf("expected ConcurrencyLimit=3, got %d", cfg.Evaluator.ConcurrencyLimit)
	}
	if cfg.Evaluator.Strategy != "default" {
		t.Errorf("expected Strategy='default', got %s", cfg.Evaluator.Strategy)
	}
	if cfg.Evaluator.BuyThreshold != 15 || cfg.Evaluator.SellThreshold != -15 {
		t.Errorf("expected thresholds 15/-15, got %.1f/%.1f",
			cfg.Evaluator.BuyThreshold, cfg.Evaluator.SellThreshold)
	}
	if cfg.Evaluator.BollingerPeriod != 20 || cfg.Evaluator.BollingerStdDev != 2 {
		t.Errorf("expected Bollinger 20/2, got %d/%.1f",
			cfg.Evaluator.BollingerPeriod, cfg.Evaluator.BollingerStdDev)
	}
	if cfg.Cache.SeriesTTLSeconds != 300 {
		t.Errorf("expected SeriesTTLSeconds=300, got %d", cfg.Cache.SeriesTTLSeconds)
	}
	if cfg.Watchlist.CronSpec != "0 30 8 * * MON-FRI" {
		t.Errorf("unexpected default cron spec %q", cfg.Watchlist.CronSpec)
	}
	if cfg.Watchlist.RetentionDays != 90 {
		t.Errorf("expected RetentionDays=90, got %d", cfg.Watchlist.RetentionDays)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected Addr=':8080', got %s", cfg.HTTP.Addr)
	}
	if cfg.HTTP.CORSAllowedOrigins != "*" {
		t.Errorf("expected CORSAllowedOrigins='*', got %s", cfg.HTTP.CORSAllowedOrigins)
	}
	if cfg.HTTP.Production {
		t.Error("expected Production=false by default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("DATABASE_URL", "postgres://localhost/test")
	os.Setenv("VNDIRECT_BASE_URL", "http://localhost:9999")
	os.Setenv("VNDIRECT_BAR_SIZE", "500")
	os.Setenv("EVALUATOR_TIMEOUT_SECONDS", "60")
	os.Setenv("EVALUATOR_STRATEGY", "conservative")
	os.Setenv("EVALUATOR_BUY_THRESHOLD", "25")
	os.Setenv("EVALUATOR_SELL_THRESHOLD", "-25")
	os.Setenv("WATCHLIST_SYMBOLS", "vnm, fpt,HPG")
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("PRODUCTION", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with custom values failed: %v", err)
	}

	if cfg.Database.URL != "postgres://localhost/test" {
		t.Errorf("expected Database.URL='postgres://localhost/test', got %s", cfg.Database.URL)
	}
	if cfg.VNDirect.BaseURL != "http://localhost:9999" {
		t.Errorf("expected custom base URL, got %s", cfg.VNDirect.BaseURL)
	}
	if cfg.VNDirect.BarSize != 500 {
		t.Errorf("expected BarSize=500, got %d", cfg.VNDirect.BarSize)
	}
	if cfg.Evaluator.TimeoutSeconds != 60 {
		t.Errorf("expected TimeoutSeconds=60, got %d", cfg.Evaluator.TimeoutSeconds)
	}
	if cfg.Evaluator.Strategy != "conservative" {
		t.Errorf("expected Strategy='conservative', got %s", cfg.Evaluator.Strategy)
	}
	if cfg.Evaluator.BuyThreshold != 25 || cfg.Evaluator.SellThreshold != -25 {
		t.Errorf("expected thresholds 25/-25, got %.1f/%.1f",
			cfg.Evaluator.BuyThreshold, cfg.Evaluator.SellThreshold)
	}
	if want := []string{"VNM", "FPT", "HPG"}; !reflect.DeepEqual(cfg.Watchlist.Symbols, want) {
		t.Errorf("expected watchlist %v, got %v", want, cfg.Watchlist.Symbols)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("expected Addr=':9090', got %s", cfg.HTTP.Addr)
	}
	if !cfg.HTTP.Production {
		t.Error("expected Production=true")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Evaluator.TimeoutSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Evaluator.ConcurrencyLimit = 0 },
			wantErr: true,
		},
		{
			name: "buy threshold below sell threshold",
			mutate: func(c *Config) {
				c.Evaluator.BuyThreshold = -20
				c.Evaluator.SellThreshold = 20
			},
			wantErr: true,
		},
		{
			name:    "bollinger period too small",
			mutate:  func(c *Config) { c.Evaluator.BollingerPeriod = 1 },
			wantErr: true,
		},
		{
			name:    "negative bollinger stddev",
			mutate:  func(c *Config) { c.Evaluator.BollingerStdDev = -1 },
			wantErr: true,
		},
		{
			name:    "zero bar size",
			mutate:  func(c *Config) { c.VNDirect.BarSize = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad_InvalidValuesUseDefaults(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
	}{
		{"negative timeout", "EVALUATOR_TIMEOUT_SECONDS", "-5"},
		{"zero concurrency", "EVALUATOR_CONCURRENCY_LIMIT", "0"},
		{"non-numeric bar size", "VNDIRECT_BAR_SIZE", "not-a-number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := saveEnv(t, allEnvKeys)
			defer restoreEnv(t, saved)
			clearEnv(t, allEnvKeys)

			os.Setenv(tt.envKey, tt.envVal)

			if _, err := Load(); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestHasDatabase(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{URL: ""},
	}
	if cfg.HasDatabase() {
		t.Error("expected HasDatabase() to return false for empty URL")
	}

	cfg.Database.URL = "postgres://localhost/test"
	if !cfg.HasDatabase() {
		t.Error("expected HasDatabase() to return true for non-empty URL")
	}
}

func TestHasWatchlist(t *testing.T) {
	cfg := &Config{}
	if cfg.HasWatchlist() {
		t.Error("expected HasWatchlist() to return false for empty watchlist")
	}

	cfg.Watchlist.Symbols = []string{"VNM"}
	if !cfg.HasWatchlist() {
		t.Error("expected HasWatchlist() to return true for non-empty watchlist")
	}
}

func TestSplitSymbols(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"VNM", []string{"VNM"}},
		{"vnm,fpt", []string{"VNM", "FPT"}},
		{" vnm , ,fpt ,", []string{"VNM", "FPT"}},
	}

	for _, tt := range tests {
		if got := splitSymbols(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitSymbols(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestGetEnvString(t *testing.T) {
	key := "TEST_GET_ENV_STRING"
	defer os.Unsetenv(key)

	// Empty returns default
	os.Unsetenv(key)
	if got := getEnvString(key, "default"); got != "default" {
		t.Errorf("expected 'default', got %s", got)
	}

	// Set value returns value
	os.Setenv(key, "custom")
	if got := getEnvString(key, "default"); got != "custom" {
		t.Errorf("expected 'custom', got %s", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_GET_ENV_INT"
	defer os.Unsetenv(key)

	// Empty returns default
	os.Unsetenv(key)
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}

	// Valid integer
	os.Setenv(key, "100")
	if got := getEnvInt(key, 42); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}

	// Invalid integer returns default
	os.Setenv(key, "invalid")
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42 for invalid value, got %d", got)
	}

	// Negative returns default
	os.Setenv(key, "-5")
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42 for negative value, got %d", got)
	}
}

func TestGetEnvFloatUnbounded(t *testing.T) {
	key := "TEST_GET_ENV_FLOAT"
	defer os.Unsetenv(key)

	// Empty returns default
	os.Unsetenv(key)
	if got := getEnvFloatUnbounded(key, 15); got != 15 {
		t.Errorf("expected 15, got %f", got)
	}

	// Negative values are legal (sell thresholds)
	os.Setenv(key, "-25")
	if got := getEnvFloatUnbounded(key, 15); got != -25 {
		t.Errorf("expected -25, got %f", got)
	}

	// Invalid float returns default
	os.Setenv(key, "invalid")
	if got := getEnvFloatUnbounded(key, 15); got != 15 {
		t.Errorf("expected 15 for invalid value, got %f", got)
	}
}
