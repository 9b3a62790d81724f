package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vnsignal/models"
	"vnsignal/observability"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const vndirectDateLayout = "2006-01-02"

// VNDirectService handles communication with VNDirect's public finfo API:
// daily price bars, financial ratios, and analyst recommendations. Every
// call goes through retry and the shared circuit breaker.
type VNDirectService struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewVNDirectService creates a new VNDirectService instance
func NewVNDirectService() *VNDirectService {
	return &VNDirectService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://finfo-api.vndirect.com.vn",
		userAgent:  "Mozilla/5.0 (compatible; vnsignal/1.0)",
	}
}

// NewVNDirectServiceWithBaseURL creates a service pointed at a custom base
// URL, used by tests and by deployments behind an internal proxy.
func NewVNDirectServiceWithBaseURL(baseURL string) *VNDirectService {
	s := NewVNDirectService()
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// get performs one authenticated GET and returns the raw body. The finfo API
// returns 200 with an empty data array for unknown symbols, so any non-200
// status is an upstream error.
func (s *VNDirectService) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// fetch wraps get with retry, circuit breaking, and external API metrics.
func (s *VNDirectService) fetch(ctx context.Context, operation, path string, params url.Values) ([]byte, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerVNDirect, operation)
	timer := metrics.NewTimer()

	body, err := WithCircuitBreaker(ctx, BreakerVNDirect, func() ([]byte, error) {
		var b []byte
		retryErr := WithRetry(ctx, DefaultRetryConfig, func() error {
			var err error
			b, err = s.get(ctx, path, params)
			return err
		})
		return b, retryErr
	})

	timer.ObserveExternalAPI(BreakerVNDirect, operation)
	if err != nil {
		metrics.RecordExternalAPIError(BreakerVNDirect, operation, "request_failed")
		return nil, err
	}
	return body, nil
}

// GetBars returns up to size daily bars for symbol, most recent last. Bars
// are parsed as-is; validation and unit normalization happen downstream.
func (s *VNDirectService) GetBars(ctx context.Context, symbol string, size int) ([]models.PriceBar, error) {
	params := url.Values{}
	params.Set("sort", "date")
	params.Set("q", fmt.Sprintf("code:%s", symbol))
	params.Set("size", fmt.Sprintf("%d", size))

	body, err := s.fetch(ctx, "get_bars", "/v4/stock_prices", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bars for %s: %w", symbol, err)
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return nil, fmt.Errorf("malformed stock_prices response for %s: missing data array", symbol)
	}

	bars := make([]models.PriceBar, 0, len(data.Array()))
	for _, item := range data.Array() {
		date, err := time.Parse(vndirectDateLayout, item.Get("date").String())
		if err != nil {
			observability.Warn("skipping bar with unparseable date",
				"symbol", symbol, "date", item.Get("date").String())
			continue
		}
		bars = append(bars, models.PriceBar{
			Symbol:    symbol,
			Date:      date,
			Open:      item.Get("open").Float(),
			High:      item.Get("high").Float(),
			Low:       item.Get("low").Float(),
			Close:     item.Get("close").Float(),
			AdOpen:    item.Get("adOpen").Float(),
			AdHigh:    item.Get("adHigh").Float(),
			AdLow:     item.Get("adLow").Float(),
			AdClose:   item.Get("adClose").Float(),
			Volume:    item.Get("nmVolume").Int(),
			Value:     item.Get("nmValue").Float(),
			Change:    item.Get("change").Float(),
			PctChange: item.Get("pctChange").Float(),
		})
	}

	return bars, nil
}

// ratioCodes are the codes the long-term evaluator consumes.
var ratioCodes = []string{
	models.RatioPriceToEarnings,
	models.RatioPriceToBook,
	models.RatioROE,
	models.RatioDividendYield,
	models.RatioMarketCap,
	models.RatioFreeFloat,
}

// GetRatios returns the latest value for each known ratio code. Codes absent
// upstream (or carrying a null value) are simply missing from the set.
func (s *VNDirectService) GetRatios(ctx context.Context, symbol string) (models.RatioSet, error) {
	params := url.Values{}
	params.Set("order", "reportDate")
	params.Set("where", fmt.Sprintf("code:%s", symbol))
	params.Set("filter", fmt.Sprintf("ratioCode:%s", strings.Join(ratioCodes, ",")))

	body, err := s.fetch(ctx, "get_ratios", "/v4/ratios/latest", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ratios for %s: %w", symbol, err)
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return nil, fmt.Errorf("malformed ratios response for %s: missing data array", symbol)
	}

	ratios := make(models.RatioSet, len(ratioCodes))
	for _, item := range data.Array() {
		code := item.Get("ratioCode").String()
		value := item.Get("value")
		if code == "" || !value.Exists() || value.Type == gjson.Null {
			continue
		}
		ratios[code] = value.Float()
	}

	return ratios, nil
}

// GetReports returns analyst recommendation records for symbol published
// within lookback of now, most recent first. Prices are parsed verbatim;
// the normalize package resolves their units.
func (s *VNDirectService) GetReports(ctx context.Context, symbol string, lookback time.Duration) ([]models.AnalystReport, error) {
	from := time.Now().Add(-lookback).Format(vndirectDateLayout)

	params := url.Values{}
	params.Set("q", fmt.Sprintf("code:%s~reportDate:gte:%s", symbol, from))
	params.Set("sort", "reportDate:desc")
	params.Set("size", "100")

	body, err := s.fetch(ctx, "get_reports", "/v4/recommendations", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports for %s: %w", symbol, err)
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return nil, fmt.Errorf("malformed recommendations response for %s: missing data array", symbol)
	}

	reports := make([]models.AnalystReport, 0, len(data.Array()))
	for _, item := range data.Array() {
		reportDate, err := time.Parse(vndirectDateLayout, item.Get("reportDate").String())
		if err != nil {
			observability.Warn("skipping report with unparseable date",
				"symbol", symbol, "date", item.Get("reportDate").String())
			continue
		}
		reports = append(reports, models.AnalystReport{
			Symbol:         symbol,
			Firm:           item.Get("firm").String(),
			Type:           item.Get("type").String(),
			ReportDate:     reportDate,
			ReportPrice:    decimal.NewFromFloat(item.Get("reportPrice").Float()),
			TargetPrice:    decimal.NewFromFloat(item.Get("targetPrice").Float()),
			AvgTargetPrice: decimal.NewFromFloat(item.Get("avgTargetPrice").Float()),
		})
	}

	return reports, nil
}
