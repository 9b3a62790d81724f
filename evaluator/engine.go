package evaluator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vnsignal/models"
	"vnsignal/normalize"
	"vnsignal/observability"
)

// MarketDataService is the engine's view of the upstream data source. The
// engine assumes nothing about transport; retries and circuit breaking live
// behind this interface, never inside the evaluators.
type MarketDataService interface {
	GetBars(ctx context.Context, symbol string, size int) ([]models.PriceBar, error)
	GetRatios(ctx context.Context, symbol string) (models.RatioSet, error)
	GetReports(ctx context.Context, symbol string, lookback time.Duration) ([]models.AnalystReport, error)
}

// EvaluationStore persists finished evaluations for history queries.
type EvaluationStore interface {
	SaveEvaluation(ctx context.Context, eval *models.Evaluation) error
}

// Config holds engine tunables.
type Config struct {
	BarSize        int           // bars fetched per evaluation (52-week proxy window)
	Resolution     string        // bar resolution requested upstream
	ReportLookback time.Duration // analyst report window
}

// DefaultConfig covers one trading year of daily bars and a 12-month report
// lookback.
var DefaultConfig = Config{
	BarSize:        260,
	Resolution:     "D",
	ReportLookback: 365 * 24 * time.Hour,
}

// Engine fetches, normalizes, and evaluates. One call produces up to two
// evaluations (short-term technical, long-term fundamental); calls for
// different symbols are safe to run concurrently.
type Engine struct {
	data      MarketDataService
	store     EvaluationStore // optional
	cache     *SeriesCache    // optional
	shortTerm *ShortTermEvaluator
	longTerm  *LongTermEvaluator
	cfg       Config
}

// NewEngine creates an engine. store and cache may be nil; evaluation then
// runs without persistence or series caching.
func NewEngine(data MarketDataService, store EvaluationStore, cache *SeriesCache, cfg Config) *Engine {
	if cfg.BarSize <= 0 {
		cfg.BarSize = DefaultConfig.BarSize
	}
	if cfg.Resolution == "" {
		cfg.Resolution = DefaultConfig.Resolution
	}
	if cfg.ReportLookback <= 0 {
		cfg.ReportLookback = DefaultConfig.ReportLookback
	}
	return &Engine{
		data:      data,
		store:     store,
		cache:     cache,
		shortTerm: NewShortTermEvaluator(),
		longTerm:  NewLongTermEvaluator(),
		cfg:       cfg,
	}
}

// NewEngineWithEvaluators creates an engine with preconfigured evaluators,
// used when the signal strategy or Bollinger settings come from config.
func NewEngineWithEvaluators(data MarketDataService, store EvaluationStore, cache *SeriesCache, cfg Config, shortTerm *ShortTermEvaluator, longTerm *LongTermEvaluator) *Engine {
	e := NewEngine(data, store, cache, cfg)
	if shortTerm != nil {
		e.shortTerm = shortTerm
	}
	if longTerm != nil {
		e.longTerm = longTerm
	}
	return e
}

// Bars exposes the validated, cache-aware bar series for chart rendering.
func (e *Engine) Bars(ctx context.Context, symbol string) ([]models.PriceBar, error) {
	return e.fetchBars(ctx, symbol)
}

// Result bundles the evaluations produced for one symbol request.
type Result struct {
	Symbol    string             `json:"symbol"`
	ShortTerm *models.Evaluation `json:"short_term,omitempty"`
	LongTerm  *models.Evaluation `json:"long_term,omitempty"`
}

// Evaluate runs the requested horizons for symbol. An empty horizons list
// means both. Fetch failures for one horizon do not abort the other; an
// error is returned only when nothing could be evaluated.
func (e *Engine) Evaluate(ctx context.Context, symbol string, horizons ...models.Horizon) (*Result, error) {
	metrics := observability.GetMetrics()
	metrics.RecordEvaluationRequest(symbol)
	timer := metrics.NewTimer()

	wantShort, wantLong := wantedHorizons(horizons)

	bars, err := e.fetchBars(ctx, symbol)
	if err != nil {
		timer.ObserveEvaluation(symbol, "error")
		metrics.RecordEvaluationError(symbol, "fetch_bars")
		return nil, fmt.Errorf("failed to fetch bars for %s: %w", symbol, err)
	}

	result := &Result{Symbol: symbol}
	var wg sync.WaitGroup

	if wantShort {
		wg.Add(1)
		go func() {
			defer wg.Done()
			eval := e.shortTerm.Evaluate(symbol, bars)
			result.ShortTerm = &eval
		}()
	}

	if wantLong {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ratios, reports := e.fetchFundamentals(ctx, symbol)
			eval := e.longTerm.Evaluate(symbol, bars, ratios, reports)
			result.LongTerm = &eval
		}()
	}

	wg.Wait()
	timer.ObserveEvaluation(symbol, "success")

	for _, eval := range []*models.Evaluation{result.ShortTerm, result.LongTerm} {
		if eval == nil {
			continue
		}
		metrics.RecordSignal(string(eval.Horizon), string(eval.Signal))
		metrics.RecordConfidence(string(eval.Horizon), eval.Confidence)
		e.persist(ctx, eval)
	}

	return result, nil
}

// fetchBars returns the validated, ascending bar series for symbol, serving
// from the TTL cache when possible.
func (e *Engine) fetchBars(ctx context.Context, symbol string) ([]models.PriceBar, error) {
	key := SeriesKey{Symbol: symbol, Resolution: e.cfg.Resolution, Size: e.cfg.BarSize}
	if e.cache != nil {
		if bars, ok := e.cache.Get(key); ok {
			return bars, nil
		}
	}

	raw, err := e.data.GetBars(ctx, symbol, e.cfg.BarSize)
	if err != nil {
		return nil, err
	}
	bars := normalize.FilterBars(raw, time.Now())

	if e.cache != nil {
		e.cache.Set(key, bars)
	}
	return bars, nil
}

// fetchFundamentals gathers ratios and normalized analyst reports. Either
// fetch may fail independently; the long-term evaluator degrades gracefully
// on missing data, so failures only log.
func (e *Engine) fetchFundamentals(ctx context.Context, symbol string) (models.RatioSet, []models.AnalystReport) {
	var (
		wg      sync.WaitGroup
		ratios  models.RatioSet
		reports []models.AnalystReport
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		r, err := e.data.GetRatios(ctx, symbol)
		if err != nil {
			observability.Warn("ratio fetch failed, evaluating without ratios",
				"symbol", symbol, "error", err)
			return
		}
		ratios = r
	}()
	go func() {
		defer wg.Done()
		r, err := e.data.GetReports(ctx, symbol, e.cfg.ReportLookback)
		if err != nil {
			observability.Warn("analyst report fetch failed, evaluating without consensus",
				"symbol", symbol, "error", err)
			return
		}
		reports = normalize.Reports(r)
	}()
	wg.Wait()

	return ratios, reports
}

func (e *Engine) persist(ctx context.Context, eval *models.Evaluation) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveEvaluation(ctx, eval); err != nil {
		observability.Warn("failed to persist evaluation",
			"symbol", eval.Symbol, "horizon", eval.Horizon, "error", err)
	}
}

func wantedHorizons(horizons []models.Horizon) (short, long bool) {
	if len(horizons) == 0 {
		return true, true
	}
	for _, h := range horizons {
		switch h {
		case models.HorizonShortTerm:
			short = true
		case models.HorizonLongTerm:
			long = true
		}
	}
	return short, long
}
