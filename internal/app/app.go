package app

import (
	"context"
	"fmt"
	"time"

	"vnsignal/config"
	"vnsignal/evaluator"
	"vnsignal/models"
	"vnsignal/repository"
	"vnsignal/series"
)

// RepositoryInterface defines the repository operations needed by App
type RepositoryInterface interface {
	Close()
	Health(ctx context.Context) error
	GetEvaluations(ctx context.Context, symbol string, limit int) ([]repository.StoredEvaluation, error)
	GetLatestEvaluation(ctx context.Context, symbol string, horizon models.Horizon) (*repository.StoredEvaluation, error)
}

// EngineInterface defines the evaluation operations
type EngineInterface interface {
	Evaluate(ctx context.Context, symbol string, horizons ...models.Horizon) (*evaluator.Result, error)
	Bars(ctx context.Context, symbol string) ([]models.PriceBar, error)
}

// App struct holds application dependencies using interfaces for testability
type App struct {
	cfg     *config.Config
	repo    RepositoryInterface
	engine  EngineInterface
	evalSem chan struct{}
}

// New creates a new App application struct
func New(cfg *config.Config, repo RepositoryInterface, engine EngineInterface) *App {
	return &App{
		cfg:     cfg,
		repo:    repo,
		engine:  engine,
		evalSem: make(chan struct{}, cfg.Evaluator.ConcurrencyLimit),
	}
}

// Shutdown is called when the app is closing
func (a *App) Shutdown(ctx context.Context) {
	if a.repo != nil {
		a.repo.Close()
	}
}

// Repo returns the repository interface for API handlers
func (a *App) Repo() RepositoryInterface {
	return a.repo
}

// EvaluateSymbol runs the evaluation engine for a symbol. Concurrent
// evaluations are bounded by the configured limit; requests past the limit
// fail fast rather than queueing.
func (a *App) EvaluateSymbol(ctx context.Context, symbol string, horizons ...models.Horizon) (*evaluator.Result, error) {
	if a.engine == nil {
		return nil, fmt.Errorf("evaluation engine not initialized")
	}

	select {
	case a.evalSem <- struct{}{}:
		defer func() { <-a.evalSem }()
	default:
		return nil, fmt.Errorf("evaluation queue full, too many concurrent requests - try again later")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.Evaluator.TimeoutSeconds)*time.Second)
	defer cancel()

	return a.engine.Evaluate(ctx, symbol, horizons...)
}

// GetEvaluations returns stored evaluation history for a symbol. An empty
// symbol returns history across all symbols.
func (a *App) GetEvaluations(ctx context.Context, symbol string, limit int) ([]repository.StoredEvaluation, error) {
	if a.repo == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return a.repo.GetEvaluations(ctx, symbol, limit)
}

// GetLatestEvaluation returns the most recent stored evaluation for a symbol
// and horizon, or nil when none exists.
func (a *App) GetLatestEvaluation(ctx context.Context, symbol string, horizon models.Horizon) (*repository.StoredEvaluation, error) {
	if a.repo == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return a.repo.GetLatestEvaluation(ctx, symbol, horizon)
}

// ChartBands carries the Bollinger overlay with null in place of the
// undefined leading values, so the payload stays valid JSON.
type ChartBands struct {
	Upper  []*float64 `json:"upper"`
	Middle []*float64 `json:"middle"`
	Lower  []*float64 `json:"lower"`
}

// ChartData bundles a bar series with its Bollinger overlay.
type ChartData struct {
	Symbol string            `json:"symbol"`
	Bars   []models.PriceBar `json:"bars"`
	Bands  ChartBands        `json:"bollinger"`
	Period int               `json:"period"`
	StdDev float64           `json:"std_dev"`
}

// GetChart returns the validated bar series with Bollinger bands computed on
// the adjusted close, for the chart endpoint.
func (a *App) GetChart(ctx context.Context, symbol string, cfg series.BollingerConfig) (*ChartData, error) {
	if a.engine == nil {
		return nil, fmt.Errorf("evaluation engine not initialized")
	}

	bars, err := a.engine.Bars(ctx, symbol)
	if err != nil {
		return nil, err
	}

	bands := series.Bollinger(models.AdCloses(bars), cfg)
	return &ChartData{
		Symbol: symbol,
		Bars:   bars,
		Bands: ChartBands{
			Upper:  chartValues(bands.Upper),
			Middle: chartValues(bands.Middle),
			Lower:  chartValues(bands.Lower),
		},
		Period: cfg.Period,
		StdDev: cfg.StdDevMult,
	}, nil
}

// chartValues converts a series to JSON-safe values, mapping the undefined
// warm-up region to null.
func chartValues(vals []float64) []*float64 {
	out := make([]*float64, len(vals))
	for i, v := range vals {
		if series.IsDefined(v) {
			val := v
			out[i] = &val
		}
	}
	return out
}

// EvalSemCapacity returns the capacity of the evaluation semaphore (for testing)
func (a *App) EvalSemCapacity() int {
	return cap(a.evalSem)
}
