package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"vnsignal/config"
	"vnsignal/evaluator"
	"vnsignal/internal/api"
	"vnsignal/internal/app"
	"vnsignal/internal/scheduler"
	"vnsignal/observability"
	"vnsignal/repository"
	"vnsignal/series"
	"vnsignal/services"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; deployed environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		observability.InitLogger(false)
		observability.Fatal("invalid configuration", "error", err)
	}

	observability.InitLogger(cfg.HTTP.Production)
	observability.InitMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database is optional: without it the service evaluates but keeps no
	// history and skips the persistent market data cache.
	var repo *repository.Repository
	if cfg.HasDatabase() {
		repo, err = repository.NewRepository(ctx, cfg.Database.URL)
		if err != nil {
			observability.Warn("failed to initialize database, running without persistence", "error", err)
			repo = nil
		} else {
			observability.Info("connected to database")
		}
	} else {
		observability.Info("DATABASE_URL not set, running without persistence")
	}

	vndirect := services.NewVNDirectServiceWithBaseURL(cfg.VNDirect.BaseURL)

	var data evaluator.MarketDataService = vndirect
	if repo != nil {
		data = services.NewCachedMarketData(vndirect, repo,
			cfg.VNDirect.Resolution,
			time.Duration(cfg.Cache.DBCacheTTLMinutes)*time.Minute)
	}

	seriesCache := evaluator.NewSeriesCache(time.Duration(cfg.Cache.SeriesTTLSeconds) * time.Second)

	var strategy evaluator.SignalStrategy
	switch cfg.Evaluator.Strategy {
	case "custom":
		strategy = evaluator.NewCustomStrategy(
			cfg.Evaluator.BuyThreshold,
			cfg.Evaluator.SellThreshold,
			cfg.Evaluator.MinConfidence)
	default:
		strategy = evaluator.StrategyFromName(cfg.Evaluator.Strategy)
	}

	var store evaluator.EvaluationStore
	if repo != nil {
		store = repo
	}

	engine := evaluator.NewEngineWithEvaluators(data, store, seriesCache,
		evaluator.Config{
			BarSize:        cfg.VNDirect.BarSize,
			Resolution:     cfg.VNDirect.Resolution,
			ReportLookback: time.Duration(cfg.VNDirect.ReportLookbackDays) * 24 * time.Hour,
		},
		evaluator.NewShortTermEvaluatorWith(series.BollingerConfig{
			Period:     cfg.Evaluator.BollingerPeriod,
			StdDevMult: cfg.Evaluator.BollingerStdDev,
		}, strategy),
		evaluator.NewLongTermEvaluatorWith(strategy),
	)

	var appRepo app.RepositoryInterface
	if repo != nil {
		appRepo = repo
	}
	application := app.New(cfg, appRepo, engine)

	// Watchlist scheduler
	var retention scheduler.RetentionStore
	if repo != nil {
		retention = repo
	}
	sched := scheduler.New(ctx, engine, retention, seriesCache, cfg.Watchlist)
	if err := sched.Register(); err != nil {
		observability.Fatal("failed to register scheduled jobs", "error", err)
	}
	sched.Start()

	handler := api.NewHandler(application, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(cfg.Evaluator.TimeoutSeconds+10) * time.Second,
	}

	go func() {
		observability.Info("starting server",
			"addr", cfg.HTTP.Addr,
			"strategy", strategy.Name(),
			"watchlist_size", len(cfg.Watchlist.Symbols))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()
	observability.Info("shutting down...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Error("server forced to shutdown", "error", err)
	}

	application.Shutdown(shutdownCtx)
	observability.Info("server stopped")
}
