package scheduler

import (
	"context"
	"fmt"
	"time"

	"vnsignal/config"
	"vnsignal/evaluator"
	"vnsignal/models"
	"vnsignal/observability"

	"github.com/robfig/cron/v3"
)

// EngineInterface is the evaluation operation the scheduler drives.
type EngineInterface interface {
	Evaluate(ctx context.Context, symbol string, horizons ...models.Horizon) (*evaluator.Result, error)
}

// RetentionStore is the optional persistence hook for the retention sweep.
type RetentionStore interface {
	DeleteEvaluationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CleanExpiredCache(ctx context.Context) (int64, error)
}

// Scheduler runs the watchlist refresh and retention sweeps on cron
// schedules. Specs use the six-field form with a seconds column.
type Scheduler struct {
	cron   *cron.Cron
	engine EngineInterface
	store  RetentionStore // optional
	cache  *evaluator.SeriesCache
	cfg    config.WatchlistConfig
	ctx    context.Context
}

// New creates a Scheduler. store and cache may be nil.
func New(ctx context.Context, engine EngineInterface, store RetentionStore, cache *evaluator.SeriesCache, cfg config.WatchlistConfig) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		engine: engine,
		store:  store,
		cache:  cache,
		cfg:    cfg,
		ctx:    ctx,
	}
}

// Register wires the watchlist refresh and the nightly retention sweep.
func (s *Scheduler) Register() error {
	if len(s.cfg.Symbols) > 0 {
		if _, err := s.cron.AddFunc(s.cfg.CronSpec, s.refreshWatchlist); err != nil {
			return fmt.Errorf("register watchlist refresh: %w", err)
		}
	}

	// Retention sweep and cache purge, nightly at 01:00
	if _, err := s.cron.AddFunc("0 0 1 * * *", s.retentionSweep); err != nil {
		return fmt.Errorf("register retention sweep: %w", err)
	}

	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	observability.Info("scheduler started",
		"watchlist_size", len(s.cfg.Symbols),
		"cron", s.cfg.CronSpec)
}

// Stop stops the cron scheduler gracefully, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	observability.Info("scheduler stopped")
}

// RunNow executes the watchlist refresh immediately (manual trigger).
func (s *Scheduler) RunNow() {
	s.refreshWatchlist()
}

// refreshWatchlist evaluates every watchlist symbol sequentially. One
// symbol's failure never aborts the rest of the list.
func (s *Scheduler) refreshWatchlist() {
	observability.Info("running watchlist refresh", "symbols", len(s.cfg.Symbols))

	for _, symbol := range s.cfg.Symbols {
		if s.ctx.Err() != nil {
			return
		}

		result, err := s.engine.Evaluate(s.ctx, symbol)
		if err != nil {
			observability.Error("watchlist evaluation failed",
				"symbol", symbol, "error", err)
			continue
		}

		logger := observability.WithSymbol(symbol)
		if result.ShortTerm != nil {
			logger.Info("watchlist evaluation",
				"horizon", result.ShortTerm.Horizon,
				"signal", result.ShortTerm.Signal,
				"confidence", result.ShortTerm.Confidence)
		}
		if result.LongTerm != nil {
			logger.Info("watchlist evaluation",
				"horizon", result.LongTerm.Horizon,
				"signal", result.LongTerm.Signal,
				"confidence", result.LongTerm.Confidence)
		}
	}
}

// retentionSweep drops stored evaluations past retention and purges expired
// cache entries, both in the database and in memory.
func (s *Scheduler) retentionSweep() {
	if s.cache != nil {
		purged := s.cache.Purge()
		if purged > 0 {
			observability.Info("purged series cache", "entries", purged)
		}
	}

	if s.store == nil {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)
	deleted, err := s.store.DeleteEvaluationsBefore(s.ctx, cutoff)
	if err != nil {
		observability.Error("retention sweep failed", "error", err)
	} else if deleted > 0 {
		observability.Info("retention sweep", "deleted", deleted, "cutoff", cutoff)
	}

	cleaned, err := s.store.CleanExpiredCache(s.ctx)
	if err != nil {
		observability.Error("cache cleanup failed", "error", err)
	} else if cleaned > 0 {
		observability.Info("cache cleanup", "cleaned", cleaned)
	}
}
