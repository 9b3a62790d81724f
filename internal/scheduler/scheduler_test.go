package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"vnsignal/config"
	"vnsignal/evaluator"
	"vnsignal/models"
)

// mockEngine records which symbols were evaluated.
type mockEngine struct {
	mu      sync.Mutex
	symbols []string
	err     error
}

func (m *mockEngine) Evaluate(ctx context.Context, symbol string, horizons ...models.Horizon) (*evaluator.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols = append(m.symbols, symbol)
	if m.err != nil {
		return nil, m.err
	}
	eval := models.Evaluation{Symbol: symbol, Horizon: models.HorizonShortTerm, Signal: models.SignalHold}
	return &evaluator.Result{Symbol: symbol, ShortTerm: &eval}, nil
}

func (m *mockEngine) evaluated() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.symbols...)
}

// mockStore records retention sweep calls.
type mockStore struct {
	mu          sync.Mutex
	deleteCalls int
	cleanCalls  int
	cutoff      time.Time
}

func (m *mockStore) DeleteEvaluationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	m.cutoff = cutoff
	return 3, nil
}

func (m *mockStore) CleanExpiredCache(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanCalls++
	return 1, nil
}

func watchlistConfig(symbols ...string) config.WatchlistConfig {
	return config.WatchlistConfig{
		Symbols:       symbols,
		CronSpec:      "0 30 8 * * MON-FRI",
		RetentionDays: 90,
	}
}

func TestScheduler_Register(t *testing.T) {
	engine := &mockEngine{}
	s := New(context.Background(), engine, nil, nil, watchlistConfig("VNM", "FPT"))

	if err := s.Register(); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
}

func TestScheduler_Register_BadCronSpec(t *testing.T) {
	cfg := watchlistConfig("VNM")
	cfg.CronSpec = "not a cron spec"
	s := New(context.Background(), &mockEngine{}, nil, nil, cfg)

	if err := s.Register(); err == nil {
		t.Error("expected error for invalid cron spec")
	}
}

func TestScheduler_Register_EmptyWatchlist(t *testing.T) {
	// Retention sweep still registers even with no watchlist symbols
	s := New(context.Background(), &mockEngine{}, nil, nil, watchlistConfig())

	if err := s.Register(); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
}

func TestScheduler_RunNow(t *testing.T) {
	engine := &mockEngine{}
	s := New(context.Background(), engine, nil, nil, watchlistConfig("VNM", "FPT", "HPG"))

	s.RunNow()

	got := engine.evaluated()
	want := []string{"VNM", "FPT", "HPG"}
	if len(got) != len(want) {
		t.Fatalf("expected %d evaluations, got %d", len(want), len(got))
	}
	for i, sym := range want {
		if got[i] != sym {
			t.Errorf("evaluation %d: expected %s, got %s", i, sym, got[i])
		}
	}
}

func TestScheduler_RunNow_ContinuesOnError(t *testing.T) {
	engine := &mockEngine{err: fmt.Errorf("upstream unavailable")}
	s := New(context.Background(), engine, nil, nil, watchlistConfig("VNM", "FPT"))

	s.RunNow()

	// Both symbols attempted despite failures
	if got := engine.evaluated(); len(got) != 2 {
		t.Errorf("expected 2 evaluation attempts, got %d", len(got))
	}
}

func TestScheduler_RunNow_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := &mockEngine{}
	s := New(ctx, engine, nil, nil, watchlistConfig("VNM", "FPT"))

	s.RunNow()

	if got := engine.evaluated(); len(got) != 0 {
		t.Errorf("expected no evaluations after cancellation, got %d", len(got))
	}
}

func TestScheduler_RetentionSweep(t *testing.T) {
	store := &mockStore{}
	cache := evaluator.NewSeriesCache(time.Millisecond)
	cache.Set(evaluator.SeriesKey{Symbol: "VNM", Resolution: "D", Size: 260}, []models.PriceBar{{AdClose: 45}})
	time.Sleep(5 * time.Millisecond)

	s := New(context.Background(), &mockEngine{}, store, cache, watchlistConfig("VNM"))
	s.retentionSweep()

	if store.deleteCalls != 1 {
		t.Errorf("expected 1 delete call, got %d", store.deleteCalls)
	}
	if store.cleanCalls != 1 {
		t.Errorf("expected 1 cache clean call, got %d", store.cleanCalls)
	}
	// Cutoff reflects the configured retention window
	expected := time.Now().AddDate(0, 0, -90)
	if diff := store.cutoff.Sub(expected); diff < -time.Minute || diff > time.Minute {
		t.Errorf("cutoff %v too far from expected %v", store.cutoff, expected)
	}
	// Expired series entry purged
	if _, ok := cache.Get(evaluator.SeriesKey{Symbol: "VNM", Resolution: "D", Size: 260}); ok {
		t.Error("expected expired series entry to be purged")
	}
}

func TestScheduler_RetentionSweep_NoStore(t *testing.T) {
	s := New(context.Background(), &mockEngine{}, nil, nil, watchlistConfig("VNM"))
	s.retentionSweep() // must not panic
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(context.Background(), &mockEngine{}, nil, nil, watchlistConfig("VNM"))
	if err := s.Register(); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	s.Start()
	s.Stop()
}
