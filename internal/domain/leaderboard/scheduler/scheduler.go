package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Refresher recomputes the leaderboard and reports how many rows it holds
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Recorder receives the outcome of every refresh
type Recorder interface {
	LeaderboardRefreshed(err error)
}

// Scheduler periodically rebuilds the cached leaderboard
type Scheduler struct {
	refresher    Refresher
	recorder     Recorder // optional
	interval     time.Duration
	initialDelay time.Duration
	timeout      time.Duration // upper bound for a single refresh
	logger       *slog.Logger
	stopCh       chan struct{}
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	running      bool
	mu           sync.Mutex
}

// Config holds configuration for the leaderboard scheduler
type Config struct {
	Interval     time.Duration
	InitialDelay time.Duration
	Timeout      time.Duration
}

// New creates a new leaderboard refresh scheduler
func New(refresher Refresher, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.InitialDelay == 0 {
		cfg.InitialDelay = 10 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}

	return &Scheduler{
		refresher:    refresher,
		interval:     cfg.Interval,
		initialDelay: cfg.InitialDelay,
		timeout:      cfg.Timeout,
		logger:       logger,
		stopCh:       make(chan struct{}),
	}
}

// WithRecorder sets the recorder notified after each refresh
func (s *Scheduler) WithRecorder(r Recorder) *Scheduler {
	s.recorder = r
	return s
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("leaderboard scheduler started", "interval", s.interval)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the scheduler and waits for an in-flight refresh to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("leaderboard scheduler stopped")
}

// run is the main scheduler loop
func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// first refresh once the app has settled
	select {
	case <-time.After(s.initialDelay):
		s.process(ctx)
	case <-s.stopCh:
		return
	case <-ctx.Done():
		return
	}

	for {
		select {
		case <-ticker.C:
			s.process(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// process rebuilds the board once
func (s *Scheduler) process(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.refresher.Refresh(ctx)
	if s.recorder != nil {
		s.recorder.LeaderboardRefreshed(err)
	}
	if err != nil {
		s.logger.Error("failed to refresh leaderboard", "error", err)
		return
	}
	s.logger.Debug("leaderboard refreshed", "entries", n, "took", time.Since(start))
}
