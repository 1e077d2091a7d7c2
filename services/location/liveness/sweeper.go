package liveness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/piresc/fleetwatch/internal/pkg/logger"
	"github.com/piresc/fleetwatch/internal/pkg/metrics"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	"github.com/piresc/fleetwatch/services/location"
)

// PassResult describes one completed sweep pass
type PassResult struct {
	At       time.Time
	Duration time.Duration
	Total    int
	Active   int
	Inactive int
	Changed  int
}

// PassHook runs after every successful pass
type PassHook func(ctx context.Context, result PassResult)

// Sweeper periodically recomputes the cached status of every record. It
// never touches LastUpdated.
type Sweeper struct {
	repo      location.LocationRepo
	evaluator *Evaluator
	interval  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	hooks    []PassHook
	lastPass PassResult
}

// Option customizes a Sweeper
type Option func(*Sweeper)

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// NewSweeper creates a sweeper. The interval must be strictly smaller than
// the evaluator threshold so a cached status is never more than one pass old.
func NewSweeper(repo location.LocationRepo, evaluator *Evaluator, interval time.Duration, opts ...Option) (*Sweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	if interval >= evaluator.StaleAfter() {
		return nil, fmt.Errorf("sweep interval %s must be smaller than stale threshold %s", interval, evaluator.StaleAfter())
	}

	s := &Sweeper{
		repo:      repo,
		evaluator: evaluator,
		interval:  interval,
		now:       models.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// OnPass registers a hook called after each pass
func (s *Sweeper) OnPass(hook PassHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// LastPass returns the result of the most recent successful pass
func (s *Sweeper) LastPass() PassResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPass
}

// Run sweeps immediately and then on every tick until ctx is done
func (s *Sweeper) Run(ctx context.Context) {
	logger.Info("Liveness sweeper started",
		logger.Duration("interval", s.interval),
		logger.Duration("stale_after", s.evaluator.StaleAfter()))

	t := time.NewTimer(0)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Liveness sweeper stopped")
			return
		case <-t.C:
			if _, err := s.RunOnce(ctx); err != nil {
				metrics.SweepPanics.Inc()
				logger.Error("Liveness sweep failed, retrying next tick", logger.Err(err))
			}
			t.Reset(s.interval)
		}
	}
}

// RunOnce performs a single full pass. A panic aborts the pass and is
// returned as an error; the next tick starts over.
func (s *Sweeper) RunOnce(ctx context.Context) (result PassResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sweep pass panicked: %v", r)
		}
	}()

	start := time.Now()
	now := s.now()
	result.At = now

	result.Changed = s.repo.ApplyStatus(func(rec models.LocationRecord) models.LocationStatus {
		status := s.evaluator.Status(rec, now)
		result.Total++
		if status == models.StatusActive {
			result.Active++
		} else {
			result.Inactive++
		}
		return status
	})
	result.Duration = time.Since(start)
	metrics.ObserveSweep(result.Duration, result.Active, result.Inactive)

	s.mu.Lock()
	s.lastPass = result
	hooks := append([]PassHook(nil), s.hooks...)
	s.mu.Unlock()

	logger.Debug("Liveness sweep completed",
		logger.Int("total", result.Total),
		logger.Int("active", result.Active),
		logger.Int("inactive", result.Inactive),
		logger.Int("changed", result.Changed),
		logger.Duration("duration", result.Duration))

	for _, hook := range hooks {
		s.runHook(ctx, hook, result)
	}
	return result, nil
}

func (s *Sweeper) runHook(ctx context.Context, hook PassHook, result PassResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Sweep hook panicked", logger.Any("panic", r))
		}
	}()
	hook(ctx, result)
}
