// Package scheduler refreshes the loaded chapter data periodically and on
// demand.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/chapterboard/pkg/logger"
	"github.com/okian/chapterboard/pkg/metrics"
)

// Triggers used by the scheduler.
const (
	TriggerScheduled = "scheduled"
	TriggerRequested = "requested"
)

// Refresher reloads chapter data.
type Refresher interface {
	Refresh(ctx context.Context, trigger string) error
}

// Scheduler calls Refresh on a fixed interval and whenever Request is
// called. Pending requests coalesce: at most one refresh waits behind the
// one in progress.
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
	immediate bool

	requests chan string

	mu      sync.Mutex
	started bool
	closed  bool

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// New creates a scheduler around r. Run must be called to start it.
func New(r Refresher, opts ...Option) *Scheduler {
	s := &Scheduler{
		refresher: r,
		interval:  DefaultInterval,
		timeout:   DefaultTimeout,
		requests:  make(chan string, 1),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("scheduler"),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request asks for a refresh outside the schedule. It never blocks and
// returns false when a request is already pending or the scheduler stopped.
func (s *Scheduler) Request(trigger string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.requests <- trigger:
		return true
	default:
		return false
	}
}

// Run blocks until ctx is canceled or Shutdown is called. A non-positive
// interval disables the ticker; requested refreshes still run.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()
	defer close(s.done)

	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	s.logger.Info(ctx, "scheduler started", logger.Duration("interval", s.interval))
	if s.immediate {
		s.refresh(ctx, TriggerScheduled)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdown:
			return
		case <-tick:
			s.refresh(ctx, TriggerScheduled)
		case trigger := <-s.requests:
			s.refresh(ctx, trigger)
		}
	}
}

// Shutdown stops the loop and waits for an in-flight refresh to finish.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	started := s.started
	close(s.shutdown)
	s.mu.Unlock()

	if !started {
		return nil
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		s.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (s *Scheduler) refresh(ctx context.Context, trigger string) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.refresher.Refresh(ctx, trigger); err != nil {
		metrics.RecordErrorByComponent("scheduler", "refresh")
		s.logger.Error(ctx, "refresh failed",
			logger.String("trigger", trigger),
			logger.Error(err),
		)
		return
	}
	s.logger.Debug(ctx, "refresh complete",
		logger.String("trigger", trigger),
		logger.Duration("took", time.Since(start)),
	)
}
