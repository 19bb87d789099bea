// Package service wires the load coordinator to the aggregation engines and
// serves memoized dashboards to the HTTP API and the report command.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/okian/chapterboard/internal/adapters/export"
	"github.com/okian/chapterboard/internal/adapters/repository"
	"github.com/okian/chapterboard/internal/app/loader"
	"github.com/okian/chapterboard/internal/domain/aggregate"
	"github.com/okian/chapterboard/internal/domain/diversity"
	"github.com/okian/chapterboard/internal/domain/model"
	"github.com/okian/chapterboard/pkg/logger"
	"github.com/okian/chapterboard/pkg/metrics"
)

// Refresh triggers.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
	TriggerStartup   = "startup"
)

// memo holds the dashboard computed for one data version.
type memo struct {
	ok          bool
	dataVersion uint64
	dashboard   model.Dashboard
}

// Service exposes the coordinator's operations and the derived views.
type Service struct {
	coordinator *loader.Coordinator
	store       repository.Store

	leaderboardLimit    int
	maxLeaderboardLimit int
	now                 func() time.Time

	mu   sync.Mutex
	memo memo

	logger logger.Logger
}

// New constructs a Service over c. Without WithStore dashboards are only
// memoized in process.
func New(c *loader.Coordinator, opts ...Option) *Service {
	s := &Service{
		coordinator:         c,
		leaderboardLimit:    DefaultLeaderboardLimit,
		maxLeaderboardLimit: DefaultMaxLeaderboardLimit,
		now:                 time.Now,
		logger:              logger.Get().Named("service"),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.leaderboardLimit > s.maxLeaderboardLimit {
		s.leaderboardLimit = s.maxLeaderboardLimit
	}
	return s
}

// State returns the coordinator's current state.
func (s *Service) State() loader.State {
	return s.coordinator.State()
}

// Refresh reloads all data from the first member page.
func (s *Service) Refresh(ctx context.Context, trigger string) error {
	metrics.RecordRefresh(trigger)
	s.logger.Info(ctx, "refreshing", logger.String("trigger", trigger))
	return s.settle(ctx, "refresh", s.coordinator.Refresh(ctx))
}

// LoadMembers jumps to a member page.
func (s *Service) LoadMembers(ctx context.Context, page int) error {
	return s.settle(ctx, "load members", s.coordinator.LoadMembers(ctx, page))
}

// LoadMoreEvents advances the event cursor when more events exist.
func (s *Service) LoadMoreEvents(ctx context.Context) error {
	return s.settle(ctx, "load more events", s.coordinator.LoadMoreEvents(ctx))
}

// SetDateRange replaces the event filter and reloads events.
func (s *Service) SetDateRange(ctx context.Context, r model.DateRange) error {
	return s.settle(ctx, "set date range", s.coordinator.SetDateRange(ctx, r))
}

// SetSelectedMetric switches the primary view.
func (s *Service) SetSelectedMetric(name string) (model.Metric, error) {
	m, err := model.ParseMetric(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidMetric, err)
	}
	s.coordinator.SelectMetric(m)
	return m, nil
}

// settle treats a superseded operation as success: a newer request owns the
// state now.
func (s *Service) settle(ctx context.Context, op string, err error) error {
	if errors.Is(err, loader.ErrSuperseded) {
		s.logger.Debug(ctx, "operation superseded", logger.String("op", op))
		return nil
	}
	return err
}

// Dashboard returns every derived view for the loaded data, with the
// leaderboard truncated to the default limit.
func (s *Service) Dashboard(ctx context.Context) model.Dashboard {
	d, st := s.full(ctx)
	d.SelectedMetric = st.SelectedMetric
	d.Leaderboard = truncate(d.Leaderboard, s.leaderboardLimit)
	return d
}

// Leaderboard returns the top limit brothers by points; limit 0 selects the
// default.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]model.MemberPerformance, error) {
	switch {
	case limit == 0:
		limit = s.leaderboardLimit
	case limit < 0 || limit > s.maxLeaderboardLimit:
		return nil, fmt.Errorf("%w: %d (max %d)", ErrInvalidLimit, limit, s.maxLeaderboardLimit)
	}
	d, _ := s.full(ctx)
	return truncate(d.Leaderboard, limit), nil
}

// Export writes the dashboard as an XLSX workbook.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	if err := export.Write(w, s.Dashboard(ctx)); err != nil {
		metrics.RecordErrorByComponent("export", "write")
		return err
	}
	metrics.RecordExport()
	return nil
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats() map[string]interface{} {
	st := s.coordinator.State()
	goroutines := runtime.NumGoroutine()
	metrics.UpdateSystemGoroutineCount(goroutines)

	return map[string]interface{}{
		"members":          len(st.Members),
		"events":           len(st.Events),
		"attendance":       len(st.Attendance),
		"loading":          st.Loading,
		"refreshing":       st.Refreshing,
		"stage":            st.Stage,
		"error":            st.Error,
		"version":          st.Version,
		"dataVersion":      st.DataVersion,
		"leaderboardLimit": s.leaderboardLimit,
		"cached":           s.store != nil,
		"goroutines":       goroutines,
	}
}

// Close releases the dashboard cache.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// full returns the dashboard with the complete ranking for the current data,
// computing it at most once per data version.
func (s *Service) full(ctx context.Context) (model.Dashboard, loader.State) {
	st := s.coordinator.State()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.memo.ok && s.memo.dataVersion == st.DataVersion {
		return s.memo.dashboard, st
	}

	now := s.now()
	key := fingerprint(st, now.Year())
	d, hit := s.cached(ctx, key)
	if !hit {
		d = s.compute(st, now)
		d.Fingerprint = key
		s.remember(ctx, key, d)
	}

	s.memo = memo{ok: true, dataVersion: st.DataVersion, dashboard: d}
	return d, st
}

func (s *Service) cached(ctx context.Context, key string) (model.Dashboard, bool) {
	if s.store == nil {
		return model.Dashboard{}, false
	}
	d, err := s.store.Get(ctx, key)
	switch {
	case err == nil:
		metrics.RecordCacheHit()
		return d, true
	case errors.Is(err, repository.ErrCacheMiss):
		metrics.RecordCacheMiss()
	default:
		metrics.RecordCacheMiss()
		metrics.RecordCacheError("get")
		s.logger.Warn(ctx, "dashboard cache read failed", logger.Error(err))
	}
	return model.Dashboard{}, false
}

func (s *Service) remember(ctx context.Context, key string, d model.Dashboard) {
	if s.store == nil {
		return
	}
	if err := s.store.Put(ctx, key, d); err != nil {
		metrics.RecordCacheError("put")
		s.logger.Warn(ctx, "dashboard cache write failed", logger.Error(err))
	}
}

// compute derives every view from one state snapshot.
func (s *Service) compute(st loader.State, now time.Time) model.Dashboard {
	members, events, attendance := st.Members, st.Events, st.Attendance

	d := model.Dashboard{GeneratedAt: now}
	timed("health", func() { d.Health = aggregate.Health(members, events, attendance) })
	timed("performance", func() { d.Leaderboard = aggregate.TopPerformers(members, events, attendance, 0) })
	timed("events", func() { d.Events = aggregate.Events(members, events, attendance) })
	timed("categories", func() { d.Categories = aggregate.Categories(events, attendance) })
	timed("houses", func() { d.Houses = aggregate.Houses(members, events, attendance) })
	timed("pledge_classes", func() { d.PledgeClasses = aggregate.PledgeClasses(members, events, attendance) })
	timed("diversity", func() { d.Diversity = diversity.Compute(members, now) })
	return d
}

func timed(view string, fn func()) {
	start := time.Now()
	fn()
	metrics.RecordViewLatency(view, float64(time.Since(start).Microseconds())/1000)
}

func truncate(rows []model.MemberPerformance, n int) []model.MemberPerformance {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
