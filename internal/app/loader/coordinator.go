package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/chapterboard/internal/domain/dedupe"
	"github.com/okian/chapterboard/internal/domain/lookup"
	"github.com/okian/chapterboard/internal/domain/model"
	"github.com/okian/chapterboard/pkg/logger"
	"github.com/okian/chapterboard/pkg/metrics"
)

// Source provides the records the coordinator loads.
type Source interface {
	// FetchMembers returns a page of members ordered by last name.
	FetchMembers(ctx context.Context, page, pageSize int) (model.Page[model.Member], error)
	// FetchEvents returns a page of events starting within r, newest first.
	FetchEvents(ctx context.Context, page, pageSize int, r model.DateRange) (model.Page[model.Event], error)
	// FetchAttendance returns attendance rows for exactly the given events.
	FetchAttendance(ctx context.Context, eventIDs []string) ([]model.AttendanceRecord, error)
}

// ticket identifies one outstanding request. It is current while its epoch
// matches the coordinator's epoch for the same kind.
type ticket struct {
	kind   Kind
	epoch  uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// Coordinator drives member, event and attendance loading. Starting a
// request for a kind supersedes any outstanding request of that kind and of
// every kind that depends on it; superseded results are discarded.
type Coordinator struct {
	mu       sync.Mutex
	state    State
	source   Source
	epochs   map[Kind]uint64
	inflight map[Kind]*ticket

	memberPageSize int
	eventPageSize  int
	dateRange      model.DateRange
	metric         model.Metric
	now            func() time.Time

	logger logger.Logger
}

// New creates a coordinator over src.
func New(src Source, opts ...Option) *Coordinator {
	c := &Coordinator{
		source:         src,
		epochs:         make(map[Kind]uint64),
		inflight:       make(map[Kind]*ticket),
		memberPageSize: DefaultMemberPageSize,
		eventPageSize:  DefaultEventPageSize,
		metric:         model.MetricHealth,
		now:            time.Now,
		logger:         logger.Get().Named("loader"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.dateRange == (model.DateRange{}) {
		c.dateRange = model.LastDays(c.now(), DefaultDateRangeDays)
	}
	c.state = Initial(c.memberPageSize, c.eventPageSize, c.dateRange, c.metric)
	return c
}

// State returns a consistent snapshot of the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Refresh discards all loaded data and reloads from the first member page.
func (c *Coordinator) Refresh(ctx context.Context) error {
	t, err := c.begin(ctx, KindMembers, nil, always(RefreshStarted{}))
	if err != nil {
		return err
	}
	c.logger.Debug(ctx, "refresh started")
	return c.fetchMembers(ctx, t, 0)
}

// LoadMembers jumps to the given member page, replacing the member array,
// then reloads events and attendance for it.
func (c *Coordinator) LoadMembers(ctx context.Context, page int) error {
	if page < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	t, err := c.begin(ctx, KindMembers, nil, always(MembersRequested{Page: page}))
	if err != nil {
		return err
	}
	return c.fetchMembers(ctx, t, page)
}

// LoadMoreEvents advances to the next event page. It is a no-op when the
// server reported no more events or a load is already in progress.
func (c *Coordinator) LoadMoreEvents(ctx context.Context) error {
	var page int
	t, err := c.begin(ctx, KindEvents, nil, func(s State) ([]Action, bool) {
		if !s.CanLoadMoreEvents() {
			return nil, false
		}
		page = s.EventCursor.Page + 1
		return []Action{EventsPageAdvanced{}, EventsRequested{Page: page}}, true
	})
	if err != nil || t == nil {
		return err
	}
	return c.fetchEvents(ctx, t, page)
}

// SetDateRange replaces the event filter and, once members are loaded,
// reloads events from the first page.
func (c *Coordinator) SetDateRange(ctx context.Context, r model.DateRange) error {
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidRange,
			r.End.Format(time.RFC3339), r.Start.Format(time.RFC3339))
	}

	reload := false
	t, err := c.begin(ctx, KindEvents, nil, func(s State) ([]Action, bool) {
		if len(s.Members) == 0 {
			return []Action{DateRangeChanged{Range: r}}, true
		}
		reload = true
		return []Action{DateRangeChanged{Range: r}, EventsRequested{Page: 0}}, true
	})
	if err != nil {
		return err
	}
	if !reload {
		c.release(t)
		return nil
	}
	return c.fetchEvents(ctx, t, 0)
}

// SelectMetric switches the primary dashboard view.
func (c *Coordinator) SelectMetric(m model.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(MetricSelected{Metric: m})
}

func (c *Coordinator) fetchMembers(ctx context.Context, t *ticket, page int) error {
	defer t.cancel()

	start := time.Now()
	res, err := c.source.FetchMembers(t.ctx, page, c.memberPageSize)
	metrics.RecordFetchLatency(string(KindMembers), float64(time.Since(start).Milliseconds()))

	if err := c.commit(t, err, MembersLoaded{Page: page, Rows: res.Rows, Total: res.Total}); err != nil {
		return err
	}
	if len(res.Rows) == 0 {
		return nil
	}

	var eventPage int
	next, err := c.begin(ctx, KindEvents, t, func(s State) ([]Action, bool) {
		eventPage = s.EventCursor.Page
		return []Action{EventsRequested{Page: eventPage}}, true
	})
	if err != nil {
		return err
	}
	return c.fetchEvents(ctx, next, eventPage)
}

func (c *Coordinator) fetchEvents(ctx context.Context, t *ticket, page int) error {
	defer t.cancel()

	r := c.State().DateRange
	start := time.Now()
	res, err := c.source.FetchEvents(t.ctx, page, c.eventPageSize, r)
	metrics.RecordFetchLatency(string(KindEvents), float64(time.Since(start).Milliseconds()))

	rows := res.Rows
	if err == nil {
		rows = inRange(rows, r)
	}
	if err := c.commit(t, err, EventsLoaded{Page: page, Rows: rows, Fetched: len(res.Rows), Total: res.Total}); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	next, err := c.begin(ctx, KindAttendance, t, always(AttendanceRequested{}))
	if err != nil {
		return err
	}
	return c.fetchAttendance(next, lookup.EventIDs(rows))
}

func (c *Coordinator) fetchAttendance(t *ticket, eventIDs []string) error {
	defer t.cancel()

	start := time.Now()
	rows, err := c.source.FetchAttendance(t.ctx, eventIDs)
	metrics.RecordFetchLatency(string(KindAttendance), float64(time.Since(start).Milliseconds()))

	if err == nil {
		metrics.RecordDuplicatesCollapsed(dedupe.Count(rows))
	}
	return c.commit(t, err, AttendanceLoaded{Rows: rows})
}

// plan inspects the current state under the coordinator lock and returns the
// transitions to apply when a request starts. ok=false cancels the start.
type plan func(State) (actions []Action, ok bool)

func always(actions ...Action) plan {
	return func(State) ([]Action, bool) { return actions, true }
}

// begin supersedes outstanding requests for kind and its dependents and
// issues a new ticket, applying p's transitions atomically with the
// takeover. A non-nil parent must still be current, otherwise the chain it
// belongs to was superseded. When p declines, begin returns a nil ticket and
// changes nothing.
func (c *Coordinator) begin(ctx context.Context, kind Kind, parent *ticket, p plan) (*ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if parent != nil && !c.currentLocked(parent) {
		metrics.RecordFetch(string(kind), metrics.OutcomeSuperseded)
		return nil, ErrSuperseded
	}
	actions, ok := p(c.state)
	if !ok {
		return nil, nil
	}

	for _, k := range kind.downstream() {
		c.epochs[k]++
		if prev := c.inflight[k]; prev != nil {
			prev.cancel()
			delete(c.inflight, k)
			c.logger.Debug(ctx, "superseded outstanding request", logger.String("kind", string(k)))
		}
	}

	fctx, cancel := context.WithCancel(ctx)
	t := &ticket{kind: kind, epoch: c.epochs[kind], ctx: fctx, cancel: cancel}
	c.inflight[kind] = t
	for _, a := range actions {
		c.applyLocked(a)
	}
	return t, nil
}

// commit applies the outcome of t's fetch. Results of superseded tickets are
// dropped without touching state.
func (c *Coordinator) commit(t *ticket, fetchErr error, loaded Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kind := string(t.kind)
	if !c.currentLocked(t) {
		metrics.RecordFetch(kind, metrics.OutcomeSuperseded)
		c.logger.Debug(t.ctx, "discarding superseded result", logger.String("kind", kind))
		return ErrSuperseded
	}
	delete(c.inflight, t.kind)

	switch {
	case fetchErr == nil:
		metrics.RecordFetch(kind, metrics.OutcomeOK)
		c.applyLocked(loaded)
		c.logger.Debug(t.ctx, "stage loaded", logger.String("kind", kind))
		return nil

	case t.ctx.Err() != nil:
		metrics.RecordFetch(kind, metrics.OutcomeAborted)
		c.applyLocked(FetchAborted{Kind: t.kind})
		c.logger.Debug(t.ctx, "request aborted by caller", logger.String("kind", kind))
		return fmt.Errorf("%w: %s: %w", ErrAborted, kind, fetchErr)

	default:
		metrics.RecordFetch(kind, metrics.OutcomeError)
		metrics.RecordErrorByComponent("loader", kind)
		c.applyLocked(FetchFailed{Kind: t.kind, Err: fetchErr})
		c.logger.Warn(t.ctx, "fetch failed", logger.String("kind", kind), logger.Error(fetchErr))
		return fmt.Errorf("%w: %s: %w", ErrFetch, kind, fetchErr)
	}
}

// release drops t without a state change.
func (c *Coordinator) release(t *ticket) {
	t.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[t.kind] == t {
		delete(c.inflight, t.kind)
	}
}

func (c *Coordinator) currentLocked(t *ticket) bool {
	return c.epochs[t.kind] == t.epoch
}

func (c *Coordinator) applyLocked(a Action) {
	c.state = Reduce(c.state, a)
	metrics.UpdateLoadedRows(string(KindMembers), len(c.state.Members))
	metrics.UpdateLoadedRows(string(KindEvents), len(c.state.Events))
	metrics.UpdateLoadedRows(string(KindAttendance), len(c.state.Attendance))
}

// inRange drops events whose start time falls outside r.
func inRange(events []model.Event, r model.DateRange) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if r.Contains(e.StartTime) {
			out = append(out, e)
		}
	}
	return out
}
