// Package loader coordinates paginated, dependent and cancellable loading of
// members, events and attendance into a single state object.
//
// Transitions are computed by the pure Reduce function; the Coordinator is
// the shell that performs I/O and commits results.
package loader

import (
	"fmt"

	"github.com/okian/chapterboard/internal/domain/model"
)

// Kind identifies a fetched resource.
type Kind string

// Resource kinds, in load order.
const (
	KindMembers    Kind = "members"
	KindEvents     Kind = "events"
	KindAttendance Kind = "attendance"
)

// kindOrder lists kinds in dependency order.
var kindOrder = []Kind{KindMembers, KindEvents, KindAttendance}

// downstream returns k followed by every kind that depends on it.
func (k Kind) downstream() []Kind {
	for i, kk := range kindOrder {
		if kk == k {
			return kindOrder[i:]
		}
	}
	return nil
}

// Cursor tracks pagination for one resource.
type Cursor struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}

// hasMore reports whether rows fetched for page, against a reported total,
// leave more rows on the server.
func hasMore(page, pageSize, rows, total int) bool {
	return page*pageSize+rows < total
}

// State is the coordinator's state. Slices are replaced, never mutated in
// place, so a copied State is a consistent snapshot.
type State struct {
	Members    []model.Member           `json:"-"`
	Events     []model.Event            `json:"-"`
	Attendance []model.AttendanceRecord `json:"-"`

	MemberCursor Cursor `json:"member_cursor"`
	EventCursor  Cursor `json:"event_cursor"`

	// Stage is the resource currently loading; empty when idle.
	Stage      Kind   `json:"stage,omitempty"`
	Loading    bool   `json:"loading"`
	Refreshing bool   `json:"refreshing"`
	Error      string `json:"error,omitempty"`

	DateRange      model.DateRange `json:"date_range"`
	SelectedMetric model.Metric    `json:"selected_metric"`

	// Version increments on every transition; DataVersion only when one of
	// the record slices changes.
	Version     uint64 `json:"version"`
	DataVersion uint64 `json:"data_version"`
}

// Initial returns the idle, empty state.
func Initial(memberPageSize, eventPageSize int, r model.DateRange, metric model.Metric) State {
	return State{
		MemberCursor:   Cursor{PageSize: memberPageSize},
		EventCursor:    Cursor{PageSize: eventPageSize},
		DateRange:      r,
		SelectedMetric: metric,
	}
}

// Action is a state transition input.
type Action interface {
	action()
}

// MembersRequested starts loading a member page.
type MembersRequested struct{ Page int }

// MembersLoaded replaces the member array with one fetched page.
type MembersLoaded struct {
	Page  int
	Rows  []model.Member
	Total int
}

// EventsRequested starts loading an event page.
type EventsRequested struct{ Page int }

// EventsLoaded replaces the event array with one fetched page. Fetched is
// the number of rows the source returned before date filtering; when it is
// below len(Rows), len(Rows) is used.
type EventsLoaded struct {
	Page    int
	Rows    []model.Event
	Fetched int
	Total   int
}

// AttendanceRequested starts loading attendance for the loaded events.
type AttendanceRequested struct{}

// AttendanceLoaded replaces the attendance array.
type AttendanceLoaded struct{ Rows []model.AttendanceRecord }

// FetchFailed records a backend failure for Kind.
type FetchFailed struct {
	Kind Kind
	Err  error
}

// FetchAborted ends a load the caller cancelled.
type FetchAborted struct{ Kind Kind }

// RefreshStarted resets all data and cursors ahead of a full reload.
type RefreshStarted struct{}

// DateRangeChanged replaces the event filter and rewinds the event cursor.
type DateRangeChanged struct{ Range model.DateRange }

// MetricSelected switches the primary dashboard view.
type MetricSelected struct{ Metric model.Metric }

// EventsPageAdvanced moves the event cursor to the next page.
type EventsPageAdvanced struct{}

func (MembersRequested) action()    {}
func (MembersLoaded) action()       {}
func (EventsRequested) action()     {}
func (EventsLoaded) action()        {}
func (AttendanceRequested) action() {}
func (AttendanceLoaded) action()    {}
func (FetchFailed) action()         {}
func (FetchAborted) action()        {}
func (RefreshStarted) action()      {}
func (DateRangeChanged) action()    {}
func (MetricSelected) action()      {}
func (EventsPageAdvanced) action()  {}

// CanLoadMoreEvents reports whether another event page may be requested.
func (s State) CanLoadMoreEvents() bool {
	return s.EventCursor.HasMore && !s.Loading
}

// Reduce returns the state that follows s after a. It performs no I/O and
// never mutates s's slices.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case MembersRequested:
		s.MemberCursor.Page = a.Page
		s = s.loading(KindMembers)

	case MembersLoaded:
		s.Members = a.Rows
		s.MemberCursor.Page = a.Page
		s.MemberCursor.HasMore = hasMore(a.Page, s.MemberCursor.PageSize, len(a.Rows), a.Total)
		s.DataVersion++
		if len(a.Rows) == 0 {
			s = s.idle()
		} else {
			s.Stage = KindEvents
		}

	case EventsRequested:
		s.EventCursor.Page = a.Page
		s = s.loading(KindEvents)

	case EventsLoaded:
		s.Events = a.Rows
		s.EventCursor.Page = a.Page
		s.EventCursor.HasMore = hasMore(a.Page, s.EventCursor.PageSize, max(a.Fetched, len(a.Rows)), a.Total)
		s.DataVersion++
		if len(a.Rows) == 0 {
			s.Attendance = nil
			s = s.idle()
		} else {
			s.Stage = KindAttendance
		}

	case AttendanceRequested:
		s = s.loading(KindAttendance)

	case AttendanceLoaded:
		s.Attendance = a.Rows
		s.DataVersion++
		s = s.idle()

	case FetchFailed:
		s.Error = fmt.Sprintf("failed to load %s: %v", a.Kind, a.Err)
		s = s.idle()

	case FetchAborted:
		s = s.idle()

	case RefreshStarted:
		s.Members, s.Events, s.Attendance = nil, nil, nil
		s.MemberCursor = Cursor{PageSize: s.MemberCursor.PageSize}
		s.EventCursor = Cursor{PageSize: s.EventCursor.PageSize}
		s.DataVersion++
		s = s.loading(KindMembers)
		s.Refreshing = true

	case DateRangeChanged:
		s.DateRange = a.Range
		s.EventCursor.Page = 0
		s.EventCursor.HasMore = false

	case MetricSelected:
		s.SelectedMetric = a.Metric

	case EventsPageAdvanced:
		if !s.CanLoadMoreEvents() {
			return s
		}
		s.EventCursor.Page++

	default:
		return s
	}
	s.Version++
	return s
}

func (s State) loading(k Kind) State {
	s.Stage = k
	s.Loading = true
	s.Error = ""
	return s
}

func (s State) idle() State {
	s.Stage = ""
	s.Loading = false
	s.Refreshing = false
	return s
}
