package loader_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/chapterboard/internal/app/loader"
	"github.com/okian/chapterboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	clock = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	year  = model.DateRange{Start: clock.AddDate(-1, 0, 0), End: clock}
)

// fakeSource serves fixed slices with offset pagination. Hooks let a test
// block or fail a call.
type fakeSource struct {
	mu         sync.Mutex
	members    []model.Member
	events     []model.Event
	attendance []model.AttendanceRecord

	memberCalls     int
	eventCalls      int
	attendanceCalls int
	lastEventIDs    []string

	memberHook func(ctx context.Context, call int) error
	eventErr   error
}

func (f *fakeSource) FetchMembers(ctx context.Context, page, pageSize int) (model.Page[model.Member], error) {
	f.mu.Lock()
	f.memberCalls++
	call, hook := f.memberCalls, f.memberHook
	f.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, call); err != nil {
			return model.Page[model.Member]{}, err
		}
	}
	return model.Page[model.Member]{Rows: window(f.members, page, pageSize), Total: len(f.members)}, nil
}

func (f *fakeSource) FetchEvents(_ context.Context, page, pageSize int, _ model.DateRange) (model.Page[model.Event], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventCalls++
	if f.eventErr != nil {
		return model.Page[model.Event]{}, f.eventErr
	}
	return model.Page[model.Event]{Rows: window(f.events, page, pageSize), Total: len(f.events)}, nil
}

func (f *fakeSource) FetchAttendance(_ context.Context, eventIDs []string) ([]model.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attendanceCalls++
	f.lastEventIDs = eventIDs

	want := make(map[string]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		want[id] = struct{}{}
	}
	var out []model.AttendanceRecord
	for _, a := range f.attendance {
		if _, ok := want[a.EventID]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeSource) calls() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.memberCalls, f.eventCalls, f.attendanceCalls
}

func window[T any](rows []T, page, size int) []T {
	lo := page * size
	if lo >= len(rows) {
		return nil
	}
	hi := lo + size
	if hi > len(rows) {
		hi = len(rows)
	}
	return rows[lo:hi]
}

func newSource(members, events int) *fakeSource {
	f := &fakeSource{}
	for i := 0; i < members; i++ {
		f.members = append(f.members, model.Member{UserID: fmt.Sprintf("u%02d", i), Role: model.RoleBrother})
	}
	for i := 0; i < events; i++ {
		id := fmt.Sprintf("e%02d", i)
		f.events = append(f.events, model.Event{ID: id, StartTime: clock.AddDate(0, 0, -i-1), PointValue: 1})
		f.attendance = append(f.attendance,
			model.AttendanceRecord{UserID: "u00", EventID: id, Attended: true},
			model.AttendanceRecord{UserID: "u00", EventID: id, Attended: true},
		)
	}
	return f
}

func newCoordinator(src loader.Source) *loader.Coordinator {
	return loader.New(src,
		loader.WithMemberPageSize(4),
		loader.WithEventPageSize(3),
		loader.WithDateRange(year),
	)
}

func TestCoordinatorRefresh(t *testing.T) {
	Convey("Given a source with members, events and attendance", t, func() {
		src := newSource(6, 5)
		c := newCoordinator(src)
		ctx := context.Background()

		Convey("When refreshing", func() {
			err := c.Refresh(ctx)
			s := c.State()

			Convey("Then every stage loads in order and the state goes idle", func() {
				So(err, ShouldBeNil)
				So(s.Members, ShouldHaveLength, 4)
				So(s.MemberCursor.HasMore, ShouldBeTrue)
				So(s.Events, ShouldHaveLength, 3)
				So(s.EventCursor.HasMore, ShouldBeTrue)
				So(s.Attendance, ShouldHaveLength, 6)
				So(s.Loading, ShouldBeFalse)
				So(s.Refreshing, ShouldBeFalse)
				So(s.Error, ShouldBeEmpty)
			})

			Convey("Then attendance is requested for exactly the loaded events", func() {
				So(src.lastEventIDs, ShouldResemble, []string{"e00", "e01", "e02"})
			})

			Convey("And loading more events replaces the page and reloads attendance", func() {
				So(c.LoadMoreEvents(ctx), ShouldBeNil)
				s = c.State()
				So(s.EventCursor.Page, ShouldEqual, 1)
				So(s.EventCursor.HasMore, ShouldBeFalse)
				So(s.Events, ShouldHaveLength, 2)
				So(src.lastEventIDs, ShouldResemble, []string{"e03", "e04"})
				So(s.Members, ShouldHaveLength, 4)

				Convey("And loading more without further pages issues no request", func() {
					before := c.State()
					_, events, attendance := src.calls()

					So(c.LoadMoreEvents(ctx), ShouldBeNil)

					_, eventsAfter, attendanceAfter := src.calls()
					So(eventsAfter, ShouldEqual, events)
					So(attendanceAfter, ShouldEqual, attendance)
					So(c.State(), ShouldResemble, before)
				})
			})

			Convey("And refreshing again starts from the first pages", func() {
				So(c.LoadMembers(ctx, 1), ShouldBeNil)
				So(c.State().MemberCursor.Page, ShouldEqual, 1)

				So(c.Refresh(ctx), ShouldBeNil)
				s = c.State()
				So(s.MemberCursor.Page, ShouldEqual, 0)
				So(s.EventCursor.Page, ShouldEqual, 0)
				So(s.Members[0].UserID, ShouldEqual, "u00")
			})
		})
	})

	Convey("Given a source without members", t, func() {
		src := newSource(0, 5)
		c := newCoordinator(src)

		Convey("When refreshing", func() {
			err := c.Refresh(context.Background())

			Convey("Then events are never requested", func() {
				So(err, ShouldBeNil)
				_, events, attendance := src.calls()
				So(events, ShouldEqual, 0)
				So(attendance, ShouldEqual, 0)
				So(c.State().Loading, ShouldBeFalse)
			})
		})
	})

	Convey("Given events outside the date range", t, func() {
		src := newSource(2, 2)
		src.events = append(src.events, model.Event{ID: "old", StartTime: clock.AddDate(-3, 0, 0)})
		c := loader.New(src, loader.WithDateRange(year))

		Convey("Then they are filtered out without leaving a phantom next page", func() {
			So(c.Refresh(context.Background()), ShouldBeNil)
			So(c.State().Events, ShouldHaveLength, 2)
			So(c.State().EventCursor.HasMore, ShouldBeFalse)
		})
	})
}

func TestCoordinatorFailures(t *testing.T) {
	Convey("Given an event backend that fails", t, func() {
		src := newSource(3, 3)
		src.eventErr = errors.New("connection reset")
		c := newCoordinator(src)

		Convey("When refreshing", func() {
			err := c.Refresh(context.Background())
			s := c.State()

			Convey("Then the failure is surfaced and members are kept", func() {
				So(errors.Is(err, loader.ErrFetch), ShouldBeTrue)
				So(s.Error, ShouldEqual, "failed to load events: connection reset")
				So(s.Members, ShouldHaveLength, 3)
				So(s.Loading, ShouldBeFalse)
				So(s.Refreshing, ShouldBeFalse)
			})

			Convey("And a later refresh recovers", func() {
				src.mu.Lock()
				src.eventErr = nil
				src.mu.Unlock()

				So(c.Refresh(context.Background()), ShouldBeNil)
				So(c.State().Error, ShouldBeEmpty)
				So(c.State().Events, ShouldHaveLength, 3)
			})
		})
	})

	Convey("Given a member fetch the caller cancels", t, func() {
		src := newSource(3, 3)
		started := make(chan struct{})
		src.memberHook = func(ctx context.Context, _ int) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}
		c := newCoordinator(src)
		ctx, cancel := context.WithCancel(context.Background())

		Convey("When the context is cancelled mid-flight", func() {
			go func() {
				<-started
				cancel()
			}()
			err := c.Refresh(ctx)

			Convey("Then loading clears without an error message", func() {
				So(errors.Is(err, loader.ErrAborted), ShouldBeTrue)
				s := c.State()
				So(s.Loading, ShouldBeFalse)
				So(s.Refreshing, ShouldBeFalse)
				So(s.Error, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a negative member page", t, func() {
		c := newCoordinator(newSource(1, 1))

		Convey("Then it is rejected", func() {
			So(errors.Is(c.LoadMembers(context.Background(), -1), loader.ErrInvalidPage), ShouldBeTrue)
		})
	})

	Convey("Given a date range that ends before it starts", t, func() {
		c := newCoordinator(newSource(1, 1))
		err := c.SetDateRange(context.Background(), model.DateRange{Start: clock, End: clock.AddDate(0, 0, -1)})

		Convey("Then it is rejected and state is unchanged", func() {
			So(errors.Is(err, loader.ErrInvalidRange), ShouldBeTrue)
			So(c.State().DateRange, ShouldResemble, year)
		})
	})
}

func TestCoordinatorSupersede(t *testing.T) {
	Convey("Given a slow member fetch that ignores cancellation", t, func() {
		src := newSource(8, 2)
		started := make(chan struct{})
		release := make(chan struct{})
		src.memberHook = func(_ context.Context, call int) error {
			if call == 1 {
				close(started)
				<-release
			}
			return nil
		}
		c := newCoordinator(src)
		ctx := context.Background()

		Convey("When a newer member request completes first", func() {
			firstErr := make(chan error, 1)
			go func() { firstErr <- c.LoadMembers(ctx, 0) }()
			<-started

			So(c.LoadMembers(ctx, 1), ShouldBeNil)
			close(release)
			err := <-firstErr

			Convey("Then the stale result is discarded silently", func() {
				So(errors.Is(err, loader.ErrSuperseded), ShouldBeTrue)
				s := c.State()
				So(s.MemberCursor.Page, ShouldEqual, 1)
				So(s.Members[0].UserID, ShouldEqual, "u04")
				So(s.Error, ShouldBeEmpty)
				So(s.Loading, ShouldBeFalse)
			})
		})
	})

	Convey("Given a member fetch that honours cancellation", t, func() {
		src := newSource(8, 2)
		started := make(chan struct{})
		src.memberHook = func(ctx context.Context, call int) error {
			if call == 1 {
				close(started)
				<-ctx.Done()
				return ctx.Err()
			}
			return nil
		}
		c := newCoordinator(src)
		ctx := context.Background()

		Convey("When a refresh supersedes it", func() {
			firstErr := make(chan error, 1)
			go func() { firstErr <- c.LoadMembers(ctx, 1) }()
			<-started

			So(c.Refresh(ctx), ShouldBeNil)
			err := <-firstErr

			Convey("Then the cancellation is not reported as a failure", func() {
				So(errors.Is(err, loader.ErrSuperseded), ShouldBeTrue)
				s := c.State()
				So(s.Error, ShouldBeEmpty)
				So(s.MemberCursor.Page, ShouldEqual, 0)
				So(s.Attendance, ShouldNotBeEmpty)
			})
		})
	})
}

func TestCoordinatorLoadMoreWhileLoading(t *testing.T) {
	Convey("Given a loaded coordinator with more event pages", t, func() {
		src := newSource(6, 5)
		c := newCoordinator(src)
		ctx := context.Background()
		So(c.Refresh(ctx), ShouldBeNil)
		So(c.State().EventCursor.HasMore, ShouldBeTrue)

		started := make(chan struct{})
		release := make(chan struct{})
		src.mu.Lock()
		src.memberHook = func(_ context.Context, call int) error {
			if call == 2 {
				close(started)
				<-release
			}
			return nil
		}
		src.mu.Unlock()

		Convey("When loading more events while a member page is in flight", func() {
			done := make(chan error, 1)
			go func() { done <- c.LoadMembers(ctx, 1) }()
			<-started

			before := c.State()
			_, events, attendance := src.calls()
			err := c.LoadMoreEvents(ctx)
			after := c.State()
			_, eventsAfter, attendanceAfter := src.calls()

			close(release)
			So(<-done, ShouldBeNil)

			Convey("Then no event request is issued and the cursor stays put", func() {
				So(err, ShouldBeNil)
				So(before.Loading, ShouldBeTrue)
				So(eventsAfter, ShouldEqual, events)
				So(attendanceAfter, ShouldEqual, attendance)
				So(after.EventCursor.Page, ShouldEqual, before.EventCursor.Page)
				So(after, ShouldResemble, before)
			})
		})
	})
}

func TestCoordinatorDateRangeAndMetric(t *testing.T) {
	Convey("Given a loaded coordinator", t, func() {
		src := newSource(2, 6)
		c := newCoordinator(src)
		ctx := context.Background()
		So(c.Refresh(ctx), ShouldBeNil)
		So(c.LoadMoreEvents(ctx), ShouldBeNil)

		Convey("When narrowing the date range", func() {
			r := model.DateRange{Start: clock.AddDate(0, 0, -2), End: clock}
			So(c.SetDateRange(ctx, r), ShouldBeNil)
			s := c.State()

			Convey("Then events reload from the first page within the range", func() {
				So(s.DateRange, ShouldResemble, r)
				So(s.EventCursor.Page, ShouldEqual, 0)
				So(s.Events, ShouldHaveLength, 2)
				So(s.Members, ShouldHaveLength, 2)
			})
		})

		Convey("When selecting a metric", func() {
			before := c.State()
			c.SelectMetric(model.MetricEvents)

			Convey("Then the data version is unchanged", func() {
				s := c.State()
				So(s.SelectedMetric, ShouldEqual, model.MetricEvents)
				So(s.DataVersion, ShouldEqual, before.DataVersion)
			})
		})
	})

	Convey("Given a coordinator with nothing loaded", t, func() {
		src := newSource(2, 2)
		c := newCoordinator(src)

		Convey("When the date range changes", func() {
			r := model.DateRange{Start: clock.AddDate(0, -1, 0), End: clock}
			So(c.SetDateRange(context.Background(), r), ShouldBeNil)

			Convey("Then the filter is stored without fetching", func() {
				So(c.State().DateRange, ShouldResemble, r)
				_, events, _ := src.calls()
				So(events, ShouldEqual, 0)
			})
		})
	})
}
