package loader_test

import (
	"errors"
	"testing"

	"github.com/okian/chapterboard/internal/app/loader"
	"github.com/okian/chapterboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReduce(t *testing.T) {
	Convey("Given the initial state", t, func() {
		s := loader.Initial(2, 3, model.DateRange{}, model.MetricHealth)

		Convey("Then it is idle and empty", func() {
			So(s.Loading, ShouldBeFalse)
			So(s.Stage, ShouldEqual, loader.Kind(""))
			So(s.Members, ShouldBeEmpty)
			So(s.MemberCursor, ShouldResemble, loader.Cursor{PageSize: 2})
		})

		Convey("When a member page is requested and loaded", func() {
			s = loader.Reduce(s, loader.MembersRequested{Page: 1})
			So(s.Loading, ShouldBeTrue)
			So(s.Stage, ShouldEqual, loader.KindMembers)

			rows := []model.Member{{UserID: "u3"}, {UserID: "u4"}}
			s = loader.Reduce(s, loader.MembersLoaded{Page: 1, Rows: rows, Total: 5})

			Convey("Then members are replaced and hasMore reflects the total", func() {
				So(s.Members, ShouldResemble, rows)
				So(s.MemberCursor.Page, ShouldEqual, 1)
				So(s.MemberCursor.HasMore, ShouldBeTrue)
				So(s.Stage, ShouldEqual, loader.KindEvents)
				So(s.Loading, ShouldBeTrue)
			})

			Convey("Then the last page clears hasMore", func() {
				s = loader.Reduce(s, loader.MembersLoaded{Page: 2, Rows: []model.Member{{UserID: "u5"}}, Total: 5})
				So(s.MemberCursor.HasMore, ShouldBeFalse)
			})
		})

		Convey("When an empty member page arrives", func() {
			s = loader.Reduce(s, loader.MembersRequested{Page: 0})
			s = loader.Reduce(s, loader.MembersLoaded{Page: 0, Total: 0})

			Convey("Then loading stops", func() {
				So(s.Loading, ShouldBeFalse)
				So(s.Stage, ShouldEqual, loader.Kind(""))
			})
		})
	})

	Convey("Given a fully loaded state", t, func() {
		s := loaded()

		Convey("When a fetch fails", func() {
			next := loader.Reduce(s, loader.FetchFailed{Kind: loader.KindAttendance, Err: errors.New("timeout")})

			Convey("Then the error is surfaced and data is kept", func() {
				So(next.Error, ShouldEqual, "failed to load attendance: timeout")
				So(next.Loading, ShouldBeFalse)
				So(next.Refreshing, ShouldBeFalse)
				So(next.Members, ShouldResemble, s.Members)
				So(next.Attendance, ShouldResemble, s.Attendance)
			})

			Convey("Then the next request clears the error", func() {
				next = loader.Reduce(next, loader.MembersRequested{Page: 0})
				So(next.Error, ShouldBeEmpty)
			})
		})

		Convey("When an empty event page arrives", func() {
			next := loader.Reduce(s, loader.EventsLoaded{Page: 0, Total: 0})

			Convey("Then attendance is cleared and the state goes idle", func() {
				So(next.Events, ShouldBeEmpty)
				So(next.Attendance, ShouldBeNil)
				So(next.Loading, ShouldBeFalse)
			})
		})

		Convey("When an event page arrives with rows dropped by the date filter", func() {
			next := loader.Reduce(s, loader.EventsLoaded{Page: 0, Rows: []model.Event{{ID: "e1"}}, Fetched: 3, Total: 3})

			Convey("Then hasMore counts every row the source returned", func() {
				So(next.Events, ShouldHaveLength, 1)
				So(next.EventCursor.HasMore, ShouldBeFalse)
			})
		})

		Convey("When a refresh starts", func() {
			next := loader.Reduce(s, loader.RefreshStarted{})

			Convey("Then arrays and cursors reset while page sizes survive", func() {
				So(next.Members, ShouldBeNil)
				So(next.Events, ShouldBeNil)
				So(next.Attendance, ShouldBeNil)
				So(next.MemberCursor, ShouldResemble, loader.Cursor{PageSize: s.MemberCursor.PageSize})
				So(next.EventCursor, ShouldResemble, loader.Cursor{PageSize: s.EventCursor.PageSize})
				So(next.Refreshing, ShouldBeTrue)
				So(next.Loading, ShouldBeTrue)
				So(next.DataVersion, ShouldBeGreaterThan, s.DataVersion)
			})

			Convey("Then the original snapshot is untouched", func() {
				So(s.Members, ShouldHaveLength, 1)
			})
		})

		Convey("When the metric changes", func() {
			next := loader.Reduce(s, loader.MetricSelected{Metric: model.MetricDiversity})

			Convey("Then only the version moves", func() {
				So(next.SelectedMetric, ShouldEqual, model.MetricDiversity)
				So(next.Version, ShouldEqual, s.Version+1)
				So(next.DataVersion, ShouldEqual, s.DataVersion)
			})
		})

		Convey("When advancing events without more pages", func() {
			s.EventCursor.HasMore = false
			next := loader.Reduce(s, loader.EventsPageAdvanced{})

			Convey("Then nothing changes", func() {
				So(next, ShouldResemble, s)
			})
		})

		Convey("When advancing events with more pages", func() {
			s.EventCursor.HasMore = true
			next := loader.Reduce(s, loader.EventsPageAdvanced{})

			Convey("Then the cursor moves by one", func() {
				So(next.EventCursor.Page, ShouldEqual, s.EventCursor.Page+1)
			})
		})

		Convey("When advancing events while a load is in progress", func() {
			s.EventCursor.HasMore = true
			s.Loading = true
			next := loader.Reduce(s, loader.EventsPageAdvanced{})

			Convey("Then nothing changes", func() {
				So(next, ShouldResemble, s)
			})
		})

		Convey("When the date range changes", func() {
			s.EventCursor.Page = 3
			r := model.DateRange{Start: s.DateRange.Start.AddDate(0, -1, 0), End: s.DateRange.End}
			next := loader.Reduce(s, loader.DateRangeChanged{Range: r})

			Convey("Then the event cursor rewinds", func() {
				So(next.DateRange, ShouldResemble, r)
				So(next.EventCursor.Page, ShouldEqual, 0)
			})
		})
	})
}

func loaded() loader.State {
	s := loader.Initial(10, 10, model.DateRange{}, model.MetricHealth)
	s = loader.Reduce(s, loader.MembersRequested{Page: 0})
	s = loader.Reduce(s, loader.MembersLoaded{Rows: []model.Member{{UserID: "u1"}}, Total: 1})
	s = loader.Reduce(s, loader.EventsRequested{Page: 0})
	s = loader.Reduce(s, loader.EventsLoaded{Rows: []model.Event{{ID: "e1"}}, Total: 1})
	s = loader.Reduce(s, loader.AttendanceRequested{})
	return loader.Reduce(s, loader.AttendanceLoaded{Rows: []model.AttendanceRecord{{UserID: "u1", EventID: "e1", Attended: true}}})
}
