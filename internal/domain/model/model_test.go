package model_test

import (
	"testing"
	"time"

	model "github.com/okian/chapterboard/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestMember(t *testing.T) {
	convey.Convey("Given members with various roles", t, func() {
		convey.Convey("Then active brothers are brother, officer and president only", func() {
			convey.So(model.Member{Role: "brother"}.IsActiveBrother(), convey.ShouldBeTrue)
			convey.So(model.Member{Role: " Officer "}.IsActiveBrother(), convey.ShouldBeTrue)
			convey.So(model.Member{Role: "PRESIDENT"}.IsActiveBrother(), convey.ShouldBeTrue)
			convey.So(model.Member{Role: "pledge"}.IsActiveBrother(), convey.ShouldBeFalse)
			convey.So(model.Member{Role: "alumni"}.IsActiveBrother(), convey.ShouldBeFalse)
			convey.So(model.Member{Role: "abroad"}.IsActiveBrother(), convey.ShouldBeFalse)
			convey.So(model.Member{Role: "inactive"}.IsActiveBrother(), convey.ShouldBeFalse)
		})

		convey.Convey("Then only inactive members are excluded from active", func() {
			convey.So(model.Member{Role: "alumni"}.IsActive(), convey.ShouldBeTrue)
			convey.So(model.Member{Role: "Inactive"}.IsActive(), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given a member's optional fields", t, func() {
		convey.Convey("When the name is blank", func() {
			convey.So(model.Member{}.DisplayName(), convey.ShouldEqual, model.Unknown)
			convey.So(model.Member{FirstName: "Ada", LastName: " Lovelace"}.DisplayName(), convey.ShouldEqual, "Ada Lovelace")
		})

		convey.Convey("When majors are comma separated", func() {
			m := model.Member{Majors: "Economics, , Computer Science ,Math"}
			convey.So(m.MajorList(), convey.ShouldResemble, []string{"Economics", "Computer Science", "Math"})
			convey.So(model.Member{}.MajorList(), convey.ShouldBeEmpty)
		})

		convey.Convey("When graduation is written in different formats", func() {
			for _, s := range []string{"2027", "May 2027", "2027-05-15", "Class of 2027"} {
				year, ok := model.Member{ExpectedGraduation: s}.GraduationYear()
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(year, convey.ShouldEqual, 2027)
			}
			_, ok := model.Member{ExpectedGraduation: "soon"}.GraduationYear()
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = model.Member{ExpectedGraduation: "120270"}.GraduationYear()
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestAttendanceKeyAndRange(t *testing.T) {
	convey.Convey("Given attendance rows", t, func() {
		a := model.AttendanceRecord{UserID: "u1", EventID: "e1"}
		b := model.AttendanceRecord{UserID: "u1", EventID: "e1", RSVP: true}
		c := model.AttendanceRecord{UserID: "u1e", EventID: "1"}

		convey.Convey("Then the key ignores flags and cannot collide across fields", func() {
			convey.So(a.Key(), convey.ShouldEqual, b.Key())
			convey.So(a.Key(), convey.ShouldNotEqual, c.Key())
		})
	})

	convey.Convey("Given a date range", t, func() {
		now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
		r := model.LastDays(now, 30)

		convey.So(r.Contains(now), convey.ShouldBeTrue)
		convey.So(r.Contains(now.AddDate(0, 0, -30)), convey.ShouldBeTrue)
		convey.So(r.Contains(now.AddDate(0, 0, -31)), convey.ShouldBeFalse)
		convey.So(r.Contains(now.Add(time.Second)), convey.ShouldBeFalse)
		convey.So(model.DateRange{}.Contains(now), convey.ShouldBeTrue)
	})

	convey.Convey("Given metric names", t, func() {
		m, err := model.ParseMetric(" Diversity ")
		convey.So(err, convey.ShouldBeNil)
		convey.So(m, convey.ShouldEqual, model.MetricDiversity)
		_, err = model.ParseMetric("bogus")
		convey.So(err, convey.ShouldNotBeNil)
	})
}
