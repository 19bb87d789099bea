package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/okian/chapterboard/internal/domain/model"
)

func sample() model.Dashboard {
	return model.Dashboard{
		GeneratedAt: time.Date(2026, time.April, 2, 9, 30, 0, 0, time.UTC),
		Health:      model.HealthMetrics{TotalMembers: 12, ActiveMembers: 10, RetentionRate: 83.3, AvgAttendanceRate: 40, AvgPoints: 7.5},
		Leaderboard: []model.MemberPerformance{
			{UserID: "u1", Name: "Alex Adams", PledgeClass: "Alpha", Points: 15, EventsAttended: 2, AttendanceRate: 66.7},
			{UserID: "u2", Name: "Ben Brown", PledgeClass: "Beta", Points: 5, EventsAttended: 1, AttendanceRate: 33.3},
		},
		Events: []model.EventAnalytics{
			{ID: "e1", Title: "Food Drive", AttendanceCount: 2, RSVPCount: 3, TopAttendees: []string{"Alex Adams", "Ben Brown"}, Creator: "Cal Cruz"},
		},
		Categories:    []model.CategoryPointsBreakdown{{Category: "Service", TotalPoints: 30, EventCount: 1, AttendanceCount: 3, AveragePoints: 10}},
		Houses:        []model.GroupPoints{{Group: "North", TotalPoints: 30, MemberCount: 2, AvgPointsPerMember: 15}},
		PledgeClasses: []model.GroupPoints{{Group: "Alpha", TotalPoints: 15, MemberCount: 1, AvgPointsPerMember: 15}},
		Diversity: model.DiversityMetrics{
			Gender:         []model.DistributionEntry{{Label: "Male", Count: 8, Percentage: 80}, {Label: "Female", Count: 2, Percentage: 20}},
			DiversityScore: 8,
			Insights:       []string{"Low diversity: the chapter scores 8.0; make diverse recruitment a priority."},
		},
	}
}

func TestWrite(t *testing.T) {
	Convey("Given a dashboard", t, func() {
		var buf bytes.Buffer

		Convey("When writing it as a workbook", func() {
			So(Write(&buf, sample()), ShouldBeNil)
			f, err := excelize.OpenReader(&buf)
			So(err, ShouldBeNil)
			Reset(func() { _ = f.Close() })

			Convey("Then there is one sheet per view in order", func() {
				So(f.GetSheetList(), ShouldResemble, []string{
					SheetHealth, SheetLeaderboard, SheetEvents, SheetCategories,
					SheetHouses, SheetPledgeClasses, SheetDiversity,
				})
			})

			Convey("Then the leaderboard keeps rank order", func() {
				rows, err := f.GetRows(SheetLeaderboard)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 3)
				So(rows[0][0], ShouldEqual, "Rank")
				So(rows[1][:3], ShouldResemble, []string{"1", "Alex Adams", "Alpha"})
				So(rows[2][1], ShouldEqual, "Ben Brown")
			})

			Convey("Then event attendees are joined in one cell", func() {
				rows, err := f.GetRows(SheetEvents)
				So(err, ShouldBeNil)
				So(rows[1][0], ShouldEqual, "Food Drive")
				So(rows[1][5], ShouldEqual, "Alex Adams, Ben Brown")
			})

			Convey("Then the diversity sheet ends with score and insights", func() {
				rows, err := f.GetRows(SheetDiversity)
				So(err, ShouldBeNil)
				So(rows[1][:3], ShouldResemble, []string{"Gender", "Male", "8"})
				last := rows[len(rows)-1]
				So(last[0], ShouldEqual, "Insight")
				So(last[1], ShouldStartWith, "Low diversity")
			})
		})
	})

	Convey("Given an empty dashboard", t, func() {
		Convey("Then headers are still written", func() {
			f, err := Build(model.Dashboard{})
			So(err, ShouldBeNil)
			defer func() { _ = f.Close() }()
			rows, err := f.GetRows(SheetCategories)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1)
		})
	})

	Convey("Given a target path", t, func() {
		path := filepath.Join(t.TempDir(), "report.xlsx")

		Convey("Then the workbook is written to disk", func() {
			So(WriteFile(path, sample()), ShouldBeNil)
			f, err := excelize.OpenFile(path)
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)
		})
	})
}
