package lookup_test

import (
	"testing"

	"github.com/okian/chapterboard/internal/domain/lookup"
	"github.com/okian/chapterboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLookups(t *testing.T) {
	Convey("Given members and events", t, func() {
		members := []model.Member{
			{UserID: "u1", FirstName: "A"},
			{UserID: "u2", FirstName: "B"},
			{UserID: "u1", FirstName: "duplicate"},
		}
		events := []model.Event{{ID: "e1", Title: "one"}, {ID: "e2", Title: "two"}}

		Convey("When indexing members", func() {
			idx := lookup.MembersByID(members)

			Convey("Then each id resolves and the first row wins", func() {
				So(len(idx), ShouldEqual, 2)
				So(idx["u1"].FirstName, ShouldEqual, "A")
				So(idx["u2"].FirstName, ShouldEqual, "B")
			})
		})

		Convey("When indexing events", func() {
			idx := lookup.EventsByID(events)
			So(idx["e2"].Title, ShouldEqual, "two")
			_, ok := idx["missing"]
			So(ok, ShouldBeFalse)
			So(lookup.EventIDs(events), ShouldResemble, []string{"e1", "e2"})
		})

		Convey("When indexing nothing", func() {
			So(lookup.MembersByID(nil), ShouldBeEmpty)
			So(lookup.EventsByID(nil), ShouldBeEmpty)
			So(lookup.EventIDs(nil), ShouldBeEmpty)
		})
	})
}
