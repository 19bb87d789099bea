package category_test

import (
	"testing"

	"github.com/okian/chapterboard/internal/domain/category"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given brotherhood labels in mixed case", t, func() {
		Convey("Then they all normalize to Brotherhood", func() {
			for _, label := range []string{"Brotherhood Mixer", "brotherhood", "BROTHER bonding"} {
				So(category.Normalize(label), ShouldEqual, category.Brotherhood)
			}
		})
	})

	Convey("Given a label with no rule", t, func() {
		Convey("Then it is returned trimmed and unmerged", func() {
			So(category.Normalize("Intramurals"), ShouldEqual, "Intramurals")
			So(category.Normalize("  Intramurals \t"), ShouldEqual, "Intramurals")
		})
	})

	Convey("Given labels for each canonical category", t, func() {
		cases := map[string]string{
			"Scholarship Night":       category.Scholarship,
			"Study hall (scholar)":    category.Scholarship,
			"H&W yoga":                category.HealthWellness,
			"Mental Health Talk":      category.HealthWellness,
			"Wellness Walk":           category.HealthWellness,
			"Fundraiser":              category.Fundraising,
			"DEI workshop":            category.DEI,
			"Diversity Panel":         category.DEI,
			"Professional Dev":        category.Professionalism,
			"Community Service":       category.Service,
			"brotherhood service day": category.Brotherhood,
		}
		for label, want := range cases {
			So(category.Normalize(label), ShouldEqual, want)
		}
	})

	Convey("Given labels matching several rules", t, func() {
		Convey("Then priority order decides", func() {
			So(category.Normalize("Scholarship Fundraiser"), ShouldEqual, category.Scholarship)
			So(category.Normalize("Health Fund"), ShouldEqual, category.HealthWellness)
			So(category.Normalize("Professional Fundraising"), ShouldEqual, category.Fundraising)
			So(category.Normalize("Diversity Service"), ShouldEqual, category.DEI)
			So(category.Normalize("Professional Service"), ShouldEqual, category.Professionalism)
		})
	})

	Convey("Given any label", t, func() {
		labels := []string{"", "   ", "x", "Intramurals", "Brotherhood", "weird ñ label", "H&W", "DEI"}

		Convey("Then normalize is total and never empty", func() {
			for _, label := range labels {
				So(category.Normalize(label), ShouldNotBeEmpty)
			}
			So(category.Normalize(""), ShouldEqual, category.Uncategorized)
		})

		Convey("Then normalize is idempotent", func() {
			for _, label := range labels {
				once := category.Normalize(label)
				So(category.Normalize(once), ShouldEqual, once)
			}
			for _, c := range category.Canonical {
				So(category.Normalize(c), ShouldEqual, c)
				So(category.IsCanonical(c), ShouldBeTrue)
			}
			So(category.IsCanonical("Intramurals"), ShouldBeFalse)
		})
	})
}
