package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry and custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors register on that registry", func() {
				So(manager, ShouldNotBeNil)
				manager.fetches.WithLabelValues("members", OutcomeOK).Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "test_unit_fetches_total")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording fetch outcomes", func() {
			before := testutil.ToFloat64(globalManager.fetches.WithLabelValues("events", OutcomeSuperseded))
			RecordFetch("events", OutcomeSuperseded)
			RecordFetchLatency("events", 12)

			Convey("Then the labelled counter increases", func() {
				after := testutil.ToFloat64(globalManager.fetches.WithLabelValues("events", OutcomeSuperseded))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording collapsed duplicates", func() {
			before := testutil.ToFloat64(globalManager.duplicatesCollapsed)
			RecordDuplicatesCollapsed(3)
			RecordDuplicatesCollapsed(0)

			Convey("Then only positive counts are added", func() {
				So(testutil.ToFloat64(globalManager.duplicatesCollapsed)-before, ShouldEqual, 3)
			})
		})

		Convey("When updating loaded rows", func() {
			UpdateLoadedRows("attendance", 42)

			Convey("Then the gauge holds the latest value", func() {
				So(testutil.ToFloat64(globalManager.loadedRows.WithLabelValues("attendance")), ShouldEqual, 42)
			})
		})

		Convey("Then the remaining recorders do not panic", func() {
			So(func() {
				RecordRefresh("manual")
				RecordViewLatency("health", 0.3)
				RecordExport()
				RecordCacheHit()
				RecordCacheMiss()
				RecordCacheError("get")
				RecordHTTPRequest("/stats", "GET", "200")
				RecordHTTPRequestDuration("/stats", "GET", "200", 0.01)
				RecordErrorByComponent("loader", "fetch")
				UpdateSystemGoroutineCount(10)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
