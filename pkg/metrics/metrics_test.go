package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "mailboard")
				So(manager.subsystem, ShouldEqual, "dashboard")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("test_prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.metricPrefix, ShouldEqual, "test_prefix")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.refreshInterval, ShouldEqual, 10*time.Second)
			})

			Convey("And the refresh interval should be readable", func() {
				So(manager.RefreshInterval(), ShouldEqual, 10*time.Second)
			})

			Convey("And metric names should carry the prefix and labels", func() {
				manager.loadErrors.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, mf := range families {
					if mf.GetName() == "test_namespace_test_subsystem_test_prefix_load_errors_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty option values are supplied", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "mailboard")
				So(manager.subsystem, ShouldEqual, "dashboard")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording an ingested dataset", func() {
			before := testutil.ToFloat64(globalManager.rowsIngested)
			RecordDatasetIngested(250, 4096, 12.5)

			Convey("Then the row counter should advance", func() {
				So(testutil.ToFloat64(globalManager.rowsIngested)-before, ShouldEqual, 250)
			})
		})

		Convey("When recording dropped rows", func() {
			before := testutil.ToFloat64(globalManager.rowsDropped.WithLabelValues("bounced"))
			RecordRowsDropped("bounced", 3)
			RecordRowsDropped("bounced", 0)

			Convey("Then only positive counts should be added", func() {
				So(testutil.ToFloat64(globalManager.rowsDropped.WithLabelValues("bounced"))-before, ShouldEqual, 3)
			})
		})

		Convey("When recording an empty filter result", func() {
			before := testutil.ToFloat64(globalManager.emptyResults)
			RecordFilter(0, 0.2)
			RecordFilter(10, 0.2)

			Convey("Then the empty result counter should advance once", func() {
				So(testutil.ToFloat64(globalManager.emptyResults)-before, ShouldEqual, 1)
			})
		})

		Convey("When recording the remaining series", func() {
			Convey("Then nothing should panic", func() {
				So(func() {
					RecordIngestionChunk()
					RecordLoadError()
					RecordCacheLookup("hit")
					RecordCacheLookup("miss")
					UpdateCachedDatasets(1)
					UpdateActiveSessions(2)
					RecordEmptyResult()
					RecordInsightRun("bot_classifier", "insufficient_data", 1.5)
					RecordChartRendered("bar")
					RecordHTTPRequest("summary", "GET", "200")
					RecordHTTPRequestDuration("summary", "GET", "200", 5.0)
					RecordErrorByComponent("ingest", "load_error")
					RecordErrorByType("client_error", "medium")
					RecordErrorByEndpoint("datasets", "POST", "client_error")
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.4)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent metric updates", t, func() {
		before := testutil.ToFloat64(globalManager.ingestionChunks)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					RecordIngestionChunk()
				}
			}()
		}
		wg.Wait()

		Convey("Then every increment should be counted", func() {
			So(testutil.ToFloat64(globalManager.ingestionChunks)-before, ShouldEqual, 1000)
		})
	})
}

func TestRefreshInterval(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then its refresh interval should be the default", func() {
			So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordLoadError()
		families, err := GetRegistry().Gather()

		Convey("Then it should expose dashboard metrics", func() {
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
