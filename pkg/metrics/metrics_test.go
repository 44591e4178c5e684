package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the manager should be usable", func() {
				So(manager, ShouldNotBeNil)
				manager.sweepsCompleted.Inc()
				manager.fetchAttempts.WithLabelValues("success").Inc()
				manager.pointsWritten.Add(100)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording tracker events", func() {
			RecordSweep(900.0)
			UpdateLastSweepUnix(1700000000)
			RecordCombinationProcessed()
			RecordCombinationFailed()
			RecordFetchAttempt("success")
			RecordFetchAttempt("transport")
			RecordFetchRetry()
			AddPointsWritten(42)
			RecordWriteError()
			RecordStaleBatchSkipped()
			RecordAttributeRefresh()
			RecordAttributeRefreshError()
			RecordHTTPRequest("history", "GET", "200")
			RecordHTTPRequestDuration("history", "GET", "200", 12.5)
			UpdateSystemMemoryUsage(1024)
			UpdateSystemGoroutineCount(10)

			Convey("Then the registry should expose them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
