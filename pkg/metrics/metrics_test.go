package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.computations.WithLabelValues("handicap", "whs").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_computations_total")
			})
		})

		Convey("When two managers share a registry", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording engine metrics", func() {
			before := testutil.ToFloat64(globalManager.computations.WithLabelValues("average", "simple"))
			RecordComputation("average", "simple")

			Convey("Then the counter moves by one", func() {
				after := testutil.ToFloat64(globalManager.computations.WithLabelValues("average", "simple"))
				So(after-before, ShouldEqual, 1.0)
			})
		})

		Convey("When updating gauges", func() {
			UpdateQueueSize(7)
			UpdateWorkerCount(3)
			UpdateBreakerState("redis", 2)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7.0)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 3.0)
				So(testutil.ToFloat64(globalManager.breakerState.WithLabelValues("redis")), ShouldEqual, 2.0)
			})
		})

		Convey("When recording every helper", func() {
			So(func() {
				RecordComputationError("handicap", "config")
				RecordComputationLatency("handicap", 1.5)
				RecordMatchupScored("played")
				RecordBaselineFallback("average", "season")
				RecordBulkLatency("recalculate", 12)
				RecordCacheHit("memory")
				RecordCacheMiss("memory")
				RecordCacheError("redis", "get")
				UpdateQueueCapacity(10)
				RecordJobEnqueued()
				RecordJobCoalesced()
				RecordJobRejected()
				RecordJobProcessed()
				RecordJobError()
				RecordJobLatency(3)
				UpdatePendingRecomputes(2)
				RecordHTTPRequest("handicap", "GET", "200")
				RecordHTTPRequestDuration("handicap", "GET", "200", 4)
				RecordErrorByEndpoint("handicap", "GET", "not_found")
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
