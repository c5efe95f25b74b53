package retention

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	sweptCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthshare",
		Subsystem: "retention",
		Name:      "records_deleted_total",
		Help:      "Number of expired records permanently deleted by the sweeper.",
	})

	sweepErrorCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthshare",
		Subsystem: "retention",
		Name:      "sweep_errors_total",
		Help:      "Number of failed sweep passes.",
	})

	sweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "healthshare",
		Subsystem: "retention",
		Name:      "sweep_duration_seconds",
		Help:      "Duration of sweep passes that deleted at least one record.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(sweptCounter, sweepErrorCounter, sweepDuration)
}

func recordSweep(deleted int, elapsed time.Duration) {
	sweptCounter.Add(float64(deleted))
	sweepDuration.Observe(elapsed.Seconds())
}

func recordSweepError() {
	sweepErrorCounter.Inc()
}
