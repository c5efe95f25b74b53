package policy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	passShared     = "shared"
	passSelfTotals = "self_totals"

	outcomeOK      = "ok"
	outcomePartial = "partial"
	outcomeFailed  = "failed"
)

var (
	resolutionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthshare",
		Subsystem: "policy",
		Name:      "resolutions_total",
		Help:      "Number of resolution passes grouped by pass and outcome.",
	}, []string{"pass", "outcome"})

	resolutionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "healthshare",
		Subsystem: "policy",
		Name:      "resolution_duration_seconds",
		Help:      "Time spent per resolution pass including all owner fan-out.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"pass"})

	fetchFailureCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthshare",
		Subsystem: "policy",
		Name:      "owner_fetch_failures_total",
		Help:      "Number of per-owner or per-type fetches skipped during fan-out.",
	})
)

func init() {
	prometheus.MustRegister(resolutionCounter, resolutionDuration, fetchFailureCounter)
}

func recordResolution(pass, outcome string, elapsed time.Duration) {
	resolutionCounter.WithLabelValues(pass, outcome).Inc()
	resolutionDuration.WithLabelValues(pass).Observe(elapsed.Seconds())
}

func recordFetchFailure() {
	fetchFailureCounter.Inc()
}
