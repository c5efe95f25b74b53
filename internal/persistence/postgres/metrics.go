package postgres

import "github.com/prometheus/client_golang/prometheus"

var malformedRowCounter = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "healthshare",
	Subsystem: "store",
	Name:      "malformed_records_total",
	Help:      "Number of stored record rows skipped because required fields failed to decode.",
})

func init() {
	prometheus.MustRegister(malformedRowCounter)
}

func recordMalformedRow() {
	malformedRowCounter.Inc()
}
