package export

import "github.com/prometheus/client_golang/prometheus"

var (
	exportedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthshare",
		Subsystem: "export",
		Name:      "records_exported_total",
		Help:      "Number of records written into export archives, by type.",
	}, []string{"record_type"})

	typeFailedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthshare",
		Subsystem: "export",
		Name:      "type_failures_total",
		Help:      "Number of record types that failed mid-pagination during export.",
	}, []string{"record_type"})
)

func init() {
	prometheus.MustRegister(exportedCounter, typeFailedCounter)
}

func recordTypeExported(recordType string, count int) {
	exportedCounter.WithLabelValues(recordType).Add(float64(count))
}

func recordTypeFailed(recordType string) {
	typeFailedCounter.WithLabelValues(recordType).Inc()
}
