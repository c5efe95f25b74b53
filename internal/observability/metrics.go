package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ingestPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "healthshare",
		Subsystem: "persistence",
		Name:      "last_sample_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent device sample persisted to Postgres.",
	})
	exportGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "healthshare",
		Subsystem: "export",
		Name:      "last_archive_built_timestamp_seconds",
		Help:      "Unix timestamp of the most recent export archive assembled.",
	})
)

func init() {
	prometheus.MustRegister(ingestPersistGauge, exportGauge)
}

// RecordIngestPersisted updates the ingestion watermark gauge.
func RecordIngestPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	ingestPersistGauge.Set(float64(ts.Unix()))
}

// RecordArchiveBuilt updates the export watermark gauge.
func RecordArchiveBuilt(ts time.Time) {
	if ts.IsZero() {
		return
	}
	exportGauge.Set(float64(ts.Unix()))
}
