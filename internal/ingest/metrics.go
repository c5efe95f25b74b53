package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"

	"example.com/healthshare/internal/domain"
)

var (
	samplesIngestedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthshare",
		Subsystem: "ingest",
		Name:      "samples_ingested_total",
		Help:      "Number of device samples persisted as records, by type.",
	}, []string{"record_type"})

	batchCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthshare",
		Subsystem: "ingest",
		Name:      "batches_processed_total",
		Help:      "Number of sample batches successfully handled, by topic.",
	}, []string{"topic"})

	decodeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthshare",
		Subsystem: "ingest",
		Name:      "decode_errors_total",
		Help:      "Number of undecodable sample batches per topic.",
	}, []string{"topic"})

	malformedSampleCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthshare",
		Subsystem: "ingest",
		Name:      "malformed_samples_total",
		Help:      "Number of individual samples skipped inside otherwise valid batches.",
	}, []string{"topic"})

	handlerErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthshare",
		Subsystem: "ingest",
		Name:      "handler_errors_total",
		Help:      "Number of handler errors per topic.",
	}, []string{"topic"})

	lastBatchGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "healthshare",
		Subsystem: "ingest",
		Name:      "last_batch_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successfully processed batch per topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(samplesIngestedCounter, batchCounter, decodeErrorCounter, malformedSampleCounter, handlerErrorCounter, lastBatchGauge)
}

func recordBatchProcessed(msg kafka.Message, records []domain.HealthRecord) {
	batchCounter.WithLabelValues(msg.Topic).Inc()
	for _, rec := range records {
		samplesIngestedCounter.WithLabelValues(string(rec.Type)).Inc()
	}
	if !msg.Time.IsZero() {
		lastBatchGauge.WithLabelValues(msg.Topic).Set(float64(msg.Time.Unix()))
	}
}

func recordDecodeError(topic string) {
	decodeErrorCounter.WithLabelValues(topic).Inc()
}

func recordMalformedSample(topic string) {
	malformedSampleCounter.WithLabelValues(topic).Inc()
}

func recordHandlerError(topic string) {
	handlerErrorCounter.WithLabelValues(topic).Inc()
}
