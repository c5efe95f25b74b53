// Package domain defines the core types and store contracts for the
// health-data sharing service.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordType identifies a category of health sample. The values match the
// type names emitted by the device sample source.
type RecordType string

const (
	RecordTypeStepCount              RecordType = "stepCount"
	RecordTypeDistanceWalkingRunning RecordType = "distanceWalkingRunning"
	RecordTypeBasalEnergyBurned      RecordType = "basalEnergyBurned"
	RecordTypeActiveEnergyBurned     RecordType = "activeEnergyBurned"
)

// AllRecordTypes lists every known record type in a stable order.
var AllRecordTypes = []RecordType{
	RecordTypeStepCount,
	RecordTypeDistanceWalkingRunning,
	RecordTypeBasalEnergyBurned,
	RecordTypeActiveEnergyBurned,
}

// ParseRecordType validates a raw type name from a sample payload or request.
func ParseRecordType(raw string) (RecordType, error) {
	for _, t := range AllRecordTypes {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown record type: %q", raw)
}

// HealthRecord is a single immutable time-series sample owned by one user.
// Records are created by ingestion and removed only by the retention sweep
// or an explicit owner action.
type HealthRecord struct {
	ID        string
	OwnerID   string
	Type      RecordType
	Value     float64
	Timestamp time.Time
}

var recordIDNamespace = uuid.MustParse("76c3e9d2-4a1f-4b8e-9e47-2f0d1b5a8c63")

// NewRecordID derives a deterministic id from the measurement itself. The
// sample source re-emits a multi-day lookback window per upload and Kafka
// delivery is at-least-once, so the same measurement arrives more than
// once; identical content must collapse onto one record id for the
// store-level conflict handling to deduplicate it.
func NewRecordID(ownerID string, t RecordType, ts time.Time, value float64) string {
	name := fmt.Sprintf("%s|%s|%d|%g", ownerID, t, ts.UTC().UnixNano(), value)
	return uuid.NewSHA1(recordIDNamespace, []byte(name)).String()
}
