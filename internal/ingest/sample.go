package ingest

import (
	"fmt"
	"time"

	"example.com/healthshare/internal/domain"
)

// Sample is one device health measurement as emitted by the sample source.
// The device uploads a bounded lookback window (typically the last 2-3
// days) per message.
type Sample struct {
	Type      string    `json:"type"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// toRecord validates the sample and mints an immutable record for it. The
// id is derived from the sample content so redelivered uploads collapse
// onto the same record.
func (s Sample) toRecord(ownerID string) (domain.HealthRecord, error) {
	recType, err := domain.ParseRecordType(s.Type)
	if err != nil {
		return domain.HealthRecord{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	if s.Timestamp.IsZero() {
		return domain.HealthRecord{}, fmt.Errorf("%w: missing timestamp", domain.ErrMalformedRecord)
	}
	ts := s.Timestamp.UTC()
	return domain.HealthRecord{
		ID:        domain.NewRecordID(ownerID, recType, ts, s.Value),
		OwnerID:   ownerID,
		Type:      recType,
		Value:     s.Value,
		Timestamp: ts,
	}, nil
}
