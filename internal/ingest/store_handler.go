package ingest

import (
	"context"
	"time"

	"example.com/healthshare/internal/domain"
	"example.com/healthshare/internal/observability"
)

// StoreHandler writes decoded sample batches into the record store.
type StoreHandler struct {
	records domain.RecordStore
}

// NewStoreHandler constructs a handler backed by the provided record store.
func NewStoreHandler(records domain.RecordStore) *StoreHandler {
	return &StoreHandler{records: records}
}

// Handle persists the owner's batch in one write.
func (h *StoreHandler) Handle(ctx context.Context, ownerID string, records []domain.HealthRecord) error {
	if err := h.records.WriteRecords(ctx, ownerID, records); err != nil {
		return err
	}
	observability.RecordIngestPersisted(lastTimestamp(records))
	return nil
}

func lastTimestamp(records []domain.HealthRecord) time.Time {
	var latest time.Time
	for _, rec := range records {
		if rec.Timestamp.After(latest) {
			latest = rec.Timestamp
		}
	}
	return latest
}
