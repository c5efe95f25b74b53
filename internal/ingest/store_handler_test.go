package ingest

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/healthshare/internal/domain"
	"example.com/healthshare/internal/persistence/memory"
)

// The device uploads a multi-day lookback window on every sync and Kafka
// delivery is at-least-once, so the same batch routinely arrives more than
// once. A replay must not inflate the stored series.
func TestStoreHandlerRedeliveredBatchWritesOnce(t *testing.T) {
	msg := kafka.Message{
		Topic: "device.samples",
		Key:   []byte("erin"),
		Value: []byte(`[{"type":"stepCount","value":100,"timestamp":"2026-08-30T09:00:00Z"},{"type":"stepCount","value":250,"timestamp":"2026-08-30T10:00:00Z"}]`),
	}

	store := memory.NewStore()
	handler := NewStoreHandler(store)

	for i := 0; i < 2; i++ {
		ownerID, records, err := decodeBatch(msg)
		require.NoError(t, err)
		require.NoError(t, handler.Handle(context.Background(), ownerID, records))
	}

	stored, _, err := store.QueryRecords(context.Background(), "erin", domain.RecordTypeStepCount, nil, nil, 10)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	var total float64
	for _, rec := range stored {
		total += rec.Value
	}
	require.Equal(t, 350.0, total)
}
