package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/healthshare/internal/domain"
)

func TestRecordVisibleBoundary(t *testing.T) {
	cutoff := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)

	require.True(t, RecordVisible(domain.HealthRecord{Timestamp: cutoff.Add(-time.Nanosecond)}, &cutoff))
	require.False(t, RecordVisible(domain.HealthRecord{Timestamp: cutoff}, &cutoff))
	require.False(t, RecordVisible(domain.HealthRecord{Timestamp: cutoff.Add(time.Nanosecond)}, &cutoff))
}

func TestRecordVisibleNilCutoff(t *testing.T) {
	require.True(t, RecordVisible(domain.HealthRecord{Timestamp: time.Now()}, nil))
}

func TestFilterExpiredPreservesOrder(t *testing.T) {
	cutoff := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	records := []domain.HealthRecord{
		{ID: "c", Timestamp: cutoff.Add(-time.Hour)},
		{ID: "d", Timestamp: cutoff.Add(time.Hour)},
		{ID: "a", Timestamp: cutoff.Add(-2 * time.Hour)},
	}

	kept := FilterExpired(records, &cutoff)
	require.Len(t, kept, 2)
	require.Equal(t, "c", kept[0].ID)
	require.Equal(t, "a", kept[1].ID)
}

func TestFilterExpiredIdempotent(t *testing.T) {
	cutoff := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	records := []domain.HealthRecord{
		{ID: "a", Timestamp: cutoff.Add(-time.Hour)},
		{ID: "b", Timestamp: cutoff},
	}

	once := FilterExpired(records, &cutoff)
	twice := FilterExpired(once, &cutoff)
	require.Equal(t, once, twice)
}
