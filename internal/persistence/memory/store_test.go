package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/healthshare/internal/domain"
)

func TestQueryRecordsNewestFirstPagination(t *testing.T) {
	store := NewStore()
	base := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

	batch := make([]domain.HealthRecord, 0, 5)
	for i := 0; i < 5; i++ {
		batch = append(batch, domain.HealthRecord{
			ID:        fmt.Sprintf("rec-%d", i),
			OwnerID:   "alice",
			Type:      domain.RecordTypeStepCount,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
	}
	require.NoError(t, store.WriteRecords(context.Background(), "alice", batch))

	var (
		all    []domain.HealthRecord
		cursor *domain.Cursor
		pages  int
	)
	for {
		page, next, err := store.QueryRecords(context.Background(), "alice", domain.RecordTypeStepCount, nil, cursor, 2)
		require.NoError(t, err)
		all = append(all, page...)
		pages++
		if next == nil {
			break
		}
		cursor = next
	}

	require.Len(t, all, 5)
	require.Equal(t, "rec-4", all[0].ID)
	require.Equal(t, "rec-0", all[4].ID)
	require.Equal(t, 3, pages)
}

func TestQueryRecordsTieBreakOnID(t *testing.T) {
	store := NewStore()
	ts := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.WriteRecords(context.Background(), "bob", []domain.HealthRecord{
		{ID: "a", OwnerID: "bob", Type: domain.RecordTypeStepCount, Timestamp: ts},
		{ID: "b", OwnerID: "bob", Type: domain.RecordTypeStepCount, Timestamp: ts},
		{ID: "c", OwnerID: "bob", Type: domain.RecordTypeStepCount, Timestamp: ts},
	}))

	page1, next, err := store.QueryRecords(context.Background(), "bob", domain.RecordTypeStepCount, nil, nil, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b"}, []string{page1[0].ID, page1[1].ID})
	require.NotNil(t, next)

	page2, _, err := store.QueryRecords(context.Background(), "bob", domain.RecordTypeStepCount, nil, next, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	require.Equal(t, "a", page2[0].ID)
}

func TestQueryRecordsHonoursRange(t *testing.T) {
	store := NewStore()
	base := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.WriteRecords(context.Background(), "carol", []domain.HealthRecord{
		{ID: "in", OwnerID: "carol", Type: domain.RecordTypeStepCount, Timestamp: base.Add(time.Hour)},
		{ID: "at-end", OwnerID: "carol", Type: domain.RecordTypeStepCount, Timestamp: base.Add(2 * time.Hour)},
	}))

	rng := &domain.TimeRange{Start: base, End: base.Add(2 * time.Hour)}
	page, _, err := store.QueryRecords(context.Background(), "carol", domain.RecordTypeStepCount, rng, nil, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "in", page[0].ID)
}

func TestWriteRecordsIgnoresDuplicateIDs(t *testing.T) {
	store := NewStore()
	ts := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

	batch := []domain.HealthRecord{
		{ID: "rec-1", OwnerID: "erin", Type: domain.RecordTypeStepCount, Value: 100, Timestamp: ts},
	}
	require.NoError(t, store.WriteRecords(context.Background(), "erin", batch))
	require.NoError(t, store.WriteRecords(context.Background(), "erin", batch))

	page, _, err := store.QueryRecords(context.Background(), "erin", domain.RecordTypeStepCount, nil, nil, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, 100.0, page[0].Value)
}

func TestUpdateProfileUnknownIsNoop(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.UpdateProfile(context.Background(), "nobody", domain.ProfileUpdate{Role: domain.RoleBlocked}))

	profile, err := store.Profile(context.Background(), "nobody")
	require.NoError(t, err)
	require.Nil(t, profile)
}

func TestSaveSettingsUpserts(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.SaveSettings(context.Background(), domain.SharingSettings{OwnerID: "dave", GroupID: "family", IsAnonymous: true}))
	require.NoError(t, store.SaveSettings(context.Background(), domain.SharingSettings{OwnerID: "dave", GroupID: "family"}))

	stored, err := store.Settings(context.Background(), "dave", "family")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.False(t, stored.IsAnonymous)
}
