package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/healthshare/internal/domain"
	"example.com/healthshare/internal/persistence/memory"
)

func seedSelf(store *memory.Store, id, name, group string) {
	store.PutProfile(domain.UserProfile{
		ID:          id,
		DisplayName: name,
		Role:        domain.RoleSelf,
		Groups:      []string{group},
	})
}

func TestResolveSelfTotalsSumsWindow(t *testing.T) {
	store := memory.NewStore()
	seedSelf(store, "alice", "Alice", "family")

	start := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	require.NoError(t, store.WriteRecords(context.Background(), "alice", []domain.HealthRecord{
		record("at-start", "alice", domain.RecordTypeStepCount, 100, start),
		record("inside", "alice", domain.RecordTypeStepCount, 250, start.Add(6*time.Hour)),
		record("at-end", "alice", domain.RecordTypeStepCount, 999, end),
		record("before", "alice", domain.RecordTypeStepCount, 999, start.Add(-time.Second)),
	}))

	totals, err := newTestResolver(t, store).ResolveSelfTotals(context.Background(), "family", domain.TimeRange{Start: start, End: end})
	require.NoError(t, err)
	require.Len(t, totals, 1)

	// [start, end): the start instant counts, the end instant does not.
	require.Equal(t, 350.0, totals[0].Totals[domain.RecordTypeStepCount])
}

func TestResolveSelfTotalsZeroForEmptyTypes(t *testing.T) {
	store := memory.NewStore()
	seedSelf(store, "bob", "Bob", "family")

	totals, err := newTestResolver(t, store).ResolveSelfTotals(context.Background(), "family", domain.TimeRange{
		Start: time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, totals, 1)
	require.Len(t, totals[0].Totals, len(domain.AllRecordTypes))
	for _, recordType := range domain.AllRecordTypes {
		require.Equal(t, 0.0, totals[0].Totals[recordType])
	}
}

func TestResolveSelfTotalsDefaultTrailingWindow(t *testing.T) {
	store := memory.NewStore()
	seedSelf(store, "carol", "Carol", "family")

	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.WriteRecords(context.Background(), "carol", []domain.HealthRecord{
		record("recent", "carol", domain.RecordTypeActiveEnergyBurned, 80, now.Add(-23*time.Hour)),
		record("stale", "carol", domain.RecordTypeActiveEnergyBurned, 500, now.Add(-25*time.Hour)),
	}))

	resolver := newTestResolver(t, store, WithClock(func() time.Time { return now }))
	totals, err := resolver.ResolveSelfTotals(context.Background(), "family", domain.TimeRange{})
	require.NoError(t, err)
	require.Len(t, totals, 1)
	require.Equal(t, 80.0, totals[0].Totals[domain.RecordTypeActiveEnergyBurned])
}

func TestResolveSelfTotalsIgnoresRetentionCutoff(t *testing.T) {
	store := memory.NewStore()
	seedSelf(store, "dave", "Dave", "family")

	start := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	cutoff := start.Add(-30 * 24 * time.Hour)
	require.NoError(t, store.SaveSettings(context.Background(), domain.SharingSettings{
		OwnerID:      "dave",
		GroupID:      "family",
		DeletionDate: &cutoff,
	}))
	require.NoError(t, store.WriteRecords(context.Background(), "dave", []domain.HealthRecord{
		record("own", "dave", domain.RecordTypeBasalEnergyBurned, 1400, start.Add(time.Hour)),
	}))

	totals, err := newTestResolver(t, store).ResolveSelfTotals(context.Background(), "family", domain.TimeRange{Start: start, End: end})
	require.NoError(t, err)
	require.Len(t, totals, 1)

	// Owners always see their own data; the cutoff only affects shared views.
	require.Equal(t, 1400.0, totals[0].Totals[domain.RecordTypeBasalEnergyBurned])
}

func TestResolveSelfTotalsSkipsHiddenTypes(t *testing.T) {
	store := memory.NewStore()
	seedSelf(store, "erin", "Erin", "family")

	require.NoError(t, store.SaveSettings(context.Background(), domain.SharingSettings{
		OwnerID: "erin",
		GroupID: "family",
		Visibility: map[domain.RecordType]bool{
			domain.RecordTypeStepCount: false,
		},
	}))

	totals, err := newTestResolver(t, store).ResolveSelfTotals(context.Background(), "family", domain.TimeRange{
		Start: time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, totals, 1)
	require.NotContains(t, totals[0].Totals, domain.RecordTypeStepCount)
	require.Contains(t, totals[0].Totals, domain.RecordTypeActiveEnergyBurned)
}

func TestResolveSelfTotalsExcludesPeers(t *testing.T) {
	store := memory.NewStore()
	seedSelf(store, "frank", "Frank", "family")
	seedPeer(store, "gina", "Gina", "family")

	totals, err := newTestResolver(t, store).ResolveSelfTotals(context.Background(), "family", domain.TimeRange{
		Start: time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, totals, 1)
	require.Equal(t, "frank", totals[0].OwnerID)
}
