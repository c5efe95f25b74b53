package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/healthshare/internal/domain"
	"example.com/healthshare/internal/persistence/memory"
)

func newTestExporter(t *testing.T, records domain.RecordStore) *Exporter {
	t.Helper()
	return NewExporter(records,
		WithLogger(log.New(testWriter{t}, "", 0)),
		WithClock(func() time.Time {
			return time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
		}),
	)
}

func seedSteps(t *testing.T, store *memory.Store, owner string, count int) {
	t.Helper()
	base := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	batch := make([]domain.HealthRecord, 0, count)
	for i := 0; i < count; i++ {
		batch = append(batch, domain.HealthRecord{
			ID:        fmt.Sprintf("rec-%04d", i),
			OwnerID:   owner,
			Type:      domain.RecordTypeStepCount,
			Value:     float64(i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}
	require.NoError(t, store.WriteRecords(context.Background(), owner, batch))
}

func openArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	entries := make(map[string][]byte, len(zr.File))
	for _, file := range zr.File {
		rc, err := file.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[file.Name] = content
	}
	return entries
}

func TestExportAllPaginatesFullSeries(t *testing.T) {
	store := memory.NewStore()
	// 120 records forces three pages at the fixed page size of 50.
	seedSteps(t, store, "alice", 120)

	archive, err := newTestExporter(t, store).ExportAll(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, archive)

	entries := openArchive(t, archive.Data)
	require.Contains(t, entries, "manifest.json")
	require.Contains(t, entries, "stepCount.json")

	var doc recordDocument
	require.NoError(t, json.Unmarshal(entries["stepCount.json"], &doc))
	require.Len(t, doc.Records, 120)

	var manifest Manifest
	require.NoError(t, json.Unmarshal(entries["manifest.json"], &manifest))
	require.Equal(t, "alice", manifest.OwnerID)
	require.Len(t, manifest.Types, len(domain.AllRecordTypes))
	for _, summary := range manifest.Types {
		require.False(t, summary.Failed)
		if summary.Type == domain.RecordTypeStepCount {
			require.Equal(t, 120, summary.Count)
		} else {
			require.Equal(t, 0, summary.Count)
		}
	}
}

func TestExportAllPartialFailure(t *testing.T) {
	store := memory.NewStore()
	seedSteps(t, store, "bob", 10)

	records := &failingRecordStore{RecordStore: store, failType: domain.RecordTypeDistanceWalkingRunning}
	archive, err := newTestExporter(t, records).ExportAll(context.Background(), "bob")

	var partial *PartialExport
	require.ErrorAs(t, err, &partial)
	require.Equal(t, []domain.RecordType{domain.RecordTypeDistanceWalkingRunning}, partial.Failed)
	require.NotNil(t, archive)

	entries := openArchive(t, archive.Data)
	require.Contains(t, entries, "stepCount.json")
	require.NotContains(t, entries, "distanceWalkingRunning.json")

	var manifest Manifest
	require.NoError(t, json.Unmarshal(entries["manifest.json"], &manifest))
	for _, summary := range manifest.Types {
		if summary.Type == domain.RecordTypeDistanceWalkingRunning {
			require.True(t, summary.Failed)
			require.NotEmpty(t, summary.Error)
		} else {
			require.False(t, summary.Failed)
		}
	}
}

func TestExportAllCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	records := &cancellingRecordStore{cancel: cancel}

	archive, err := newTestExporter(t, records).ExportAll(ctx, "carol")
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, archive)
}

func TestExportAllFilenameStamp(t *testing.T) {
	store := memory.NewStore()

	archive, err := newTestExporter(t, store).ExportAll(context.Background(), "dave")
	require.NoError(t, err)
	require.Equal(t, "healthdata_dave_20260831T120000Z.zip", archive.Filename)
}

type failingRecordStore struct {
	domain.RecordStore
	failType domain.RecordType
}

func (s *failingRecordStore) QueryRecords(ctx context.Context, ownerID string, t domain.RecordType, rng *domain.TimeRange, cursor *domain.Cursor, limit int) ([]domain.HealthRecord, *domain.Cursor, error) {
	if t == s.failType {
		return nil, nil, domain.ErrStoreUnavailable
	}
	return s.RecordStore.QueryRecords(ctx, ownerID, t, rng, cursor, limit)
}

type cancellingRecordStore struct {
	cancel context.CancelFunc
}

func (s *cancellingRecordStore) QueryRecords(context.Context, string, domain.RecordType, *domain.TimeRange, *domain.Cursor, int) ([]domain.HealthRecord, *domain.Cursor, error) {
	s.cancel()
	return nil, nil, context.Canceled
}

func (s *cancellingRecordStore) WriteRecords(context.Context, string, []domain.HealthRecord) error {
	return nil
}

type testWriter struct {
	t *testing.T
}

func (tw testWriter) Write(p []byte) (int, error) {
	tw.t.Log(string(p))
	return len(p), nil
}
