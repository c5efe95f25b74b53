package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/healthshare/internal/domain"
)

func TestSampleRecordIDIsDeterministic(t *testing.T) {
	sample := Sample{
		Type:      "stepCount",
		Value:     1200,
		Timestamp: time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC),
	}

	first, err := sample.toRecord("alice")
	require.NoError(t, err)
	second, err := sample.toRecord("alice")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	// Any change to the measurement produces a distinct record.
	other, err := Sample{Type: "stepCount", Value: 1201, Timestamp: sample.Timestamp}.toRecord("alice")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, other.ID)

	elsewhere, err := sample.toRecord("bob")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, elsewhere.ID)
}

func TestSampleRejectsMalformedWithSentinel(t *testing.T) {
	_, err := Sample{Type: "heartRate", Value: 70, Timestamp: time.Now()}.toRecord("alice")
	require.ErrorIs(t, err, domain.ErrMalformedRecord)

	_, err = Sample{Type: "stepCount", Value: 10}.toRecord("alice")
	require.ErrorIs(t, err, domain.ErrMalformedRecord)
}
