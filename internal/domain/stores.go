package domain

import (
	"context"
	"time"
)

// Cursor models the opaque pagination position for record queries, keyed on
// (timestamp, record id) descending.
type Cursor struct {
	Timestamp time.Time
	ID        string
}

// TimeRange bounds a record query to Timestamp in [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts falls inside the half-open range.
func (r TimeRange) Contains(ts time.Time) bool {
	return !ts.Before(r.Start) && ts.Before(r.End)
}

// ProfileStore reads and administers user profiles.
type ProfileStore interface {
	// ProfilesByGroupAndRole returns every profile tagged with the group
	// and role, in store order.
	ProfilesByGroupAndRole(ctx context.Context, groupID string, role Role) ([]UserProfile, error)
	// Profile returns nil when no profile exists for the id.
	Profile(ctx context.Context, userID string) (*UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error
}

// SettingsStore reads and writes per-(owner, group) sharing settings.
type SettingsStore interface {
	// Settings returns nil when no document exists; callers synthesize
	// DefaultSettings in that case.
	Settings(ctx context.Context, ownerID, groupID string) (*SharingSettings, error)
	SaveSettings(ctx context.Context, settings SharingSettings) error
}

// RecordStore reads and writes per-owner, per-type health records.
type RecordStore interface {
	// QueryRecords pages through one owner's records of one type, newest
	// first. A nil rng means all time; a nil cursor starts from the top.
	// The returned cursor is nil once the result set is exhausted.
	QueryRecords(ctx context.Context, ownerID string, t RecordType, rng *TimeRange, cursor *Cursor, limit int) ([]HealthRecord, *Cursor, error)
	// WriteRecords persists a batch of records for one owner.
	WriteRecords(ctx context.Context, ownerID string, records []HealthRecord) error
}
