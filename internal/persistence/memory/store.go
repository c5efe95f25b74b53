// Package memory provides a mutex-guarded in-memory implementation of the
// store contracts, used by unit tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"example.com/healthshare/internal/domain"
)

// Store implements ProfileStore, SettingsStore, and RecordStore over plain
// maps. Profile order is insertion order, standing in for the backing
// store's opaque query order.
type Store struct {
	mu           sync.RWMutex
	profiles     map[string]domain.UserProfile
	profileOrder []string
	settings     map[string]domain.SharingSettings
	records      map[string][]domain.HealthRecord
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		profiles: make(map[string]domain.UserProfile),
		settings: make(map[string]domain.SharingSettings),
		records:  make(map[string][]domain.HealthRecord),
	}
}

func settingsKey(ownerID, groupID string) string {
	return ownerID + "\x00" + groupID
}

func recordsKey(ownerID string, t domain.RecordType) string {
	return ownerID + "\x00" + string(t)
}

// PutProfile inserts or replaces a profile.
func (s *Store) PutProfile(profile domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[profile.ID]; !exists {
		s.profileOrder = append(s.profileOrder, profile.ID)
	}
	s.profiles[profile.ID] = profile
}

// ProfilesByGroupAndRole returns matching profiles in insertion order.
func (s *Store) ProfilesByGroupAndRole(_ context.Context, groupID string, role domain.Role) ([]domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserProfile, 0)
	for _, id := range s.profileOrder {
		profile := s.profiles[id]
		if profile.Role == role && profile.InGroup(groupID) {
			out = append(out, profile)
		}
	}
	return out, nil
}

// Profile returns nil when the id is unknown.
func (s *Store) Profile(_ context.Context, userID string) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

// UpdateProfile overwrites the admin-editable fields of an existing profile.
func (s *Store) UpdateProfile(_ context.Context, userID string, update domain.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil
	}
	profile.Role = update.Role
	profile.Groups = append([]string(nil), update.Groups...)
	s.profiles[userID] = profile
	return nil
}

// Settings returns nil when no document exists for the pair.
func (s *Store) Settings(_ context.Context, ownerID, groupID string) (*domain.SharingSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings, ok := s.settings[settingsKey(ownerID, groupID)]
	if !ok {
		return nil, nil
	}
	return &settings, nil
}

// SaveSettings upserts the settings document. Settings are never deleted.
func (s *Store) SaveSettings(_ context.Context, settings domain.SharingSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[settingsKey(settings.OwnerID, settings.GroupID)] = settings
	return nil
}

// WriteRecords appends a batch, keeping each (owner, type) series sorted
// newest first to mirror the Postgres query order. Re-inserting an existing
// record id is a no-op, matching the Postgres conflict handling.
func (s *Store) WriteRecords(_ context.Context, ownerID string, records []domain.HealthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	touched := make(map[string]struct{})
	for _, rec := range records {
		key := recordsKey(ownerID, rec.Type)
		if containsID(s.records[key], rec.ID) {
			continue
		}
		s.records[key] = append(s.records[key], rec)
		touched[key] = struct{}{}
	}
	for key := range touched {
		series := s.records[key]
		sort.Slice(series, func(i, j int) bool {
			if !series[i].Timestamp.Equal(series[j].Timestamp) {
				return series[i].Timestamp.After(series[j].Timestamp)
			}
			return series[i].ID > series[j].ID
		})
		s.records[key] = series
	}
	return nil
}

// QueryRecords pages through one owner's series newest first, honouring the
// optional time range and cursor.
func (s *Store) QueryRecords(_ context.Context, ownerID string, t domain.RecordType, rng *domain.TimeRange, cursor *domain.Cursor, limit int) ([]domain.HealthRecord, *domain.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.HealthRecord, 0, limit)
	for _, rec := range s.records[recordsKey(ownerID, t)] {
		if rng != nil && !rng.Contains(rec.Timestamp) {
			continue
		}
		if cursor != nil && !beforeCursor(rec, cursor) {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}

	var next *domain.Cursor
	if len(out) == limit && limit > 0 {
		last := out[len(out)-1]
		next = &domain.Cursor{Timestamp: last.Timestamp, ID: last.ID}
	}
	return out, next, nil
}

func containsID(series []domain.HealthRecord, id string) bool {
	for _, rec := range series {
		if rec.ID == id {
			return true
		}
	}
	return false
}

// beforeCursor reports whether rec sorts strictly after the cursor position
// in the newest-first order, i.e. (ts, id) < (cursor.ts, cursor.id).
func beforeCursor(rec domain.HealthRecord, cursor *domain.Cursor) bool {
	if rec.Timestamp.Equal(cursor.Timestamp) {
		return rec.ID < cursor.ID
	}
	return rec.Timestamp.Before(cursor.Timestamp)
}
