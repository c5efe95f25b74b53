package domain

import "time"

// AnonymousDisplayName is shown for anonymous owners who did not pick an
// override name.
const AnonymousDisplayName = "Anonymous User"

// SharingSettings is the per-(owner, group) sharing policy document.
// Settings are only ever overwritten by the owning user, never deleted.
type SharingSettings struct {
	OwnerID string
	GroupID string

	// IsAnonymous hides the owner's real name from the group.
	IsAnonymous bool
	// DisplayNameOverride is the name shown while anonymous. Empty means
	// the generic anonymous placeholder.
	DisplayNameOverride string
	// DeletionDate excludes records at or after this instant from shared
	// views. Nil means no cutoff.
	DeletionDate *time.Time
	// Visibility toggles sharing per record type. A type missing from the
	// map is visible; only an explicit false hides it.
	Visibility map[RecordType]bool
}

// DefaultSettings is the open-by-default policy used when no settings
// document exists for an (owner, group) pair: every type visible, real name
// shown, no deletion cutoff.
func DefaultSettings(ownerID, groupID string) SharingSettings {
	visibility := make(map[RecordType]bool, len(AllRecordTypes))
	for _, t := range AllRecordTypes {
		visibility[t] = true
	}
	return SharingSettings{
		OwnerID:    ownerID,
		GroupID:    groupID,
		Visibility: visibility,
	}
}

// TypeVisible reports whether records of the given type may be shared.
func (s SharingSettings) TypeVisible(t RecordType) bool {
	if s.Visibility == nil {
		return true
	}
	visible, ok := s.Visibility[t]
	if !ok {
		return true
	}
	return visible
}

// VisibleTypes returns the shareable record types in catalog order.
func (s SharingSettings) VisibleTypes() []RecordType {
	out := make([]RecordType, 0, len(AllRecordTypes))
	for _, t := range AllRecordTypes {
		if s.TypeVisible(t) {
			out = append(out, t)
		}
	}
	return out
}

// ResolveDisplayName picks the identity shown to the group for this owner.
func (s SharingSettings) ResolveDisplayName(profile UserProfile) string {
	if s.IsAnonymous {
		if s.DisplayNameOverride != "" {
			return s.DisplayNameOverride
		}
		return AnonymousDisplayName
	}
	if profile.DisplayName == "" {
		return PlaceholderDisplayName
	}
	return profile.DisplayName
}
