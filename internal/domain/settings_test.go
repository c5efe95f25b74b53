package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestDefaultSettingsAreOpen(t *testing.T) {
	settings := DefaultSettings("alice", "family")

	require.False(t, settings.IsAnonymous)
	require.Nil(t, settings.DeletionDate)
	for _, recordType := range AllRecordTypes {
		require.True(t, settings.TypeVisible(recordType))
	}
	require.Len(t, settings.VisibleTypes(), len(AllRecordTypes))
}

func TestTypeVisibleOnlyExplicitFalseHides(t *testing.T) {
	settings := SharingSettings{
		Visibility: map[RecordType]bool{
			RecordTypeStepCount: false,
		},
	}

	require.False(t, settings.TypeVisible(RecordTypeStepCount))
	// Types absent from the map stay visible.
	require.True(t, settings.TypeVisible(RecordTypeActiveEnergyBurned))

	var unset SharingSettings
	require.True(t, unset.TypeVisible(RecordTypeStepCount))
}

func TestResolveDisplayName(t *testing.T) {
	profile := UserProfile{ID: "bob", DisplayName: "Bob"}

	require.Equal(t, "Bob", SharingSettings{}.ResolveDisplayName(profile))
	require.Equal(t, PlaceholderDisplayName, SharingSettings{}.ResolveDisplayName(UserProfile{ID: "ghost"}))
	require.Equal(t, AnonymousDisplayName, SharingSettings{IsAnonymous: true}.ResolveDisplayName(profile))
	require.Equal(t, "B2", SharingSettings{IsAnonymous: true, DisplayNameOverride: "B2"}.ResolveDisplayName(profile))

	// The override is ignored while not anonymous.
	require.Equal(t, "Bob", SharingSettings{DisplayNameOverride: "B2"}.ResolveDisplayName(profile))
}

func TestParseRecordType(t *testing.T) {
	for _, recordType := range AllRecordTypes {
		parsed, err := ParseRecordType(string(recordType))
		require.NoError(t, err)
		require.Equal(t, recordType, parsed)
	}

	_, err := ParseRecordType("heartRate")
	require.Error(t, err)
}

func TestParseRole(t *testing.T) {
	for _, role := range []Role{RoleSelf, RoleSharedPeer, RoleBlocked} {
		parsed, err := ParseRole(string(role))
		require.NoError(t, err)
		require.Equal(t, role, parsed)
	}

	_, err := ParseRole("admin")
	require.Error(t, err)
}

func TestTimeRangeHalfOpen(t *testing.T) {
	rng := TimeRange{
		Start: mustTime(t, "2026-08-30T00:00:00Z"),
		End:   mustTime(t, "2026-08-31T00:00:00Z"),
	}

	require.True(t, rng.Contains(rng.Start))
	require.True(t, rng.Contains(rng.End.Add(-1)))
	require.False(t, rng.Contains(rng.End))
	require.False(t, rng.Contains(rng.Start.Add(-1)))
}
