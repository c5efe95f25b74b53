package domain

import "fmt"

// Role classifies how a profile participates in group resolution passes.
type Role string

const (
	// RoleSelf marks the account's own profile, resolved by the
	// self-aggregation pass.
	RoleSelf Role = "self"
	// RoleSharedPeer marks other members whose data is visible through
	// group sharing.
	RoleSharedPeer Role = "sharedPeer"
	// RoleBlocked excludes a profile from every resolution pass.
	RoleBlocked Role = "blocked"
)

// ParseRole validates a raw role value from a request or stored document.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleSelf, RoleSharedPeer, RoleBlocked:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role: %q", raw)
}

// PlaceholderDisplayName is rendered when a profile has no display name
// stored. A missing name is not an error.
const PlaceholderDisplayName = "Unknown"

// UserProfile describes an account participating in sharing groups.
type UserProfile struct {
	ID          string
	DisplayName string
	Role        Role
	Groups      []string
}

// InGroup reports whether the profile opted into the given group.
func (p UserProfile) InGroup(groupID string) bool {
	for _, g := range p.Groups {
		if g == groupID {
			return true
		}
	}
	return false
}

// ProfileUpdate carries the admin-editable profile fields.
type ProfileUpdate struct {
	Role   Role
	Groups []string
}
