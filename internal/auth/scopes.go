package auth

// Known OAuth scopes used by the sharing service.
const (
	ScopeHealthRead    = "health:read"
	ScopeHealthWrite   = "health:write"
	ScopeSettingsWrite = "settings:write"
	ScopeProfilesAdmin = "profiles:admin"
)
