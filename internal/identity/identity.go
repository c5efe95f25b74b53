// Package identity resolves the acting user for a request. Callers depend on
// the Provider interface rather than reading token claims directly, so tests
// and batch jobs can substitute a fixed identity.
package identity

import (
	"context"

	"example.com/healthshare/internal/auth"
)

// Provider reports the authenticated user for the current context.
type Provider interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// ClaimsProvider derives identity from bearer-token claims on the context.
type ClaimsProvider struct{}

// CurrentUserID returns the token subject, if any.
func (ClaimsProvider) CurrentUserID(ctx context.Context) (string, bool) {
	claims, ok := auth.FromContext(ctx)
	if !ok || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// StaticProvider always reports the same user. Useful in tests and offline
// tooling.
type StaticProvider struct {
	UserID string
}

func (p StaticProvider) CurrentUserID(context.Context) (string, bool) {
	return p.UserID, p.UserID != ""
}
