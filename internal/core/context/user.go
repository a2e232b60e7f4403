// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Principal contains the authenticated user identity.
//
// Workspace memberships are deliberately absent here: they are loaded fresh
// per request by the tenant session so a revoked membership takes effect
// immediately instead of surviving in a stale token.
type Principal struct {
	UserID          string
	Email           string
	IsPlatformAdmin bool
	SessionID       string
}

type principalKey struct{}

// WithPrincipal adds Principal to context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// GetPrincipal returns Principal from context or nil when unauthenticated.
func GetPrincipal(ctx context.Context) *Principal {
	if v, ok := ctx.Value(principalKey{}).(*Principal); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if p := GetPrincipal(ctx); p != nil {
		return p.UserID
	}
	return ""
}

// IsPlatformAdmin reports whether the current principal holds the cross-tenant
// platform role. This axis is independent of workspace membership.
func IsPlatformAdmin(ctx context.Context) bool {
	if p := GetPrincipal(ctx); p != nil {
		return p.IsPlatformAdmin
	}
	return false
}
