package tenant

import (
	"context"
	"errors"
)

// Context keys for tenant-related values.
type ctxKey int

const (
	workspaceKey ctxKey = iota
	membershipKey
)

// ErrNoWorkspaceInContext is returned when no workspace was resolved for the
// request. Handlers behind the workspace middleware never see this.
var ErrNoWorkspaceInContext = errors.New("workspace not found in context")

// WithWorkspace stores the active workspace in context.
func WithWorkspace(ctx context.Context, ws *Workspace) context.Context {
	return context.WithValue(ctx, workspaceKey, ws)
}

// GetWorkspace retrieves the active workspace from context, or nil.
func GetWorkspace(ctx context.Context) *Workspace {
	ws, _ := ctx.Value(workspaceKey).(*Workspace)
	return ws
}

// GetWorkspaceID returns the active workspace id or empty string.
func GetWorkspaceID(ctx context.Context) string {
	if ws := GetWorkspace(ctx); ws != nil {
		return ws.ID
	}
	return ""
}

// RequireWorkspaceID returns the active workspace id or an error when absent.
func RequireWorkspaceID(ctx context.Context) (string, error) {
	if id := GetWorkspaceID(ctx); id != "" {
		return id, nil
	}
	return "", ErrNoWorkspaceInContext
}

// WithMembership stores the principal's membership for the active workspace.
func WithMembership(ctx context.Context, m *Membership) context.Context {
	return context.WithValue(ctx, membershipKey, m)
}

// GetMembership retrieves the principal's membership for the active
// workspace, or nil.
func GetMembership(ctx context.Context) *Membership {
	m, _ := ctx.Value(membershipKey).(*Membership)
	return m
}
