package tenant

import "errors"

var (
	// ErrWorkspaceNotFound is returned when a workspace does not exist.
	ErrWorkspaceNotFound = errors.New("workspace not found")

	// ErrNotAMember is returned by Switch for a workspace id outside the
	// principal's membership list. Stale client state must surface, not
	// silently succeed.
	ErrNotAMember = errors.New("not a member of workspace")

	// ErrNoActiveWorkspace is returned when an operation requires an active
	// workspace and the principal has none.
	ErrNoActiveWorkspace = errors.New("no active workspace")

	// ErrSessionNotLoaded is returned when a session is consulted before Load.
	ErrSessionNotLoaded = errors.New("tenant session not loaded")
)
