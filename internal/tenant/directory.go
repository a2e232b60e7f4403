package tenant

import "context"

// Directory is the read side of the membership and subscription records the
// session depends on. The postgres implementation lives in
// infrastructure/storage.
type Directory interface {
	// ListMemberships returns the principal's memberships with workspace rows
	// joined in, ordered oldest membership first. The order matters: it
	// decides the fallback active workspace.
	ListMemberships(ctx context.Context, userID string) ([]Membership, error)

	// CountOwnedWorkspaces returns how many workspaces the principal owns.
	CountOwnedWorkspaces(ctx context.Context, userID string) (int64, error)

	// SubscriptionStatus returns the workspace's subscription status.
	// SubscriptionNone is returned when no subscription row exists.
	SubscriptionStatus(ctx context.Context, workspaceID string) (SubscriptionStatus, error)
}
