package workspace

import (
	"context"

	"atelier/internal/core/id"
	"atelier/internal/plan"
	"atelier/internal/tenant"
)

// Repository defines storage operations for workspaces, memberships,
// subscriptions and invitations on the shared platform tables.
type Repository interface {
	// CreateWorkspace inserts a new workspace row.
	CreateWorkspace(ctx context.Context, ws *tenant.Workspace) error

	// GetWorkspace retrieves a workspace by id.
	GetWorkspace(ctx context.Context, workspaceID string) (*tenant.Workspace, error)

	// UpdatePlan changes the workspace's plan tier.
	UpdatePlan(ctx context.Context, workspaceID string, tier plan.Tier) error

	// AddMember inserts a membership row.
	AddMember(ctx context.Context, m *tenant.Membership) error

	// RemoveMember deletes a membership row.
	RemoveMember(ctx context.Context, workspaceID, userID string) error

	// GetMember retrieves one membership.
	GetMember(ctx context.Context, workspaceID, userID string) (*tenant.Membership, error)

	// ListMembers returns the workspace's memberships, oldest first.
	ListMembers(ctx context.Context, workspaceID string) ([]tenant.Membership, error)

	// CountMembers returns the number of members in the workspace.
	CountMembers(ctx context.Context, workspaceID string) (int64, error)

	// UpsertSubscription inserts or replaces the workspace's subscription row.
	UpsertSubscription(ctx context.Context, sub *tenant.Subscription) error

	// GetSubscription retrieves the workspace's subscription, or nil when
	// no row exists.
	GetSubscription(ctx context.Context, workspaceID string) (*tenant.Subscription, error)

	// CreateInvitation inserts an invitation row.
	CreateInvitation(ctx context.Context, inv *Invitation) error

	// GetInvitationByTokenHash retrieves an invitation by its token hash.
	GetInvitationByTokenHash(ctx context.Context, tokenHash string) (*Invitation, error)

	// MarkInvitationAccepted stamps the invitation as accepted.
	MarkInvitationAccepted(ctx context.Context, invitationID id.ID) error

	// ListInvitations returns the workspace's open invitations.
	ListInvitations(ctx context.Context, workspaceID string) ([]Invitation, error)
}
