package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"atelier/internal/tenant"
)

// DirectoryRepo implements tenant.Directory on the shared database. It reads
// across workspaces by design: it answers "which workspaces may this user
// enter", which is the question the scoped layer refuses to ask.
type DirectoryRepo struct {
	txm *TxManager
}

// NewDirectoryRepo creates the membership directory.
func NewDirectoryRepo(txm *TxManager) *DirectoryRepo {
	return &DirectoryRepo{txm: txm}
}

// ListMemberships returns the user's memberships with the workspace joined in,
// oldest membership first. The order decides the fallback active workspace.
func (r *DirectoryRepo) ListMemberships(ctx context.Context, userID string) ([]tenant.Membership, error) {
	q := r.txm.GetQuerier(ctx)

	query := `
		SELECT m.workspace_id, m.user_id, m.role, m.created_at,
		       w.name AS workspace_name, w.plan AS workspace_plan
		FROM workspace_members m
		JOIN workspaces w ON w.id = m.workspace_id
		WHERE m.user_id = $1
		ORDER BY m.created_at ASC
	`

	var memberships []tenant.Membership
	if err := pgxscan.Select(ctx, q, &memberships, query, userID); err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	return memberships, nil
}

// CountOwnedWorkspaces returns how many workspaces the user owns.
func (r *DirectoryRepo) CountOwnedWorkspaces(ctx context.Context, userID string) (int64, error) {
	q := r.txm.GetQuerier(ctx)

	query := `
		SELECT COUNT(*) FROM workspace_members
		WHERE user_id = $1 AND role = $2
	`

	var total int64
	if err := q.QueryRow(ctx, query, userID, tenant.RoleOwner).Scan(&total); err != nil {
		return 0, fmt.Errorf("count owned workspaces: %w", err)
	}
	return total, nil
}

// SubscriptionStatus returns the workspace's subscription status, or
// SubscriptionNone when no row exists.
func (r *DirectoryRepo) SubscriptionStatus(ctx context.Context, workspaceID string) (tenant.SubscriptionStatus, error) {
	q := r.txm.GetQuerier(ctx)

	query := `SELECT status FROM subscriptions WHERE workspace_id = $1`

	var status tenant.SubscriptionStatus
	err := q.QueryRow(ctx, query, workspaceID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return tenant.SubscriptionNone, nil
	}
	if err != nil {
		return tenant.SubscriptionNone, fmt.Errorf("query subscription status: %w", err)
	}
	return status, nil
}

var _ tenant.Directory = (*DirectoryRepo)(nil)
