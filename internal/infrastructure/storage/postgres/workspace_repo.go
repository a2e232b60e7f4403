package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain/workspace"
	"atelier/internal/plan"
	"atelier/internal/tenant"
)

// WorkspaceRepo implements workspace.Repository on the shared platform
// tables. These rows define the workspaces themselves, so the scoped layer
// does not apply here.
type WorkspaceRepo struct {
	txm *TxManager
}

// NewWorkspaceRepo creates the workspace repository.
func NewWorkspaceRepo(txm *TxManager) *WorkspaceRepo {
	return &WorkspaceRepo{txm: txm}
}

func (r *WorkspaceRepo) CreateWorkspace(ctx context.Context, ws *tenant.Workspace) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO workspaces (id, name, plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := q.Exec(ctx, query, ws.ID, ws.Name, ws.Plan, ws.CreatedAt, ws.UpdatedAt); err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}
	return nil
}

func (r *WorkspaceRepo) GetWorkspace(ctx context.Context, workspaceID string) (*tenant.Workspace, error) {
	q := r.txm.GetQuerier(ctx)

	query := `
		SELECT id, name, plan, created_at, updated_at
		FROM workspaces WHERE id = $1
	`

	var ws tenant.Workspace
	if err := pgxscan.Get(ctx, q, &ws, query, workspaceID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("workspace", workspaceID)
		}
		return nil, fmt.Errorf("query workspace: %w", err)
	}
	return &ws, nil
}

func (r *WorkspaceRepo) UpdatePlan(ctx context.Context, workspaceID string, tier plan.Tier) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		UPDATE workspaces SET plan = $1, updated_at = now()
		WHERE id = $2
	`

	tag, err := q.Exec(ctx, query, tier, workspaceID)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("workspace", workspaceID)
	}
	return nil
}

func (r *WorkspaceRepo) AddMember(ctx context.Context, m *tenant.Membership) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO workspace_members (workspace_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (workspace_id, user_id) DO NOTHING
	`

	tag, err := q.Exec(ctx, query, m.WorkspaceID, m.UserID, m.Role, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewDuplicate("membership", "user_id", m.UserID)
	}
	return nil
}

func (r *WorkspaceRepo) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	q := r.txm.GetQuerier(ctx)

	query := `DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`

	tag, err := q.Exec(ctx, query, workspaceID, userID)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("membership", userID)
	}
	return nil
}

func (r *WorkspaceRepo) GetMember(ctx context.Context, workspaceID, userID string) (*tenant.Membership, error) {
	q := r.txm.GetQuerier(ctx)

	query := `
		SELECT m.workspace_id, m.user_id, m.role, m.created_at,
		       w.name AS workspace_name, w.plan AS workspace_plan
		FROM workspace_members m
		JOIN workspaces w ON w.id = m.workspace_id
		WHERE m.workspace_id = $1 AND m.user_id = $2
	`

	var m tenant.Membership
	if err := pgxscan.Get(ctx, q, &m, query, workspaceID, userID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("membership", userID)
		}
		return nil, fmt.Errorf("query membership: %w", err)
	}
	return &m, nil
}

func (r *WorkspaceRepo) ListMembers(ctx context.Context, workspaceID string) ([]tenant.Membership, error) {
	q := r.txm.GetQuerier(ctx)

	query := `
		SELECT m.workspace_id, m.user_id, m.role, m.created_at,
		       w.name AS workspace_name, w.plan AS workspace_plan
		FROM workspace_members m
		JOIN workspaces w ON w.id = m.workspace_id
		WHERE m.workspace_id = $1
		ORDER BY m.created_at ASC
	`

	var members []tenant.Membership
	if err := pgxscan.Select(ctx, q, &members, query, workspaceID); err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	return members, nil
}

func (r *WorkspaceRepo) CountMembers(ctx context.Context, workspaceID string) (int64, error) {
	q := r.txm.GetQuerier(ctx)

	query := `SELECT COUNT(*) FROM workspace_members WHERE workspace_id = $1`

	var total int64
	if err := q.QueryRow(ctx, query, workspaceID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return total, nil
}

func (r *WorkspaceRepo) UpsertSubscription(ctx context.Context, sub *tenant.Subscription) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO subscriptions (
			workspace_id, status, cancel_at_period_end,
			external_customer_ref, external_subscription_ref, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (workspace_id) DO UPDATE SET
			status = EXCLUDED.status,
			cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			external_customer_ref = EXCLUDED.external_customer_ref,
			external_subscription_ref = EXCLUDED.external_subscription_ref,
			updated_at = EXCLUDED.updated_at
	`

	_, err := q.Exec(ctx, query,
		sub.WorkspaceID, sub.Status, sub.CancelAtPeriodEnd,
		sub.ExternalCustomer, sub.ExternalRef, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (r *WorkspaceRepo) GetSubscription(ctx context.Context, workspaceID string) (*tenant.Subscription, error) {
	q := r.txm.GetQuerier(ctx)

	query := `
		SELECT workspace_id, status, cancel_at_period_end,
		       external_customer_ref, external_subscription_ref, updated_at
		FROM subscriptions WHERE workspace_id = $1
	`

	var sub tenant.Subscription
	err := pgxscan.Get(ctx, q, &sub, query, workspaceID)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query subscription: %w", err)
	}
	return &sub, nil
}

func (r *WorkspaceRepo) CreateInvitation(ctx context.Context, inv *workspace.Invitation) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO workspace_invitations (
			id, workspace_id, email, role, token_hash,
			invited_by, expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		inv.ID, inv.WorkspaceID, inv.Email, inv.Role, inv.TokenHash,
		inv.InvitedBy, inv.ExpiresAt, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

func (r *WorkspaceRepo) GetInvitationByTokenHash(ctx context.Context, tokenHash string) (*workspace.Invitation, error) {
	q := r.txm.GetQuerier(ctx)

	query := `
		SELECT id, workspace_id, email, role, token_hash,
		       invited_by, expires_at, accepted_at, created_at
		FROM workspace_invitations WHERE token_hash = $1
	`

	var inv workspace.Invitation
	if err := pgxscan.Get(ctx, q, &inv, query, tokenHash); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invitation", "token")
		}
		return nil, fmt.Errorf("query invitation: %w", err)
	}
	return &inv, nil
}

func (r *WorkspaceRepo) MarkInvitationAccepted(ctx context.Context, invitationID id.ID) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		UPDATE workspace_invitations SET accepted_at = now()
		WHERE id = $1 AND accepted_at IS NULL
	`

	tag, err := q.Exec(ctx, query, invitationID)
	if err != nil {
		return fmt.Errorf("mark invitation accepted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("invitation already accepted")
	}
	return nil
}

func (r *WorkspaceRepo) ListInvitations(ctx context.Context, workspaceID string) ([]workspace.Invitation, error) {
	q := r.txm.GetQuerier(ctx)

	query := `
		SELECT id, workspace_id, email, role, token_hash,
		       invited_by, expires_at, accepted_at, created_at
		FROM workspace_invitations
		WHERE workspace_id = $1 AND accepted_at IS NULL AND expires_at > now()
		ORDER BY created_at DESC
	`

	var invitations []workspace.Invitation
	if err := pgxscan.Select(ctx, q, &invitations, query, workspaceID); err != nil {
		return nil, fmt.Errorf("query invitations: %w", err)
	}
	return invitations, nil
}

var _ workspace.Repository = (*WorkspaceRepo)(nil)
