package workspace

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"atelier/internal/core/apperror"
	appctx "atelier/internal/core/context"
	"atelier/internal/core/id"
	"atelier/internal/core/tx"
	"atelier/internal/entitlement"
	"atelier/internal/plan"
	"atelier/internal/tenant"
	"atelier/pkg/logger"
)

// Tenancy is the slice of the session manager the service needs: quota
// checks before onboarding and cache invalidation after membership changes.
type Tenancy interface {
	CanCreateWorkspace(ctx context.Context, userID string) (bool, error)
	Invalidate(userID string)
}

// AuditRecorder records tenancy events. Recording failures are logged and
// swallowed: an audit miss never fails the operation it describes.
type AuditRecorder interface {
	LogEvent(ctx context.Context, workspaceID, action string, details map[string]any) error
}

const invitationTTL = 7 * 24 * time.Hour

// Service provides workspace lifecycle operations.
type Service struct {
	repo      Repository
	txManager tx.Manager
	tenancy   Tenancy
	audit     AuditRecorder
}

// NewService creates a new workspace service.
func NewService(repo Repository, txManager tx.Manager, tenancy Tenancy, audit AuditRecorder) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		tenancy:   tenancy,
		audit:     audit,
	}
}

// Create onboards a new workspace: the workspace row, the creator's owner
// membership and an incomplete subscription are written in one transaction.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*tenant.Workspace, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	principal := appctx.GetPrincipal(ctx)
	if principal == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}

	allowed, err := s.tenancy.CanCreateWorkspace(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("check workspace quota: %w", err)
	}
	if !allowed {
		limits := plan.LimitsFor(plan.TierStarter)
		if active := tenant.GetWorkspace(ctx); active != nil {
			limits = plan.LimitsFor(active.Plan)
		}
		return nil, apperror.NewPlanLimitReached("workspaces", int64(limits.MaxWorkspacesPerOwner))
	}

	tier := req.Plan
	if tier == "" {
		tier = plan.TierStarter
	}

	now := time.Now().UTC()
	ws := &tenant.Workspace{
		ID:        id.New().String(),
		Name:      req.Name,
		Plan:      tier,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateWorkspace(ctx, ws); err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
		member := &tenant.Membership{
			WorkspaceID: ws.ID,
			UserID:      principal.UserID,
			Role:        tenant.RoleOwner,
			CreatedAt:   now,
		}
		if err := s.repo.AddMember(ctx, member); err != nil {
			return fmt.Errorf("add owner membership: %w", err)
		}
		sub := &tenant.Subscription{
			WorkspaceID: ws.ID,
			Status:      tenant.SubscriptionIncomplete,
			UpdatedAt:   now,
		}
		if err := s.repo.UpsertSubscription(ctx, sub); err != nil {
			return fmt.Errorf("create subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.tenancy.Invalidate(principal.UserID)
	s.recordEvent(ctx, ws.ID, "workspace_created", map[string]any{
		"name": ws.Name,
		"plan": ws.Plan,
	})

	logger.Info(ctx, "workspace created",
		"workspace_id", ws.ID,
		"plan", ws.Plan,
		"owner", principal.UserID)

	return ws, nil
}

// ChangePlan moves the workspace to another tier. Owners change their own
// workspace; platform admins change any.
func (s *Service) ChangePlan(ctx context.Context, workspaceID string, tier plan.Tier) (*tenant.Workspace, error) {
	if !tier.Valid() {
		return nil, apperror.NewValidation("unknown plan tier").WithDetail("plan", string(tier))
	}

	if err := s.requireOwnerOrAdmin(ctx, workspaceID); err != nil {
		return nil, err
	}

	ws, err := s.repo.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if ws.Plan == tier {
		return ws, nil
	}

	previous := ws.Plan
	if err := s.repo.UpdatePlan(ctx, workspaceID, tier); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}
	ws.Plan = tier

	// Members see the new tier on their next session load.
	s.invalidateMembers(ctx, workspaceID)
	s.recordEvent(ctx, workspaceID, "plan_changed", map[string]any{
		"from": previous,
		"to":   tier,
	})

	logger.Info(ctx, "plan changed",
		"workspace_id", workspaceID,
		"from", previous,
		"to", tier)

	return ws, nil
}

// Members returns the workspace's memberships.
func (s *Service) Members(ctx context.Context, workspaceID string) ([]tenant.Membership, error) {
	if err := s.requireMember(ctx, workspaceID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, workspaceID)
}

// RemoveMember removes a member. Owners cannot remove themselves.
func (s *Service) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	if err := s.requireOwnerOrAdmin(ctx, workspaceID); err != nil {
		return err
	}

	member, err := s.repo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if member.Role == tenant.RoleOwner {
		return apperror.NewValidation("the workspace owner cannot be removed")
	}

	if err := s.repo.RemoveMember(ctx, workspaceID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	s.tenancy.Invalidate(userID)
	s.recordEvent(ctx, workspaceID, "member_removed", map[string]any{
		"user_id": userID,
	})
	return nil
}

// Invite creates a member invitation. Requires the invitations feature and a
// free member seat on the workspace's plan.
func (s *Service) Invite(ctx context.Context, workspaceID string, req InviteRequest) (*Invitation, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}
	if err := s.requireOwnerOrAdmin(ctx, workspaceID); err != nil {
		return nil, "", err
	}

	ws, err := s.repo.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, "", err
	}
	ent := entitlement.For(appctx.IsPlatformAdmin(ctx), ws)
	if err := ent.Require(plan.FeatureInvitations); err != nil {
		return nil, "", err
	}
	limits := plan.LimitsFor(ws.Plan)
	if limits.MaxMembers != plan.Unbounded {
		current, err := s.repo.CountMembers(ctx, workspaceID)
		if err != nil {
			return nil, "", fmt.Errorf("count members: %w", err)
		}
		if !limits.MaxMembers.Allows(current) {
			return nil, "", apperror.NewPlanLimitReached("members", int64(limits.MaxMembers))
		}
	}

	token, err := randomToken(32)
	if err != nil {
		return nil, "", fmt.Errorf("generate invitation token: %w", err)
	}

	now := time.Now().UTC()
	inv := &Invitation{
		ID:          id.New(),
		WorkspaceID: workspaceID,
		Email:       req.Email,
		Role:        req.Role,
		TokenHash:   hashToken(token),
		InvitedBy:   appctx.GetUserID(ctx),
		ExpiresAt:   now.Add(invitationTTL),
		CreatedAt:   now,
	}

	if err := s.repo.CreateInvitation(ctx, inv); err != nil {
		return nil, "", fmt.Errorf("create invitation: %w", err)
	}

	s.recordEvent(ctx, workspaceID, "invitation_sent", map[string]any{
		"email": req.Email,
		"role":  req.Role,
	})

	// The raw token goes to the invitee out of band; only the hash is stored.
	return inv, token, nil
}

// Accept redeems an invitation token for the authenticated user.
func (s *Service) Accept(ctx context.Context, token string) (*tenant.Membership, error) {
	principal := appctx.GetPrincipal(ctx)
	if principal == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}

	inv, err := s.repo.GetInvitationByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, apperror.NewNotFound("invitation", "token")
	}
	if !inv.IsOpen() {
		return nil, apperror.NewValidation("invitation has expired or was already used")
	}

	member := &tenant.Membership{
		WorkspaceID: inv.WorkspaceID,
		UserID:      principal.UserID,
		Role:        inv.Role,
		CreatedAt:   time.Now().UTC(),
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.AddMember(ctx, member); err != nil {
			return fmt.Errorf("add member: %w", err)
		}
		if err := s.repo.MarkInvitationAccepted(ctx, inv.ID); err != nil {
			return fmt.Errorf("mark invitation accepted: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.tenancy.Invalidate(principal.UserID)
	s.recordEvent(ctx, inv.WorkspaceID, "member_added", map[string]any{
		"user_id": principal.UserID,
		"role":    inv.Role,
	})

	return member, nil
}

// Invitations lists the workspace's open invitations.
func (s *Service) Invitations(ctx context.Context, workspaceID string) ([]Invitation, error) {
	if err := s.requireOwnerOrAdmin(ctx, workspaceID); err != nil {
		return nil, err
	}
	return s.repo.ListInvitations(ctx, workspaceID)
}

// UpdateSubscriptionStatus upserts the subscription row from the billing
// boundary. The status string passes through untouched.
func (s *Service) UpdateSubscriptionStatus(ctx context.Context, sub *tenant.Subscription) error {
	if sub.WorkspaceID == "" {
		return apperror.NewValidation("workspace id is required").WithDetail("field", "workspaceId")
	}
	sub.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpsertSubscription(ctx, sub); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}

	s.invalidateMembers(ctx, sub.WorkspaceID)
	s.recordEvent(ctx, sub.WorkspaceID, "subscription_updated", map[string]any{
		"status": sub.Status,
	})
	return nil
}

// requireMember checks that the caller belongs to the workspace. Platform
// admins pass.
func (s *Service) requireMember(ctx context.Context, workspaceID string) error {
	if appctx.IsPlatformAdmin(ctx) {
		return nil
	}
	principal := appctx.GetPrincipal(ctx)
	if principal == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	if _, err := s.repo.GetMember(ctx, workspaceID, principal.UserID); err != nil {
		return apperror.NewNotAMember(workspaceID)
	}
	return nil
}

// requireOwnerOrAdmin checks that the caller owns or administers the
// workspace. Platform admins pass.
func (s *Service) requireOwnerOrAdmin(ctx context.Context, workspaceID string) error {
	if appctx.IsPlatformAdmin(ctx) {
		return nil
	}
	principal := appctx.GetPrincipal(ctx)
	if principal == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	member, err := s.repo.GetMember(ctx, workspaceID, principal.UserID)
	if err != nil {
		return apperror.NewNotAMember(workspaceID)
	}
	if member.Role != tenant.RoleOwner && member.Role != tenant.RoleAdmin {
		return apperror.NewForbidden("owner or admin role required")
	}
	return nil
}

// invalidateMembers drops cached sessions for everyone in the workspace so
// plan and subscription changes are observed on the next load.
func (s *Service) invalidateMembers(ctx context.Context, workspaceID string) {
	members, err := s.repo.ListMembers(ctx, workspaceID)
	if err != nil {
		logger.Warn(ctx, "list members for invalidation failed",
			"workspace_id", workspaceID,
			"error", err)
		return
	}
	for _, m := range members {
		s.tenancy.Invalidate(m.UserID)
	}
}

func (s *Service) recordEvent(ctx context.Context, workspaceID, action string, details map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogEvent(ctx, workspaceID, action, details); err != nil {
		logger.Warn(ctx, "audit record failed",
			"workspace_id", workspaceID,
			"action", action,
			"error", err)
	}
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func randomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
