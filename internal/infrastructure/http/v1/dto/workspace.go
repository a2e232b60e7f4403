package dto

import (
	"time"

	"atelier/internal/domain/workspace"
	"atelier/internal/plan"
	"atelier/internal/tenant"
)

// CreateWorkspaceRequest for onboarding.
type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
	Plan string `json:"plan"`
}

// ChangePlanRequest moves a workspace to another tier.
type ChangePlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// SwitchWorkspaceRequest selects the active workspace.
type SwitchWorkspaceRequest struct {
	WorkspaceID string `json:"workspaceId" binding:"required"`
}

// InviteRequest invites a member.
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

// AcceptInviteRequest redeems an invitation token.
type AcceptInviteRequest struct {
	Token string `json:"token" binding:"required"`
}

// SubscriptionUpdateRequest upserts a subscription from the billing boundary.
type SubscriptionUpdateRequest struct {
	WorkspaceID       string `json:"workspaceId" binding:"required"`
	Status            string `json:"status" binding:"required"`
	CancelAtPeriodEnd bool   `json:"cancelAtPeriodEnd"`
	ExternalCustomer  string `json:"externalCustomerRef"`
	ExternalRef       string `json:"externalSubscriptionRef"`
}

// WorkspaceResponse is the public view of a workspace.
type WorkspaceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      plan.Tier `json:"plan"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromWorkspace builds a WorkspaceResponse.
func FromWorkspace(ws *tenant.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		ID:        ws.ID,
		Name:      ws.Name,
		Plan:      ws.Plan,
		CreatedAt: ws.CreatedAt,
	}
}

// MemberResponse is the public view of a membership.
type MemberResponse struct {
	WorkspaceID   string      `json:"workspaceId"`
	WorkspaceName string      `json:"workspaceName"`
	WorkspacePlan plan.Tier   `json:"workspacePlan"`
	UserID        string      `json:"userId"`
	Role          tenant.Role `json:"role"`
	JoinedAt      time.Time   `json:"joinedAt"`
}

// FromMembership builds a MemberResponse.
func FromMembership(m tenant.Membership) MemberResponse {
	return MemberResponse{
		WorkspaceID:   m.WorkspaceID,
		WorkspaceName: m.WorkspaceName,
		WorkspacePlan: m.WorkspacePlan,
		UserID:        m.UserID,
		Role:          m.Role,
		JoinedAt:      m.CreatedAt,
	}
}

// FromMemberships maps a membership list.
func FromMemberships(ms []tenant.Membership) []MemberResponse {
	out := make([]MemberResponse, len(ms))
	for i, m := range ms {
		out[i] = FromMembership(m)
	}
	return out
}

// InvitationResponse is the public view of an invitation.
type InvitationResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      tenant.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
	CreatedAt time.Time   `json:"createdAt"`
}

// FromInvitation builds an InvitationResponse.
func FromInvitation(inv *workspace.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:        inv.ID.String(),
		Email:     inv.Email,
		Role:      inv.Role,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
	}
}

// InviteResponse pairs the invitation with its one-time token.
type InviteResponse struct {
	Invitation InvitationResponse `json:"invitation"`
	Token      string             `json:"token"`
}
