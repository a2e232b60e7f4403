package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atelier/internal/domain/workspace"
	"atelier/internal/infrastructure/http/v1/dto"
	"atelier/internal/plan"
	"atelier/internal/tenant"
)

// WorkspaceHandler handles workspace lifecycle endpoints.
type WorkspaceHandler struct {
	*BaseHandler
	service *workspace.Service
}

// NewWorkspaceHandler creates a new workspace handler.
func NewWorkspaceHandler(service *workspace.Service) *WorkspaceHandler {
	return &WorkspaceHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Create handles POST /workspaces (onboarding).
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req dto.CreateWorkspaceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ws, err := h.service.Create(c.Request.Context(), workspace.CreateRequest{
		Name: req.Name,
		Plan: plan.Tier(req.Plan),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromWorkspace(ws))
}

// ChangePlan handles PUT /workspaces/:id/plan.
func (h *WorkspaceHandler) ChangePlan(c *gin.Context) {
	var req dto.ChangePlanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ws, err := h.service.ChangePlan(c.Request.Context(), c.Param("id"), plan.Tier(req.Plan))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWorkspace(ws))
}

// Members handles GET /workspaces/:id/members.
func (h *WorkspaceHandler) Members(c *gin.Context) {
	members, err := h.service.Members(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMemberships(members))
}

// RemoveMember handles DELETE /workspaces/:id/members/:userId.
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	if err := h.service.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("userId")); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Invite handles POST /workspaces/:id/invitations.
func (h *WorkspaceHandler) Invite(c *gin.Context) {
	var req dto.InviteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, token, err := h.service.Invite(c.Request.Context(), c.Param("id"), workspace.InviteRequest{
		Email: req.Email,
		Role:  tenant.Role(req.Role),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.InviteResponse{
		Invitation: dto.FromInvitation(inv),
		Token:      token,
	})
}

// Invitations handles GET /workspaces/:id/invitations.
func (h *WorkspaceHandler) Invitations(c *gin.Context) {
	invitations, err := h.service.Invitations(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.InvitationResponse, len(invitations))
	for i := range invitations {
		out[i] = dto.FromInvitation(&invitations[i])
	}
	h.OK(c, out)
}

// AcceptInvite handles POST /invitations/accept.
func (h *WorkspaceHandler) AcceptInvite(c *gin.Context) {
	var req dto.AcceptInviteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	member, err := h.service.Accept(c.Request.Context(), req.Token)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMembership(*member))
}

// UpdateSubscription handles PUT /admin/subscriptions. Platform admin only;
// the billing provider's status string passes through untouched.
func (h *WorkspaceHandler) UpdateSubscription(c *gin.Context) {
	var req dto.SubscriptionUpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sub := &tenant.Subscription{
		WorkspaceID:       req.WorkspaceID,
		Status:            tenant.SubscriptionStatus(req.Status),
		CancelAtPeriodEnd: req.CancelAtPeriodEnd,
		ExternalCustomer:  req.ExternalCustomer,
		ExternalRef:       req.ExternalRef,
	}
	if err := h.service.UpdateSubscriptionStatus(c.Request.Context(), sub); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "subscription updated")
}
