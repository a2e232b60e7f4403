package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"atelier/internal/core/apperror"
	appctx "atelier/internal/core/context"
	"atelier/internal/entitlement"
	"atelier/internal/guard"
	"atelier/internal/infrastructure/http/v1/dto"
	"atelier/internal/tenant"
	"atelier/pkg/logger"
)

// SessionAudit records the workspace-switch event.
type SessionAudit interface {
	LogEvent(ctx context.Context, workspaceID, action string, details map[string]any) error
}

// SessionHandler serves the SPA bootstrap: one request resolves memberships,
// the active workspace, the subscription and the navigation decision.
type SessionHandler struct {
	*BaseHandler
	sessions *tenant.Manager
	audit    SessionAudit
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *tenant.Manager, audit SessionAudit) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(),
		sessions:    sessions,
		audit:       audit,
	}
}

// Get handles GET /session.
func (h *SessionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	principal := appctx.GetPrincipal(ctx)
	if principal == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}

	sess, err := h.sessions.Load(ctx, principal.UserID)
	if err != nil {
		h.Error(c, apperror.NewInternal(err).WithDetail("stage", "session_load"))
		return
	}

	active := sess.ActiveWorkspace()
	decision := guard.Evaluate(guard.State{
		Authenticated:      true,
		HasAnyWorkspace:    sess.HasAnyWorkspace(),
		SubscriptionActive: sess.ActiveSubscription().IsActive(),
	})

	canCreate, err := h.sessions.CanCreateWorkspace(ctx, principal.UserID)
	if err != nil {
		logger.Warn(ctx, "workspace quota check failed",
			"user_id", principal.UserID,
			"error", err)
		canCreate = false
	}

	resp := dto.SessionResponse{
		Decision:        decision.String(),
		Memberships:     dto.FromMemberships(sess.Memberships()),
		Features:        entitlement.For(principal.IsPlatformAdmin, active).Flags(),
		IsPlatformAdmin: principal.IsPlatformAdmin,
		CanCreate:       canCreate,
	}
	if active != nil {
		ws := dto.FromWorkspace(active)
		resp.ActiveWorkspace = &ws
		resp.Subscription = string(sess.SubscriptionFor(active.ID))
	}

	h.OK(c, resp)
}

// Switch handles POST /session/switch.
func (h *SessionHandler) Switch(c *gin.Context) {
	ctx := c.Request.Context()
	principal := appctx.GetPrincipal(ctx)
	if principal == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}

	var req dto.SwitchWorkspaceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.sessions.Switch(ctx, principal.UserID, req.WorkspaceID); err != nil {
		if errors.Is(err, tenant.ErrNotAMember) {
			h.Error(c, apperror.NewNotAMember(req.WorkspaceID))
			return
		}
		h.Error(c, apperror.NewInternal(err).WithDetail("stage", "workspace_switch"))
		return
	}

	if h.audit != nil {
		if err := h.audit.LogEvent(ctx, req.WorkspaceID, "workspace_switched", map[string]any{
			"user_id": principal.UserID,
		}); err != nil {
			logger.Warn(ctx, "audit record failed",
				"workspace_id", req.WorkspaceID,
				"error", err)
		}
	}

	h.Success(c, "workspace switched")
}
