package handlers

import (
	"github.com/gin-gonic/gin"

	"atelier/internal/infrastructure/storage/postgres"
	"atelier/internal/tenant"
)

// AuditHandler exposes the workspace audit trail.
type AuditHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(audit *postgres.AuditService) *AuditHandler {
	return &AuditHandler{
		BaseHandler: NewBaseHandler(),
		audit:       audit,
	}
}

// History handles GET /audit. The trail returned is always the active
// workspace's; there is no way to read another workspace's history.
func (h *AuditHandler) History(c *gin.Context) {
	wsID, err := tenant.RequireWorkspaceID(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	if limit > 500 {
		limit = 500
	}

	entries, err := h.audit.History(c.Request.Context(), wsID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entries)
}
