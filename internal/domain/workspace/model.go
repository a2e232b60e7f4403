// Package workspace provides workspace lifecycle logic: onboarding, plan
// changes, membership management and invitations. It operates on the shared
// platform tables, not through the scoped storage layer, because most of its
// operations run before or across workspace scope.
package workspace

import (
	"strings"
	"time"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/plan"
	"atelier/internal/tenant"
)

// Invitation is a pending invite for an email address to join a workspace.
type Invitation struct {
	ID          id.ID       `db:"id" json:"id"`
	WorkspaceID string      `db:"workspace_id" json:"workspaceId"`
	Email       string      `db:"email" json:"email"`
	Role        tenant.Role `db:"role" json:"role"`
	TokenHash   string      `db:"token_hash" json:"-"`
	InvitedBy   string      `db:"invited_by" json:"invitedBy"`
	ExpiresAt   time.Time   `db:"expires_at" json:"expiresAt"`
	AcceptedAt  *time.Time  `db:"accepted_at" json:"acceptedAt,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}

// IsOpen reports whether the invitation can still be accepted.
func (i *Invitation) IsOpen() bool {
	return i.AcceptedAt == nil && time.Now().Before(i.ExpiresAt)
}

// CreateRequest is the onboarding input.
type CreateRequest struct {
	Name string    `json:"name"`
	Plan plan.Tier `json:"plan"`
}

// Validate checks the onboarding input.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperror.NewValidation("workspace name is required").WithDetail("field", "name")
	}
	if len(r.Name) > 120 {
		return apperror.NewValidation("workspace name is too long").WithDetail("field", "name")
	}
	if r.Plan != "" && !r.Plan.Valid() {
		return apperror.NewValidation("unknown plan tier").WithDetail("plan", string(r.Plan))
	}
	return nil
}

// InviteRequest is the member invite input.
type InviteRequest struct {
	Email string      `json:"email"`
	Role  tenant.Role `json:"role"`
}

// Validate checks the invite input.
func (r *InviteRequest) Validate() error {
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return apperror.NewValidation("a valid email is required").WithDetail("field", "email")
	}
	switch r.Role {
	case tenant.RoleAdmin, tenant.RoleMember:
	case "":
		r.Role = tenant.RoleMember
	default:
		return apperror.NewValidation("invitations may grant admin or member roles only").
			WithDetail("role", string(r.Role))
	}
	return nil
}
