// Package tenant maintains the principal's workspace memberships and the
// single active workspace. Workspaces share one database; isolation is
// enforced row-by-row through the scoped storage layer, keyed by the active
// workspace resolved here.
package tenant

import (
	"time"

	"atelier/internal/plan"
)

// Role is the principal's role within a workspace.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// SubscriptionStatus mirrors the billing provider's status string. The value
// is pass-through: nothing here interprets it beyond the active check.
type SubscriptionStatus string

const (
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
	SubscriptionTrialing   SubscriptionStatus = "trialing"
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"

	// SubscriptionNone marks the absence of a subscription row.
	// Absence never counts as active.
	SubscriptionNone SubscriptionStatus = ""
)

// IsActive reports whether the status satisfies "has active subscription".
// Only active and trialing qualify.
func (s SubscriptionStatus) IsActive() bool {
	return s == SubscriptionActive || s == SubscriptionTrialing
}

// Workspace is an isolated customer account: the unit of billing and data
// partitioning.
type Workspace struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Plan      plan.Tier `db:"plan"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Membership is the (principal, workspace, role) relation granting access.
// The workspace row is joined in so session loads need a single query.
type Membership struct {
	WorkspaceID string    `db:"workspace_id"`
	UserID      string    `db:"user_id"`
	Role        Role      `db:"role"`
	CreatedAt   time.Time `db:"created_at"`

	WorkspaceName string    `db:"workspace_name"`
	WorkspacePlan plan.Tier `db:"workspace_plan"`
}

// Workspace builds the workspace view carried by this membership.
func (m Membership) Workspace() Workspace {
	return Workspace{
		ID:   m.WorkspaceID,
		Name: m.WorkspaceName,
		Plan: m.WorkspacePlan,
	}
}

// Subscription is the 1:1 billing record for a workspace. External reference
// ids are opaque strings owned by the payment provider.
type Subscription struct {
	WorkspaceID       string             `db:"workspace_id"`
	Status            SubscriptionStatus `db:"status"`
	CancelAtPeriodEnd bool               `db:"cancel_at_period_end"`
	ExternalCustomer  string             `db:"external_customer_ref"`
	ExternalRef       string             `db:"external_subscription_ref"`
	UpdatedAt         time.Time          `db:"updated_at"`
}
