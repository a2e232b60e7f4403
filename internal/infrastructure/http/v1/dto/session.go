package dto

import (
	"atelier/internal/plan"
)

// SessionResponse is the bootstrap payload for the SPA: one round trip gives
// the navigation decision, the membership list, the active workspace and the
// feature flags for the active plan.
type SessionResponse struct {
	Decision        string             `json:"decision"`
	Memberships     []MemberResponse   `json:"memberships"`
	ActiveWorkspace *WorkspaceResponse `json:"activeWorkspace,omitempty"`
	Subscription    string             `json:"subscriptionStatus,omitempty"`
	Features        plan.FlagSet       `json:"features"`
	IsPlatformAdmin bool               `json:"isPlatformAdmin"`
	CanCreate       bool               `json:"canCreateWorkspace"`
}
