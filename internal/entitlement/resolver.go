// Package entitlement answers "is feature X usable in the active workspace",
// accounting for the platform-administrator override.
package entitlement

import (
	"context"
	"errors"
	"fmt"

	"atelier/internal/core/apperror"
	appctx "atelier/internal/core/context"
	"atelier/internal/plan"
	"atelier/internal/tenant"
)

// ErrUnclassifiedFeature marks a feature missing from the upgrade-tier
// classification. This is a configuration defect caught by tests, never an
// expected runtime condition.
var ErrUnclassifiedFeature = errors.New("feature has no upgrade-tier classification")

// Entitlements is the feature-resolution view for one request.
// Platform administrators resolve every feature as allowed, independent of
// workspace membership. Otherwise the active workspace's tier decides; with
// no active workspace the lowest tier applies.
type Entitlements struct {
	// PlatformAdmin bypasses plan gating entirely.
	PlatformAdmin bool

	// Tier is the effective plan tier for feature decisions.
	Tier plan.Tier
}

// FromContext builds Entitlements from the authenticated principal and the
// active workspace resolved for this request.
func FromContext(ctx context.Context) Entitlements {
	e := Entitlements{Tier: plan.TierStarter}
	if appctx.IsPlatformAdmin(ctx) {
		e.PlatformAdmin = true
	}
	if ws := tenant.GetWorkspace(ctx); ws != nil && ws.Plan.Valid() {
		e.Tier = ws.Plan
	}
	return e
}

// For builds Entitlements for an explicit workspace, bypassing context.
// Used by the session endpoint which reports flags for the whole membership
// list.
func For(platformAdmin bool, ws *tenant.Workspace) Entitlements {
	e := Entitlements{PlatformAdmin: platformAdmin, Tier: plan.TierStarter}
	if ws != nil && ws.Plan.Valid() {
		e.Tier = ws.Plan
	}
	return e
}

// HasFeature reports whether the feature is usable.
func (e Entitlements) HasFeature(f plan.Feature) bool {
	if e.PlatformAdmin {
		return true
	}
	return plan.HasFeature(e.Tier, f)
}

// Flags returns the full feature map for the effective tier.
// Platform admins get every feature enabled.
func (e Entitlements) Flags() plan.FlagSet {
	flags := plan.FeaturesFor(e.Tier)
	if e.PlatformAdmin {
		for f := range flags {
			flags[f] = true
		}
	}
	return flags
}

// Require returns a FEATURE_LOCKED error when the feature is not usable.
// The error carries the unlocking tier so clients can render the upsell.
func (e Entitlements) Require(f plan.Feature) error {
	if e.HasFeature(f) {
		return nil
	}
	required, ok := plan.RequiredTierFor(f)
	if !ok {
		return apperror.NewInternal(fmt.Errorf("%w: %s", ErrUnclassifiedFeature, f))
	}
	return apperror.NewFeatureLocked(string(f), string(required))
}

// RequiredPlanFor returns the tier that first unlocks a feature.
// Used purely for upsell messaging, never for access decisions.
func RequiredPlanFor(f plan.Feature) (plan.Tier, error) {
	tier, ok := plan.RequiredTierFor(f)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnclassifiedFeature, f)
	}
	return tier, nil
}
