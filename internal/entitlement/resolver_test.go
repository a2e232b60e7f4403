package entitlement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/core/apperror"
	appctx "atelier/internal/core/context"
	"atelier/internal/plan"
	"atelier/internal/tenant"
)

func ctxWith(p *appctx.Principal, ws *tenant.Workspace) context.Context {
	ctx := context.Background()
	if p != nil {
		ctx = appctx.WithPrincipal(ctx, p)
	}
	if ws != nil {
		ctx = tenant.WithWorkspace(ctx, ws)
	}
	return ctx
}

func TestPlatformAdminOverridesEverything(t *testing.T) {
	ctx := ctxWith(
		&appctx.Principal{UserID: "u1", IsPlatformAdmin: true},
		&tenant.Workspace{ID: "ws-a", Plan: plan.TierStarter},
	)
	e := FromContext(ctx)

	for _, f := range plan.Features() {
		assert.True(t, e.HasFeature(f), "admin must resolve %s as allowed", f)
	}

	// Even with no workspace at all.
	e = FromContext(ctxWith(&appctx.Principal{UserID: "u1", IsPlatformAdmin: true}, nil))
	assert.True(t, e.HasFeature(plan.FeatureAIAssist))
}

func TestTierDecidesForOrdinaryPrincipals(t *testing.T) {
	starter := FromContext(ctxWith(
		&appctx.Principal{UserID: "u1"},
		&tenant.Workspace{ID: "ws-a", Plan: plan.TierStarter},
	))
	assert.False(t, starter.HasFeature(plan.FeatureAIAssist))

	firm := FromContext(ctxWith(
		&appctx.Principal{UserID: "u1"},
		&tenant.Workspace{ID: "ws-b", Plan: plan.TierFirm},
	))
	assert.True(t, firm.HasFeature(plan.FeatureAIAssist))
}

func TestAbsentWorkspaceDefaultsToLowestTier(t *testing.T) {
	e := FromContext(ctxWith(&appctx.Principal{UserID: "u1"}, nil))
	assert.Equal(t, plan.TierStarter, e.Tier)
	assert.Equal(t, plan.FeaturesFor(plan.TierStarter), e.Flags())
}

func TestRequireCarriesUpsellTier(t *testing.T) {
	e := FromContext(ctxWith(
		&appctx.Principal{UserID: "u1"},
		&tenant.Workspace{ID: "ws-a", Plan: plan.TierStudio},
	))

	require.NoError(t, e.Require(plan.FeatureReporting))

	err := e.Require(plan.FeatureClientPortal)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeFeatureLocked, appErr.Code)
	assert.Equal(t, string(plan.TierFirm), appErr.Details["required_plan"])
}

func TestRequiredPlanFor(t *testing.T) {
	tier, err := RequiredPlanFor(plan.FeatureInvitations)
	require.NoError(t, err)
	assert.Equal(t, plan.TierStudio, tier)

	_, err = RequiredPlanFor(plan.Feature("holo_deck"))
	assert.ErrorIs(t, err, ErrUnclassifiedFeature)
}

func TestAdminFlagsAllEnabled(t *testing.T) {
	e := Entitlements{PlatformAdmin: true, Tier: plan.TierStarter}
	for f, enabled := range e.Flags() {
		assert.True(t, enabled, "flag %s", f)
	}
}
