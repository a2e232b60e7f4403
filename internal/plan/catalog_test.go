package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogTotality(t *testing.T) {
	for _, tier := range Tiers() {
		t.Run(string(tier), func(t *testing.T) {
			flags := FeaturesFor(tier)
			require.Len(t, flags, len(Features()), "every feature must have a flag value")
			for _, f := range Features() {
				_, ok := flags[f]
				assert.True(t, ok, "feature %s has no flag for tier %s", f, tier)
			}

			limits := LimitsFor(tier)
			for name, l := range map[string]Limit{
				"workspaces": limits.MaxWorkspacesPerOwner,
				"members":    limits.MaxMembers,
				"projects":   limits.MaxActiveProjects,
				"clients":    limits.MaxClients,
			} {
				assert.True(t, l == Unbounded || l > 0, "%s limit for %s must be positive or unbounded", name, tier)
			}
		})
	}
}

func TestUpgradeClassificationTotality(t *testing.T) {
	for _, f := range Features() {
		tier, ok := RequiredTierFor(f)
		require.True(t, ok, "feature %s is unclassified", f)
		assert.Contains(t, []Tier{TierStudio, TierFirm}, tier,
			"feature %s must map to one of the two upgrade tiers", f)

		// The classification must agree with the catalog: the required tier
		// enables the feature and no lower tier does.
		assert.True(t, HasFeature(tier, f), "tier %s must enable %s", tier, f)
		if tier == TierFirm {
			assert.False(t, HasFeature(TierStudio, f))
		}
		assert.False(t, HasFeature(TierStarter, f), "starter never unlocks gated features")
	}
}

func TestLimitAllows(t *testing.T) {
	tests := []struct {
		name  string
		limit Limit
		n     int64
		want  bool
	}{
		{"below cap", 5, 4, true},
		{"at cap", 5, 5, false},
		{"above cap", 5, 6, false},
		{"unbounded small", Unbounded, 0, true},
		{"unbounded huge", Unbounded, 1 << 40, true},
		{"zero count below one", 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.limit.Allows(tt.n))
		})
	}
}

func TestUnknownTierFallsBackToStarter(t *testing.T) {
	assert.Equal(t, LimitsFor(TierStarter), LimitsFor(Tier("bogus")))
	assert.Equal(t, FeaturesFor(TierStarter), FeaturesFor(Tier("bogus")))
}

func TestStarterAndFirmFlags(t *testing.T) {
	assert.False(t, HasFeature(TierStarter, FeatureAIAssist))
	assert.True(t, HasFeature(TierFirm, FeatureAIAssist))
	assert.True(t, HasFeature(TierStudio, FeatureInvitations))
}
