// Package plan defines the static subscription plan catalog: per-tier numeric
// limits and feature flags. The catalog is total over the closed set of tiers,
// so lookups never fail.
package plan

// Tier represents a subscription plan tier.
type Tier string

const (
	// TierStarter is the entry plan for solo designers.
	TierStarter Tier = "starter"

	// TierStudio is the mid plan for small studios.
	TierStudio Tier = "studio"

	// TierFirm is the top plan for full firms.
	TierFirm Tier = "firm"
)

// Tiers lists every tier, lowest first. Catalog totality tests iterate this.
func Tiers() []Tier {
	return []Tier{TierStarter, TierStudio, TierFirm}
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierStarter, TierStudio, TierFirm:
		return true
	}
	return false
}

// Feature represents a plan-gated capability.
type Feature string

const (
	FeatureSchedulingChart Feature = "scheduling_chart"
	FeatureReporting       Feature = "reporting"
	FeatureInvitations     Feature = "invitations"
	FeatureAIAssist        Feature = "ai_assist"
	FeatureClientPortal    Feature = "client_portal"
	FeatureCustomization   Feature = "customization"
)

// Features lists every known feature. Classification totality tests iterate this.
func Features() []Feature {
	return []Feature{
		FeatureSchedulingChart,
		FeatureReporting,
		FeatureInvitations,
		FeatureAIAssist,
		FeatureClientPortal,
		FeatureCustomization,
	}
}

// Limit is a numeric plan cap. Unbounded means no cap; all comparisons go
// through Allows so the sentinel branches in exactly one place.
type Limit int64

// Unbounded marks a limit with no cap. -1 keeps the column SQL-friendly.
const Unbounded Limit = -1

// Allows reports whether a resource count n is below the limit.
func (l Limit) Allows(n int64) bool {
	if l == Unbounded {
		return true
	}
	return n < int64(l)
}

// Limits holds the numeric caps for a tier.
type Limits struct {
	MaxWorkspacesPerOwner Limit
	MaxMembers            Limit
	MaxActiveProjects     Limit
	MaxClients            Limit
}

// FlagSet maps each feature to enabled/disabled for a tier.
type FlagSet map[Feature]bool

var catalog = map[Tier]struct {
	limits Limits
	flags  FlagSet
}{
	TierStarter: {
		limits: Limits{
			MaxWorkspacesPerOwner: 1,
			MaxMembers:            3,
			MaxActiveProjects:     5,
			MaxClients:            10,
		},
		flags: FlagSet{
			FeatureSchedulingChart: false,
			FeatureReporting:       false,
			FeatureInvitations:     false,
			FeatureAIAssist:        false,
			FeatureClientPortal:    false,
			FeatureCustomization:   false,
		},
	},
	TierStudio: {
		limits: Limits{
			MaxWorkspacesPerOwner: 3,
			MaxMembers:            15,
			MaxActiveProjects:     50,
			MaxClients:            200,
		},
		flags: FlagSet{
			FeatureSchedulingChart: true,
			FeatureReporting:       true,
			FeatureInvitations:     true,
			FeatureAIAssist:        false,
			FeatureClientPortal:    false,
			FeatureCustomization:   false,
		},
	},
	TierFirm: {
		limits: Limits{
			MaxWorkspacesPerOwner: Unbounded,
			MaxMembers:            Unbounded,
			MaxActiveProjects:     Unbounded,
			MaxClients:            Unbounded,
		},
		flags: FlagSet{
			FeatureSchedulingChart: true,
			FeatureReporting:       true,
			FeatureInvitations:     true,
			FeatureAIAssist:        true,
			FeatureClientPortal:    true,
			FeatureCustomization:   true,
		},
	},
}

// LimitsFor returns the immutable limits for a tier.
// Unknown tiers fall back to the lowest tier rather than failing: the tier
// column is a closed enumeration, so this path only fires on corrupt data.
func LimitsFor(t Tier) Limits {
	if entry, ok := catalog[t]; ok {
		return entry.limits
	}
	return catalog[TierStarter].limits
}

// FeaturesFor returns a copy of the feature flag set for a tier.
func FeaturesFor(t Tier) FlagSet {
	entry, ok := catalog[t]
	if !ok {
		entry = catalog[TierStarter]
	}
	flags := make(FlagSet, len(entry.flags))
	for f, enabled := range entry.flags {
		flags[f] = enabled
	}
	return flags
}

// HasFeature reports whether a tier includes a feature.
func HasFeature(t Tier, f Feature) bool {
	return FeaturesFor(t)[f]
}

// upgradeTier partitions every feature into the tier that first unlocks it.
// Used for upsell messaging only, never for access decisions. A feature
// missing from this table is a configuration defect caught by tests.
var upgradeTier = map[Feature]Tier{
	FeatureSchedulingChart: TierStudio,
	FeatureReporting:       TierStudio,
	FeatureInvitations:     TierStudio,
	FeatureAIAssist:        TierFirm,
	FeatureClientPortal:    TierFirm,
	FeatureCustomization:   TierFirm,
}

// RequiredTierFor returns the tier that unlocks a feature.
// The boolean is false for unclassified features.
func RequiredTierFor(f Feature) (Tier, bool) {
	t, ok := upgradeTier[f]
	return t, ok
}
