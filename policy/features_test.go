package policy

import (
	"testing"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	g, err := NewGate(nil)
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}
	return g
}

func TestTierMonotonicityOverFullFeatureList(t *testing.T) {
	g := newTestGate(t)

	tiers := Tiers()
	// Collect the union of every feature across every tier, then assert
	// that a grant at any tier implies the grant at every higher tier.
	union := make(map[string]struct{})
	for _, tier := range tiers {
		for _, f := range g.Features(tier) {
			union[f] = struct{}{}
		}
	}
	if len(union) == 0 {
		t.Fatal("expected a non-empty feature universe")
	}

	for f := range union {
		for i, lower := range tiers {
			if !g.HasFeature(lower, f) {
				continue
			}
			for _, higher := range tiers[i+1:] {
				if !g.HasFeature(higher, f) {
					t.Fatalf("feature %q granted at %s but missing at %s", f, lower, higher)
				}
			}
		}
	}
}

func TestTierChainIsStrictlyIncreasing(t *testing.T) {
	g := newTestGate(t)

	tiers := Tiers()
	for i := 1; i < len(tiers); i++ {
		lower, higher := g.Features(tiers[i-1]), g.Features(tiers[i])
		if len(higher) <= len(lower) {
			t.Fatalf("tier %s (%d features) does not strictly extend %s (%d features)",
				tiers[i], len(higher), tiers[i-1], len(lower))
		}
	}
}

func TestHasFeatureUnknownInputs(t *testing.T) {
	g := newTestGate(t)

	if g.HasFeature(Tier("platinum"), "dashboard") {
		t.Fatal("unknown tier must not have features")
	}
	if g.HasFeature(TierEnterprise, "time_travel") {
		t.Fatal("unknown feature must not be granted")
	}
	if got := g.Features(Tier("platinum")); got != nil {
		t.Fatalf("expected nil feature list for unknown tier, got %v", got)
	}
}

func TestNewGateRejectsBrokenChain(t *testing.T) {
	broken := map[Tier][]string{
		TierFree:       {"dashboard"},
		TierBasic:      {"reports_standard"}, // drops "dashboard"
		TierPremium:    {"dashboard", "reports_standard"},
		TierEnterprise: {"dashboard", "reports_standard"},
	}
	if _, err := NewGate(broken); err == nil {
		t.Fatal("expected broken superset chain to be rejected")
	}
}

func TestNewGateRejectsMissingTier(t *testing.T) {
	partial := map[Tier][]string{
		TierFree: {"dashboard"},
	}
	if _, err := NewGate(partial); err == nil {
		t.Fatal("expected missing tiers to be rejected")
	}
}

func TestNewGateRejectsUnknownTier(t *testing.T) {
	tiers := DefaultFeatureTiers()
	tiers[Tier("platinum")] = []string{"everything"}
	if _, err := NewGate(tiers); err == nil {
		t.Fatal("expected unknown tier key to be rejected")
	}
}

func TestNewGateRejectsEmptyFeatureName(t *testing.T) {
	tiers := DefaultFeatureTiers()
	tiers[TierFree] = append(tiers[TierFree], "")
	if _, err := NewGate(tiers); err == nil {
		t.Fatal("expected empty feature name to be rejected")
	}
}
