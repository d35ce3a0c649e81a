package policy

import (
	"errors"
	"sort"
)

// Gate answers subscription-feature membership questions. It is orthogonal
// to role checks: a feature being gated off does not affect Allowed, and
// vice versa.
type Gate struct {
	features map[Tier]map[string]struct{}
}

// NewGate builds a [Gate] from per-tier feature lists. A nil table falls
// back to [DefaultFeatureTiers]. Every tier must be present, and each
// tier's set must be a superset of the tier ranked below it; a broken
// chain is a construction error, not a runtime surprise.
func NewGate(tiers map[Tier][]string) (*Gate, error) {
	if tiers == nil {
		tiers = DefaultFeatureTiers()
	}

	features := make(map[Tier]map[string]struct{}, len(tiers))
	for tier, list := range tiers {
		if !tier.Valid() {
			return nil, errors.New("policy: unknown tier in feature table: " + string(tier))
		}
		set := make(map[string]struct{}, len(list))
		for _, f := range list {
			if f == "" {
				return nil, errors.New("policy: empty feature name in tier " + string(tier))
			}
			set[f] = struct{}{}
		}
		features[tier] = set
	}

	ordered := Tiers()
	for _, tier := range ordered {
		if _, ok := features[tier]; !ok {
			return nil, errors.New("policy: feature table missing tier " + string(tier))
		}
	}
	for i := 1; i < len(ordered); i++ {
		lower, higher := features[ordered[i-1]], features[ordered[i]]
		for f := range lower {
			if _, ok := higher[f]; !ok {
				return nil, errors.New("policy: tier " + string(ordered[i]) +
					" is missing feature " + f + " granted by " + string(ordered[i-1]))
			}
		}
	}

	return &Gate{features: features}, nil
}

// HasFeature reports whether the tier includes the named feature. Unknown
// tiers and unknown features are simply false.
func (g *Gate) HasFeature(tier Tier, feature string) bool {
	set, ok := g.features[tier]
	if !ok {
		return false
	}
	_, ok = set[feature]
	return ok
}

// Features returns the tier's feature list, sorted. Empty for unknown tiers.
func (g *Gate) Features(tier Tier) []string {
	set, ok := g.features[tier]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
