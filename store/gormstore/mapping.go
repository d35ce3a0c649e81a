package gormstore

import "github.com/finovant/accesscore/policy"

// policyRole normalizes a stored role string, resolving legacy aliases.
// An unparseable value passes through untouched; the engine applies its
// configured default role during bootstrap.
func policyRole(s string) policy.Role {
	if role, ok := policy.ParseRole(s); ok {
		return role
	}
	return policy.Role(s)
}

func policyTier(s string) policy.Tier {
	return policy.Tier(s)
}
