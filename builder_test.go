package accesscore

import (
	"testing"

	"github.com/finovant/accesscore/policy"
)

func TestBuildRequiresCollaborators(t *testing.T) {
	if _, err := New().WithRecordStore(newMockStore()).Build(); err == nil {
		t.Error("Build succeeded without an identity provider")
	}
	if _, err := New().WithIdentityProvider(newMockProvider()).Build(); err == nil {
		t.Error("Build succeeded without a record store")
	}
}

func TestBuildRequiresRedisForCacheAndThrottles(t *testing.T) {
	cfg := defaultConfig()
	cfg.SessionCache.Enabled = true

	_, err := New().
		WithConfig(cfg).
		WithIdentityProvider(newMockProvider()).
		WithRecordStore(newMockStore()).
		Build()
	if err == nil {
		t.Error("Build succeeded with the cache enabled and no Redis client")
	}

	cfg = defaultConfig()
	cfg.Security.EnableSignInThrottle = true
	_, err = New().
		WithConfig(cfg).
		WithIdentityProvider(newMockProvider()).
		WithRecordStore(newMockStore()).
		Build()
	if err == nil {
		t.Error("Build succeeded with the throttle enabled and no Redis client")
	}
}

func TestBuildRejectsBadPolicyTables(t *testing.T) {
	cfg := defaultConfig()
	cfg.Policy.Roles = policy.Table[policy.Role]{
		"superuser": {policy.ResourceAny: {policy.ActionAny}},
	}

	_, err := New().
		WithConfig(cfg).
		WithIdentityProvider(newMockProvider()).
		WithRecordStore(newMockStore()).
		Build()
	if err == nil {
		t.Error("Build accepted an unknown role in the table")
	}
}

func TestBuildRejectsBrokenTierChain(t *testing.T) {
	cfg := defaultConfig()
	cfg.Features.Tiers = map[policy.Tier][]string{
		policy.TierFree:       {"dashboard"},
		policy.TierBasic:      {"reports"}, // does not contain dashboard
		policy.TierPremium:    {"dashboard", "reports", "analytics"},
		policy.TierEnterprise: {"dashboard", "reports", "analytics", "sso"},
	}

	_, err := New().
		WithConfig(cfg).
		WithIdentityProvider(newMockProvider()).
		WithRecordStore(newMockStore()).
		Build()
	if err == nil {
		t.Error("Build accepted a broken tier chain")
	}
}

func TestBuilderCannotBeReused(t *testing.T) {
	b := New().
		WithIdentityProvider(newMockProvider()).
		WithRecordStore(newMockStore())

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Error("second Build on the same builder succeeded")
	}
}
