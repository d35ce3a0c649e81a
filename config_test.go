package accesscore

import (
	"testing"
	"time"

	"github.com/finovant/accesscore/policy"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown default role", func(c *Config) { c.Bootstrap.DefaultRole = "superuser" }},
		{"empty role keyword", func(c *Config) {
			c.Bootstrap.RoleKeywords = []RoleKeyword{{Keyword: "", Role: policy.RoleAdmin}}
		}},
		{"keyword to unknown role", func(c *Config) {
			c.Bootstrap.RoleKeywords = []RoleKeyword{{Keyword: "root", Role: "superuser"}}
		}},
		{"unknown default tier", func(c *Config) { c.Features.DefaultTier = "platinum" }},
		{"cache without ttl", func(c *Config) {
			c.SessionCache.Enabled = true
			c.SessionCache.TTL = 0
		}},
		{"cache without prefix", func(c *Config) {
			c.SessionCache.Enabled = true
			c.SessionCache.RedisPrefix = ""
		}},
		{"throttle without budget", func(c *Config) {
			c.Security.EnableSignInThrottle = true
			c.Security.MaxSignInAttempts = 0
		}},
		{"throttle without cooldown", func(c *Config) {
			c.Security.EnableSignInThrottle = true
			c.Security.SignInCooldown = 0
		}},
		{"refresh throttle without budget", func(c *Config) {
			c.Security.EnableRefreshThrottle = true
			c.Security.MaxRefreshAttempts = 0
		}},
		{"negative audit buffer", func(c *Config) { c.Audit.BufferSize = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted a bad config")
			}
		})
	}
}

func TestCloneConfigIsIndependent(t *testing.T) {
	cfg := defaultConfig()
	cfg.Policy.Roles = policy.DefaultRoles()
	cfg.Features.Tiers = policy.DefaultFeatureTiers()
	cfg.SessionCache.TTL = time.Hour

	clone := cloneConfig(cfg)

	cfg.Policy.Roles[policy.RoleUser][policy.ResourceSystem] = []policy.Action{policy.ActionDelete}
	cfg.Features.Tiers[policy.TierFree] = append(cfg.Features.Tiers[policy.TierFree], "backdoor")
	cfg.Bootstrap.RoleKeywords[0].Keyword = "changed"

	if _, ok := clone.Policy.Roles[policy.RoleUser][policy.ResourceSystem]; ok {
		t.Error("clone shares the role table")
	}
	for _, f := range clone.Features.Tiers[policy.TierFree] {
		if f == "backdoor" {
			t.Error("clone shares the tier table")
		}
	}
	if clone.Bootstrap.RoleKeywords[0].Keyword == "changed" {
		t.Error("clone shares the keyword slice")
	}
	if clone.SessionCache.TTL != time.Hour {
		t.Error("scalar fields not copied")
	}
}
