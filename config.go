package accesscore

import (
	"errors"
	"time"

	"github.com/finovant/accesscore/policy"
)

// Config defines the engine's tunable behavior. Instances are cloned by
// [Builder.WithConfig] and treated as immutable after [Builder.Build].
type Config struct {
	Policy       PolicyConfig
	Features     FeatureConfig
	Bootstrap    BootstrapConfig
	SessionCache SessionCacheConfig
	Security     SecurityConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

// PolicyConfig overrides the built-in permission tables. Nil tables fall
// back to the policy package defaults.
type PolicyConfig struct {
	Roles         policy.Table[policy.Role]
	BusinessRoles policy.Table[policy.BusinessRole]
}

// FeatureConfig overrides the subscription feature tiers. A nil table
// falls back to the policy package defaults; DefaultTier is assigned to
// records whose stored tier is missing or unknown.
type FeatureConfig struct {
	Tiers       map[policy.Tier][]string
	DefaultTier policy.Tier
}

// BootstrapConfig tunes the record-lookup sub-protocol.
type BootstrapConfig struct {
	// DefaultRole is assigned when no keyword matches the address and when
	// a stored role string fails to parse.
	DefaultRole policy.Role
	// RoleKeywords drive the fallback role derivation, checked in order.
	RoleKeywords []RoleKeyword
}

// SessionCacheConfig enables the Redis snapshot cache consulted on the
// degraded path before a profile is synthesized from the address.
type SessionCacheConfig struct {
	Enabled     bool
	RedisPrefix string
	TTL         time.Duration
}

// SecurityConfig tunes the Redis-backed throttles on explicit calls.
type SecurityConfig struct {
	EnableSignInThrottle  bool
	EnableIPThrottle      bool
	MaxSignInAttempts     int
	SignInCooldown        time.Duration
	EnableRefreshThrottle bool
	MaxRefreshAttempts    int
	RefreshCooldown       time.Duration
}

// AuditConfig tunes the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig enables the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Features: FeatureConfig{
			DefaultTier: policy.TierFree,
		},
		Bootstrap: BootstrapConfig{
			DefaultRole: policy.RoleUser,
			RoleKeywords: []RoleKeyword{
				{Keyword: "admin", Role: policy.RoleAdmin},
				{Keyword: "accountant", Role: policy.RoleAccountant},
				{Keyword: "consultant", Role: policy.RoleAccountant},
			},
		},
		SessionCache: SessionCacheConfig{
			Enabled:     false,
			RedisPrefix: "accesscore",
			TTL:         24 * time.Hour,
		},
		Security: SecurityConfig{
			EnableSignInThrottle:  false,
			EnableIPThrottle:      false,
			MaxSignInAttempts:     10,
			SignInCooldown:        15 * time.Minute,
			EnableRefreshThrottle: false,
			MaxRefreshAttempts:    30,
			RefreshCooldown:       time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg

	if cfg.Policy.Roles != nil {
		out.Policy.Roles = cloneTable(cfg.Policy.Roles)
	}
	if cfg.Policy.BusinessRoles != nil {
		out.Policy.BusinessRoles = cloneTable(cfg.Policy.BusinessRoles)
	}
	if cfg.Features.Tiers != nil {
		tiers := make(map[policy.Tier][]string, len(cfg.Features.Tiers))
		for t, list := range cfg.Features.Tiers {
			tiers[t] = append([]string{}, list...)
		}
		out.Features.Tiers = tiers
	}
	if cfg.Bootstrap.RoleKeywords != nil {
		out.Bootstrap.RoleKeywords = append([]RoleKeyword{}, cfg.Bootstrap.RoleKeywords...)
	}

	return out
}

func cloneTable[R ~string](table policy.Table[R]) policy.Table[R] {
	out := make(policy.Table[R], len(table))
	for role, grants := range table {
		cloned := make(map[policy.Resource][]policy.Action, len(grants))
		for res, actions := range grants {
			cloned[res] = append([]policy.Action{}, actions...)
		}
		out[role] = cloned
	}
	return out
}

// Validate checks internal consistency. Table and tier contents are
// validated separately when the policy engine and gate are compiled.
func (c Config) Validate() error {
	if !c.Bootstrap.DefaultRole.Valid() {
		return errors.New("Bootstrap.DefaultRole must be a canonical role")
	}
	for _, kw := range c.Bootstrap.RoleKeywords {
		if kw.Keyword == "" {
			return errors.New("Bootstrap.RoleKeywords contains an empty keyword")
		}
		if !kw.Role.Valid() {
			return errors.New("Bootstrap.RoleKeywords maps to unknown role: " + string(kw.Role))
		}
	}
	if !c.Features.DefaultTier.Valid() {
		return errors.New("Features.DefaultTier must be a known tier")
	}
	if c.SessionCache.Enabled {
		if c.SessionCache.TTL <= 0 {
			return errors.New("SessionCache.TTL must be positive when the cache is enabled")
		}
		if c.SessionCache.RedisPrefix == "" {
			return errors.New("SessionCache.RedisPrefix must be set when the cache is enabled")
		}
	}
	if c.Security.EnableSignInThrottle {
		if c.Security.MaxSignInAttempts <= 0 {
			return errors.New("Security.MaxSignInAttempts must be positive when throttling")
		}
		if c.Security.SignInCooldown <= 0 {
			return errors.New("Security.SignInCooldown must be positive when throttling")
		}
	}
	if c.Security.EnableRefreshThrottle {
		if c.Security.MaxRefreshAttempts <= 0 {
			return errors.New("Security.MaxRefreshAttempts must be positive when throttling")
		}
		if c.Security.RefreshCooldown <= 0 {
			return errors.New("Security.RefreshCooldown must be positive when throttling")
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	return nil
}
