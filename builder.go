package accesscore

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finovant/accesscore/internal/rate"
	"github.com/finovant/accesscore/policy"
	"github.com/finovant/accesscore/session"
)

// Builder assembles an [Engine]. Configure it during initialization and
// call Build once; the resulting engine owns its dependencies.
type Builder struct {
	config Config
	redis  *redis.Client

	provider  IdentityProvider
	store     RecordStore
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration with a clone of cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the snapshot cache and the
// throttles. Required only when either of those is enabled.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithIdentityProvider sets the identity provider. Required.
func (b *Builder) WithIdentityProvider(p IdentityProvider) *Builder {
	b.provider = p
	return b
}

// WithRecordStore sets the durable record store. Required.
func (b *Builder) WithRecordStore(s RecordStore) *Builder {
	b.store = s
	return b
}

// WithAuditSink sets the sink receiving audit events. Optional; when nil
// and auditing is enabled, events are discarded.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, compiles the permission tables and
// feature gate, and returns a ready-to-start [Engine].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.provider == nil {
		return nil, errors.New("identity provider required")
	}
	if b.store == nil {
		return nil, errors.New("record store required")
	}

	needsRedis := cfg.SessionCache.Enabled ||
		cfg.Security.EnableSignInThrottle ||
		cfg.Security.EnableRefreshThrottle
	if needsRedis && b.redis == nil {
		return nil, errors.New("redis client required when the session cache or throttles are enabled")
	}

	roles := cfg.Policy.Roles
	if roles == nil {
		roles = policy.DefaultRoles()
	}
	businessRoles := cfg.Policy.BusinessRoles
	if businessRoles == nil {
		businessRoles = policy.DefaultBusinessRoles()
	}
	policyEngine, err := policy.NewEngine(roles, businessRoles)
	if err != nil {
		return nil, err
	}

	tiers := cfg.Features.Tiers
	if tiers == nil {
		tiers = policy.DefaultFeatureTiers()
	}
	gate, err := policy.NewGate(tiers)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:   cfg,
		policy:   policyEngine,
		features: gate,
		provider: b.provider,
		store:    b.store,
		clock:    time.Now,
	}

	if cfg.SessionCache.Enabled {
		cache, err := session.NewCache(b.redis, cfg.SessionCache.RedisPrefix, cfg.SessionCache.TTL)
		if err != nil {
			return nil, err
		}
		engine.cache = cache
	}

	if cfg.Security.EnableSignInThrottle || cfg.Security.EnableRefreshThrottle {
		engine.limiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle:      cfg.Security.EnableIPThrottle,
			EnableRefreshThrottle: cfg.Security.EnableRefreshThrottle,
			MaxSignInAttempts:     cfg.Security.MaxSignInAttempts,
			SignInCooldown:        cfg.Security.SignInCooldown,
			MaxRefreshAttempts:    cfg.Security.MaxRefreshAttempts,
			RefreshCooldown:       cfg.Security.RefreshCooldown,
		})
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
