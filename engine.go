package accesscore

import (
	"sync"
	"time"

	"github.com/finovant/accesscore/internal/rate"
	"github.com/finovant/accesscore/policy"
	"github.com/finovant/accesscore/session"
)

// Engine is the access-control and session-bootstrap core. Build one with
// [Builder], call [Engine.Start] to attach it to the identity provider,
// and query it from any goroutine; all methods are safe for concurrent
// use.
type Engine struct {
	config   Config
	policy   *policy.Engine
	features *policy.Gate
	provider IdentityProvider
	store    RecordStore
	cache    *session.Cache
	limiter  *rate.Limiter
	audit    *auditDispatcher
	metrics  *Metrics

	clock func() time.Time

	mu             sync.Mutex
	state          State
	session        *Session
	activeBusiness *Business
	generation     uint64
	unsubscribe    func()
	started        bool
	signingIn      int
	closed         bool
}

// State returns the reconciler's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsBootstrapping reports whether a lookup sequence is in flight.
func (e *Engine) IsBootstrapping() bool {
	return e.State() == StateBootstrapping
}

// CurrentSession returns the committed session, or nil when none exists.
// During a re-bootstrap the previously committed session stays visible.
// The returned value must be treated as read-only.
func (e *Engine) CurrentSession() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// CurrentBusiness returns the active business, or nil when the session
// owns none.
func (e *Engine) CurrentBusiness() *Business {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeBusiness
}

// IsAllowed evaluates whether the current session may perform action on
// resource. ownerID is the resource owner's user id when known and
// businessID scopes the check to a business; either may be empty.
//
// With no committed session every check denies. Temporary sessions
// additionally deny all delete actions regardless of role.
func (e *Engine) IsAllowed(resource policy.Resource, action policy.Action, ownerID, businessID string) bool {
	e.mu.Lock()
	sess := e.session
	active := e.activeBusiness
	e.mu.Unlock()

	if sess == nil {
		e.metrics.Inc(MetricPermissionDenied)
		return false
	}
	if sess.Temporary && action == policy.ActionDelete {
		e.metrics.Inc(MetricPermissionDenied)
		return false
	}

	allowed := e.policy.Allowed(e.policyContext(sess, active, businessID), resource, action, ownerID, businessID)
	if allowed {
		e.metrics.Inc(MetricPermissionAllowed)
	} else {
		e.metrics.Inc(MetricPermissionDenied)
	}
	return allowed
}

// AllowedActions returns every action the current session may perform on
// resource, scoped the same way as [Engine.IsAllowed] with empty owner
// and business facts. The result is consistent with IsAllowed: an action
// appears here exactly when the corresponding check would grant.
func (e *Engine) AllowedActions(resource policy.Resource) []policy.Action {
	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()

	if sess == nil {
		return nil
	}

	actions := e.policy.AllowedActions(sess.Role, resource)
	if !sess.Temporary {
		return actions
	}
	filtered := actions[:0]
	for _, a := range actions {
		if a != policy.ActionDelete {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// HasFeature reports whether the current session's subscription tier
// includes feature. With no session every feature is unavailable.
func (e *Engine) HasFeature(feature string) bool {
	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()

	if sess == nil {
		return false
	}
	return e.features.HasFeature(sess.Tier, feature)
}

// Features returns the feature list for the current session's tier.
func (e *Engine) Features() []string {
	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()

	if sess == nil {
		return nil
	}
	return e.features.Features(sess.Tier)
}

func (e *Engine) policyContext(sess *Session, active *Business, businessID string) policy.Context {
	pctx := policy.Context{
		SubjectID:   sess.UserID,
		Role:        sess.Role,
		Tier:        sess.Tier,
		BusinessIDs: sess.businessIDs(),
	}
	if active != nil {
		pctx.ActiveBusinessID = active.ID
	}

	// Ownership is modeled as the business-owner relation: the tenant
	// owner holds the owner business role for every business they own.
	switch {
	case businessID != "" && sess.OwnsBusiness(businessID):
		pctx.BusinessRole = policy.BusinessOwner
		pctx.IsOwner = true
	case businessID == "" && active != nil:
		pctx.BusinessRole = policy.BusinessOwner
		pctx.IsOwner = true
	}
	return pctx
}

// MetricsSnapshot returns a copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// AuditDropped returns how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// Close detaches the engine from the identity provider, clears any
// session, and drains the audit dispatcher. The engine cannot be
// restarted.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	unsubscribe := e.unsubscribe
	e.unsubscribe = nil
	e.generation++
	e.session = nil
	e.activeBusiness = nil
	e.state = StateIdle
	e.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	e.audit.Close()
}
