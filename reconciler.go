package accesscore

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/finovant/accesscore/internal/rate"
	"github.com/finovant/accesscore/policy"
	"github.com/finovant/accesscore/session"
)

// Start attaches the engine to the identity provider: it subscribes to
// identity change events and, when the provider already has a live
// session, bootstraps it. Start is idempotent until Close.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	if e.started {
		e.mu.Unlock()
		return nil
	}
	e.started = true
	e.unsubscribe = e.provider.OnIdentityChange(e.handleIdentityEvent)
	e.mu.Unlock()

	identity, err := e.provider.CurrentIdentity(ctx)
	if err != nil {
		log.Print("accesscore: current identity lookup failed on start: ", err)
		return nil
	}
	if identity != nil {
		e.bootstrap(ctx, *identity)
	}
	return nil
}

func (e *Engine) handleIdentityEvent(event IdentityEvent, identity *Identity) {
	switch event {
	case EventSignedIn:
		if identity == nil {
			return
		}
		e.mu.Lock()
		explicit := e.signingIn > 0
		e.mu.Unlock()
		if explicit {
			// SignIn is mid-flight and bootstraps the identity itself;
			// providers that emit the event from their own SignIn would
			// otherwise trigger a second, redundant bootstrap.
			return
		}
		e.bootstrap(context.Background(), *identity)
	case EventSignedOut:
		e.clearSession()
	case EventTokenRefreshed:
		// Token rotation does not change the subject; nothing to reconcile.
	}
}

// SignIn authenticates address with the provider and bootstraps the
// resulting identity. Record-store failures never fail the call; they
// degrade the session instead. Provider rejections are returned as-is.
func (e *Engine) SignIn(ctx context.Context, address, secret string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	e.signingIn++
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.signingIn--
		e.mu.Unlock()
	}()

	ip := clientIPFromContext(ctx)

	if e.config.Security.EnableSignInThrottle {
		if err := e.limiter.CheckSignIn(ctx, address, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metrics.Inc(MetricSignInRateLimited)
				e.emit(AuditEvent{
					EventType: auditEventSignInRateLimited,
					Address:   address,
					IP:        ip,
				})
				return ErrSignInRateLimited
			}
			// A throttle backend outage must not lock everyone out.
			log.Print("accesscore: sign-in throttle check failed: ", err)
		}
	}

	if err := e.provider.SignIn(ctx, address, secret); err != nil {
		if e.config.Security.EnableSignInThrottle {
			if lerr := e.limiter.RecordSignInFailure(ctx, address, ip); lerr != nil && !errors.Is(lerr, rate.ErrRateLimited) {
				log.Print("accesscore: recording sign-in failure failed: ", lerr)
			}
		}
		e.metrics.Inc(MetricSignInFailure)
		e.emit(AuditEvent{
			EventType: auditEventSignInFailure,
			Address:   address,
			IP:        ip,
			Error:     err.Error(),
		})
		return err
	}

	if e.config.Security.EnableSignInThrottle {
		if err := e.limiter.ResetSignIn(ctx, address, ip); err != nil {
			log.Print("accesscore: resetting sign-in counter failed: ", err)
		}
	}

	identity, err := e.provider.CurrentIdentity(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoIdentity, err)
	}
	if identity == nil {
		return ErrNoIdentity
	}

	e.metrics.Inc(MetricSignInSuccess)
	e.emit(AuditEvent{
		EventType: auditEventSignInSuccess,
		SubjectID: identity.SubjectID,
		Address:   identity.Address,
		IP:        ip,
		Success:   true,
	})

	e.bootstrap(ctx, *identity)
	return nil
}

// SignOut ends the provider session and clears the local one. The local
// session is kept when the provider call fails, so a transient outage
// does not strand the user in a half-signed-out state.
func (e *Engine) SignOut(ctx context.Context) error {
	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()

	if err := e.provider.SignOut(ctx); err != nil {
		event := AuditEvent{
			EventType: auditEventSignOutFailure,
			Error:     err.Error(),
		}
		if sess != nil {
			event.SubjectID = sess.Identity.SubjectID
			event.Address = sess.Identity.Address
		}
		e.emit(event)
		return err
	}

	e.clearSession()
	e.metrics.Inc(MetricSignOut)
	event := AuditEvent{
		EventType: auditEventSignOut,
		Success:   true,
	}
	if sess != nil {
		event.SubjectID = sess.Identity.SubjectID
		event.Address = sess.Identity.Address
	}
	e.emit(event)
	return nil
}

// RefreshSession re-runs the bootstrap sequence for the current session's
// identity. The stale session stays visible until the new one commits.
func (e *Engine) RefreshSession(ctx context.Context) error {
	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()

	if sess == nil {
		return ErrNoSession
	}

	if e.config.Security.EnableRefreshThrottle {
		if err := e.limiter.CheckRefresh(ctx, sess.Identity.SubjectID); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metrics.Inc(MetricRefreshRateLimited)
				e.emit(AuditEvent{
					EventType: auditEventRefreshRateLimited,
					SubjectID: sess.Identity.SubjectID,
					Address:   sess.Identity.Address,
				})
				return ErrRefreshRateLimited
			}
			log.Print("accesscore: refresh throttle check failed: ", err)
		}
	}

	e.bootstrap(ctx, sess.Identity)
	return nil
}

// SwitchBusiness changes the active business. Switching to a business the
// session does not own is a silent no-op apart from a log line and an
// audit event; the active business is left unchanged.
func (e *Engine) SwitchBusiness(ctx context.Context, businessID string) error {
	// The check and the assignment run under one lock hold so a bootstrap
	// committing in between cannot leave the active business outside the
	// committed session's owned set.
	e.mu.Lock()
	sess := e.session
	if sess == nil {
		e.mu.Unlock()
		return ErrNoSession
	}

	if !sess.OwnsBusiness(businessID) {
		e.mu.Unlock()
		log.Print("accesscore: ignoring switch to non-owned business ", businessID)
		e.metrics.Inc(MetricBusinessSwitchRejected)
		e.emit(AuditEvent{
			EventType: auditEventBusinessRejected,
			SubjectID: sess.Identity.SubjectID,
			Metadata:  map[string]string{"business_id": businessID},
		})
		return nil
	}

	for i := range sess.Businesses {
		if sess.Businesses[i].ID == businessID {
			b := sess.Businesses[i]
			e.activeBusiness = &b
			break
		}
	}
	e.mu.Unlock()

	e.metrics.Inc(MetricBusinessSwitch)
	e.emit(AuditEvent{
		EventType: auditEventBusinessSwitch,
		SubjectID: sess.Identity.SubjectID,
		Success:   true,
		Metadata:  map[string]string{"business_id": businessID},
	})
	return nil
}

// ---- bootstrap pipeline ----

// bootstrap runs the record-lookup sequence for identity and commits the
// result, unless a newer bootstrap or a sign-out started in the meantime.
func (e *Engine) bootstrap(ctx context.Context, identity Identity) {
	gen, ok := e.beginBootstrap()
	if !ok {
		return
	}

	sess := e.resolveSession(ctx, identity)
	if !e.commit(gen, sess) {
		return
	}

	if sess.Temporary {
		e.metrics.Inc(MetricBootstrapDegraded)
		e.emit(AuditEvent{
			EventType: auditEventBootstrapDegraded,
			SubjectID: identity.SubjectID,
			Address:   identity.Address,
		})
		return
	}

	e.metrics.Inc(MetricBootstrapReady)
	e.emit(AuditEvent{
		EventType: auditEventBootstrapReady,
		SubjectID: identity.SubjectID,
		Address:   identity.Address,
		Success:   true,
	})

	if e.cache != nil {
		if err := e.cache.Save(ctx, snapshotFromSession(sess, e.clock().Unix())); err != nil {
			log.Print("accesscore: saving session snapshot failed: ", err)
		}
	}
}

func (e *Engine) beginBootstrap() (uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, false
	}
	e.generation++
	e.state = StateBootstrapping
	e.metrics.Inc(MetricBootstrapStarted)
	return e.generation, true
}

// commit installs sess unless its generation was superseded while the
// lookups ran. Last writer wins by generation, not by arrival order.
func (e *Engine) commit(gen uint64, sess *Session) bool {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()
		return false
	}
	if gen != e.generation {
		e.mu.Unlock()
		e.metrics.Inc(MetricBootstrapSuperseded)
		e.emit(AuditEvent{
			EventType: auditEventBootstrapSuperseded,
			SubjectID: sess.Identity.SubjectID,
		})
		return false
	}

	sess.EstablishedAt = e.clock()
	e.session = sess
	if sess.Temporary {
		e.state = StateDegradedReady
	} else {
		e.state = StateReady
	}

	// Keep the active business when the new session still owns it,
	// otherwise default to the first owned business.
	if e.activeBusiness != nil && !sess.OwnsBusiness(e.activeBusiness.ID) {
		e.activeBusiness = nil
	}
	if e.activeBusiness == nil && len(sess.Businesses) > 0 {
		b := sess.Businesses[0]
		e.activeBusiness = &b
	}

	e.mu.Unlock()
	return true
}

// resolveSession runs the lookup sub-protocol: find the record, create it
// when missing, and fall back to the snapshot cache and then to address
// synthesis when the store is unreachable. It never returns nil.
func (e *Engine) resolveSession(ctx context.Context, identity Identity) *Session {
	record, err := e.store.FindUserBySubjectID(ctx, identity.SubjectID)
	switch {
	case err == nil:
	case errors.Is(err, ErrRecordNotFound):
		record, err = e.createRecord(ctx, identity)
		if err != nil {
			log.Print("accesscore: ", fmt.Errorf("%w: %v", ErrRecordCreate, err))
			return e.degradedSession(ctx, identity)
		}
	default:
		log.Print("accesscore: ", fmt.Errorf("%w: %v", ErrRecordLookup, err))
		return e.degradedSession(ctx, identity)
	}

	sess := e.sessionFromRecord(identity, record)

	businesses, err := e.store.FindBusinessesByOwner(ctx, record.ID)
	if err != nil {
		// The profile itself resolved; only the tenant list is missing.
		log.Print("accesscore: ", fmt.Errorf("%w: %v", ErrBusinessLookup, err))
		sess.Temporary = true
		return sess
	}
	sess.Businesses = businesses
	return sess
}

func (e *Engine) createRecord(ctx context.Context, identity Identity) (*UserRecord, error) {
	record := UserRecord{
		SubjectID: identity.SubjectID,
		Address:   identity.Address,
		Role:      DeriveRoleFromAddress(identity.Address, e.config.Bootstrap.RoleKeywords, e.config.Bootstrap.DefaultRole),
		Tier:      e.config.Features.DefaultTier,
		Metadata:  cloneMetadata(identity.Metadata),
	}

	created, err := e.store.CreateUser(ctx, record)
	if err != nil {
		return nil, err
	}

	e.metrics.Inc(MetricRecordCreated)
	e.emit(AuditEvent{
		EventType: auditEventRecordCreated,
		SubjectID: identity.SubjectID,
		Address:   identity.Address,
		Success:   true,
	})
	return created, nil
}

func (e *Engine) sessionFromRecord(identity Identity, record *UserRecord) *Session {
	role := record.Role
	if !role.Valid() {
		if parsed, ok := policy.ParseRole(string(record.Role)); ok {
			role = parsed
		} else {
			role = e.config.Bootstrap.DefaultRole
		}
	}
	tier := record.Tier
	if !tier.Valid() {
		tier = e.config.Features.DefaultTier
	}

	display := record.FirstName
	if record.LastName != "" {
		if display != "" {
			display += " "
		}
		display += record.LastName
	}
	if display == "" {
		display = DisplayNameFromAddress(identity.Address)
	}

	return &Session{
		Identity:    identity,
		UserID:      record.ID,
		Role:        role,
		DisplayName: display,
		FirstName:   record.FirstName,
		LastName:    record.LastName,
		AvatarURL:   record.AvatarURL,
		Tier:        tier,
		Metadata:    mergeMetadata(identity.Metadata, record.Metadata),
	}
}

// degradedSession serves the fallback chain after a store failure: a
// cached snapshot when available, otherwise a profile synthesized from
// the address. Either way the session is Temporary.
func (e *Engine) degradedSession(ctx context.Context, identity Identity) *Session {
	if e.cache != nil {
		snap, err := e.cache.Load(ctx, identity.SubjectID)
		if err == nil {
			e.metrics.Inc(MetricSessionCacheHit)
			e.emit(AuditEvent{
				EventType: auditEventSessionCacheHit,
				SubjectID: identity.SubjectID,
				Address:   identity.Address,
				Success:   true,
			})
			return e.sessionFromSnapshot(identity, snap)
		}
		if !errors.Is(err, session.ErrCacheMiss) {
			log.Print("accesscore: session snapshot load failed: ", err)
		}
		e.metrics.Inc(MetricSessionCacheMiss)
	}

	return &Session{
		Identity:    identity,
		Role:        DeriveRoleFromAddress(identity.Address, e.config.Bootstrap.RoleKeywords, e.config.Bootstrap.DefaultRole),
		DisplayName: DisplayNameFromAddress(identity.Address),
		Tier:        e.config.Features.DefaultTier,
		Metadata:    cloneMetadata(identity.Metadata),
		Temporary:   true,
	}
}

func (e *Engine) clearSession() {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Bumping the generation makes any in-flight bootstrap discard its
	// result instead of resurrecting the session.
	e.generation++
	e.session = nil
	e.activeBusiness = nil
	e.state = StateIdle
}

func (e *Engine) emit(event AuditEvent) {
	if e.audit == nil {
		return
	}
	event.Timestamp = e.clock()
	e.audit.Emit(context.Background(), event)
}

// ---- snapshot mapping ----

func snapshotFromSession(sess *Session, now int64) session.Snapshot {
	snap := session.Snapshot{
		SubjectID:   sess.Identity.SubjectID,
		Address:     sess.Identity.Address,
		UserID:      sess.UserID,
		Role:        string(sess.Role),
		DisplayName: sess.DisplayName,
		FirstName:   sess.FirstName,
		LastName:    sess.LastName,
		AvatarURL:   sess.AvatarURL,
		Tier:        string(sess.Tier),
		Metadata:    cloneMetadata(sess.Metadata),
		CachedAt:    now,
	}
	for _, b := range sess.Businesses {
		snap.Businesses = append(snap.Businesses, session.Business{
			ID:        b.ID,
			OwnerID:   b.OwnerID,
			Name:      b.Name,
			CreatedAt: b.CreatedAt.Unix(),
		})
	}
	return snap
}

// sessionFromSnapshot rebuilds a session from a cached snapshot. The
// result is always Temporary: a snapshot is a stale copy, not a verified
// record.
func (e *Engine) sessionFromSnapshot(identity Identity, snap session.Snapshot) *Session {
	role, ok := policy.ParseRole(snap.Role)
	if !ok {
		role = e.config.Bootstrap.DefaultRole
	}
	tier := policy.Tier(snap.Tier)
	if !tier.Valid() {
		tier = e.config.Features.DefaultTier
	}

	sess := &Session{
		Identity:    identity,
		UserID:      snap.UserID,
		Role:        role,
		DisplayName: snap.DisplayName,
		FirstName:   snap.FirstName,
		LastName:    snap.LastName,
		AvatarURL:   snap.AvatarURL,
		Tier:        tier,
		Metadata:    mergeMetadata(identity.Metadata, snap.Metadata),
		Temporary:   true,
	}
	for _, b := range snap.Businesses {
		sess.Businesses = append(sess.Businesses, Business{
			ID:      b.ID,
			OwnerID: b.OwnerID,
			Name:    b.Name,
		})
	}
	return sess
}

// mergeMetadata layers stored metadata over provider metadata. Stored
// values win on collision; provider-only keys survive.
func mergeMetadata(provider, stored map[string]string) map[string]string {
	if len(provider) == 0 && len(stored) == 0 {
		return nil
	}
	merged := make(map[string]string, len(provider)+len(stored))
	for k, v := range provider {
		merged[k] = v
	}
	for k, v := range stored {
		merged[k] = v
	}
	return merged
}

func cloneMetadata(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
