// Package accesscore provides the access-control and session-bootstrap core
// for a multi-tenant financial-management platform: a pure permission engine
// (see the policy subpackage) and a session reconciler that resolves an
// external identity into a fully-populated local profile.
//
// The package is the public surface. It exposes [Engine], [Builder],
// [Config], the collaborator interfaces ([IdentityProvider], [RecordStore]),
// and value types (Session, Business, MetricsSnapshot). Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
//   - The identity provider and record store are external collaborators
//     implemented by the caller; the core performs no I/O except through
//     those interfaces and the optional Redis session cache.
//   - Permission evaluation is a pure predicate over an immutable session
//     snapshot; it never mutates state and never returns an error.
//     A false result is the only denial signal.
//   - Bootstrap always terminates in a usable session: collaborator
//     failures degrade to a deterministic temporary profile instead of
//     propagating. Only explicit sign-in/sign-out errors reach the caller.
//
// # Session lifecycle
//
// The reconciler is a state machine:
//
//	Idle → Bootstrapping → {Ready, DegradedReady} → SignedOut → Idle
//
// The session value is replaced, never mutated; readers always observe a
// consistent snapshot. Concurrent bootstraps are generation-guarded: a
// superseded bootstrap discards its result instead of overwriting a newer
// commit.
package accesscore
