package accesscore

import (
	"context"
	"time"

	"github.com/finovant/accesscore/policy"
)

// IdentityEvent identifies a change reported by the identity provider's
// subscription channel.
type IdentityEvent string

const (
	// EventSignedIn is emitted when the provider establishes a session.
	EventSignedIn IdentityEvent = "signed_in"
	// EventSignedOut is emitted when the provider's session ends.
	EventSignedOut IdentityEvent = "signed_out"
	// EventTokenRefreshed is emitted when the provider rotates its session
	// token without changing the subject. The reconciler ignores it.
	EventTokenRefreshed IdentityEvent = "token_refreshed"
)

// Identity is an authenticated subject as reported by the identity
// provider: an opaque subject id, the sign-in address, and whatever
// metadata the provider attached. Provider metadata is treated as a
// slower-changing fallback; locally stored metadata wins on collision.
type Identity struct {
	SubjectID string
	Address   string
	Metadata  map[string]string
}

// IdentityProvider is the first collaborator interface the core consumes.
// Implementations wrap the external authentication service.
//
// CurrentIdentity returns (nil, nil) when no session is live. The
// unsubscribe function returned by OnIdentityChange must be safe to call
// more than once.
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (*Identity, error)
	OnIdentityChange(fn func(event IdentityEvent, identity *Identity)) (unsubscribe func())
	SignIn(ctx context.Context, address, secret string) error
	SignOut(ctx context.Context) error
}

// RecordStore is the second collaborator interface: the durable store of
// user and business records.
//
// FindUserBySubjectID reports a missing record with [ErrRecordNotFound]
// (wrapped is fine); any other error is treated as a transient store
// failure and triggers the degraded bootstrap path.
type RecordStore interface {
	FindUserBySubjectID(ctx context.Context, subjectID string) (*UserRecord, error)
	CreateUser(ctx context.Context, record UserRecord) (*UserRecord, error)
	FindBusinessesByOwner(ctx context.Context, userID string) ([]Business, error)
}

// UserRecord is the durable local profile for an identity.
type UserRecord struct {
	ID        string
	SubjectID string
	Address   string
	Role      policy.Role
	FirstName string
	LastName  string
	AvatarURL string
	Tier      policy.Tier
	Metadata  map[string]string
	CreatedAt time.Time
}

// Business is a tenant-scoped entity owned by exactly one user, the unit
// of data isolation.
type Business struct {
	ID        string
	OwnerID   string
	Name      string
	CreatedAt time.Time
}

// Session is the immutable result of a completed bootstrap. The reconciler
// replaces the whole value on every change; readers must never mutate it.
//
// A Temporary session is a deliberate degraded state produced when the
// record store was unreachable. It is usable for read-mostly navigation but
// is never treated as a verified profile for destructive actions.
type Session struct {
	Identity    Identity
	UserID      string
	Role        policy.Role
	DisplayName string
	FirstName   string
	LastName    string
	AvatarURL   string
	Tier        policy.Tier
	Metadata    map[string]string
	Businesses  []Business
	Temporary   bool

	EstablishedAt time.Time
}

// OwnsBusiness reports whether id is in the session's owned-business set.
func (s *Session) OwnsBusiness(id string) bool {
	if s == nil || id == "" {
		return false
	}
	for _, b := range s.Businesses {
		if b.ID == id {
			return true
		}
	}
	return false
}

func (s *Session) businessIDs() []string {
	if s == nil || len(s.Businesses) == 0 {
		return nil
	}
	ids := make([]string, len(s.Businesses))
	for i, b := range s.Businesses {
		ids[i] = b.ID
	}
	return ids
}

// State is the reconciler's lifecycle state.
type State uint8

const (
	// StateIdle means no identity is established.
	StateIdle State = iota
	// StateBootstrapping means a lookup sequence is in flight. Any
	// previously committed session remains visible.
	StateBootstrapping
	// StateReady means the session is backed by a durable record.
	StateReady
	// StateDegradedReady means the session was synthesized or partially
	// loaded because the record store was unreachable.
	StateDegradedReady
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBootstrapping:
		return "bootstrapping"
	case StateReady:
		return "ready"
	case StateDegradedReady:
		return "degraded_ready"
	}
	return "unknown"
}
