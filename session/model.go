package session

// SchemaVersion is the snapshot wire version. Bump it whenever the
// Snapshot layout changes incompatibly; the codec rejects mismatches.
const SchemaVersion = 1

// Snapshot is the cached form of a reconciled session. It carries only
// plain values so the cache stays decoupled from the engine's types.
type Snapshot struct {
	Version     int               `json:"v"`
	SubjectID   string            `json:"subject_id"`
	Address     string            `json:"address"`
	UserID      string            `json:"user_id,omitempty"`
	Role        string            `json:"role"`
	DisplayName string            `json:"display_name,omitempty"`
	FirstName   string            `json:"first_name,omitempty"`
	LastName    string            `json:"last_name,omitempty"`
	AvatarURL   string            `json:"avatar_url,omitempty"`
	Tier        string            `json:"tier,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Businesses  []Business        `json:"businesses,omitempty"`
	CachedAt    int64             `json:"cached_at"`
}

// Business is the cached form of an owned business.
type Business struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at,omitempty"`
}
