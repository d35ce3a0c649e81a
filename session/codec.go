package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrCorruptSnapshot indicates a cache entry that is not valid JSON
	// or is missing required fields.
	ErrCorruptSnapshot = errors.New("session: corrupt snapshot")

	// ErrSchemaVersion indicates a cache entry written by an
	// incompatible snapshot layout.
	ErrSchemaVersion = errors.New("session: snapshot schema version mismatch")
)

func encode(s Snapshot) ([]byte, error) {
	s.Version = SchemaVersion
	return json.Marshal(s)
}

func decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if s.Version != SchemaVersion {
		return Snapshot{}, fmt.Errorf("%w: got %d, want %d", ErrSchemaVersion, s.Version, SchemaVersion)
	}
	if s.SubjectID == "" || s.Address == "" {
		return Snapshot{}, fmt.Errorf("%w: missing subject or address", ErrCorruptSnapshot)
	}
	return s, nil
}
