// Package session provides the Redis-backed snapshot cache for accesscore.
//
// The cache holds the last fully-reconciled profile per subject so that a
// record-store outage can degrade to a recently verified snapshot instead
// of a profile synthesized from the sign-in address. Entries are versioned
// JSON; a snapshot written by a different schema version is rejected, not
// partially decoded.
package session
