// Package rate provides the Redis-backed throttles that guard the
// sign-in and session-refresh paths of accesscore.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key
// prefixes:
//   - si:  — sign-in per-address
//   - sii: — sign-in per-IP
//   - rf:  — refresh per-subject
//
// Policy (which operations are throttled, and how the engine reacts)
// lives in the root package; this package only counts.
package rate
