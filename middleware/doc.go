// Package middleware exposes HTTP adapters over an accesscore.Engine.
//
// # Guards
//
//   - [RequireSession] — rejects requests while no session is committed.
//   - [RequirePermission] — additionally evaluates one (resource, action)
//     pair against the engine.
//
// Each guard snapshots the current session into the request context for
// downstream handlers.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It makes no
// authorization decisions of its own; a 401 means "no session" and a 403
// means the engine denied the check.
package middleware
