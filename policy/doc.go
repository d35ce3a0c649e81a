// Package policy implements the pure permission engine for accesscore.
//
// The engine decides, for a request-scoped [Context], whether a (resource,
// action) pair is allowed. Evaluation is a pure predicate: no I/O, no
// mutation of inputs, and no panics. Unknown roles, resources, or actions
// fail every check; a missing or mistyped table entry fails closed.
//
// Grant precedence, earlier checks short-circuiting later ones:
//
//	admin bypass > ownership > business-role grant > global role grant > deny
//
// The ordering lets a business owner retain control of their own data even
// when their platform role is unprivileged, while platform administrators
// override everything.
//
// Subscription feature gating is orthogonal to role checks and lives in
// [Gate]; tiers form a strict superset chain validated at construction.
package policy
