// Package idp provides DevProvider, an in-process identity provider for
// development and tests. It keeps its user registry in memory, stores
// secrets as argon2id PHC strings, and issues HS256 session tokens, so a
// full sign-in round trip works without any external identity service.
//
// Production deployments implement accesscore.IdentityProvider against
// their real identity platform instead; nothing in the engine depends on
// this package.
package idp
