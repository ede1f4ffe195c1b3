// Package auth provides guest authentication and request identity for
// hotel-gateway.
//
// # Sessions
//
// Guests check in with email and secret. Secrets are stored as bcrypt
// hashes; a successful check-in mints an HS256 JWT whose subject is the
// guest's email. Tokens are presented either as a Bearer header or via the
// HTTP-only session cookie; no other header is ever consulted.
//
// # Identity Resolution
//
// ResolveMiddleware turns a valid token into an Identity on the request
// context. Resolution failures of any kind (bad signature, expiry, unknown
// guest) yield an anonymous request rather than an error; rejecting
// anonymous callers is the job of RequireIdentity and RequireAdmin, or of
// the gatekeeper for room access.
//
// # Roles
//
// Guests hold exactly one role. Only the admin role carries privileges,
// checked by RequireAdmin as a plain role comparison.
package auth
