// Package auth provides admin authentication for licensegate.
//
// It implements a deliberately small model: a single admin identity
// configured at startup (username plus bcrypt password hash), verified in
// constant time, and short-lived HS256 JWT session tokens with no refresh
// or revocation. A token is valid until it expires; restarting the server
// with a new secret invalidates all outstanding tokens.
//
// There is no user store and no self-service account creation. Device
// registrations are not identities; they are rows the admin approves or
// rejects, handled by the registration package.
package auth
