// Package session implements vidcore's session lifecycle.
//
// It follows a single-active-session model: each account stores at most one
// refresh-credential digest. Login overwrites it (revoking any prior
// session), logout clears it, and every successful refresh rotates it with a
// strict one-time-use protocol: the token that authorized a rotation is
// invalid afterwards, even before its cryptographic expiry.
//
// Access tokens are short-lived HS256 JWTs validated without store access;
// refresh tokens are long-lived HS256 JWTs signed with a distinct secret and
// additionally checked against the server-stored digest.
package session
