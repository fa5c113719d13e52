// Package identity owns vidcore's account records and their persistence.
//
// An account carries the identity fields (username, email, full name, media
// URLs), the Argon2id password hash, and at most one refresh-credential hash.
// The refresh-credential hash is the only mutable shared state of the session
// subsystem; all writes to it go through the Store, which guarantees the
// compare-and-swap semantics required for refresh rotation.
package identity
