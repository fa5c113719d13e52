// Package token provides hashing helpers for server-stored credentials.
//
// Refresh credentials are never persisted in plaintext: the store keeps an
// HMAC-SHA256 digest when VIDCORE_TOKEN_HMAC_KEY is configured, and a plain
// SHA-256 digest otherwise (dev mode).
package token
