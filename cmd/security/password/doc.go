// Package password implements Argon2id password hashing for vidcore.
//
// It provides:
// - Configurable Argon2id parameters (via environment variables)
// - Password policy validation
// - Strict PHC-style hash decoding with anti-DoS bounds during Verify
//
// Hash strings are treated as untrusted input during Verify; hashes carrying
// parameters far above the configured maxima are refused.
package password
