package identity

import (
	"vidcore/cmd/security/password"
)

// HashPassword returns a PHC-style Argon2id hash string.
// Policy and cost parameters come from cmd/security/password (env + defaults);
// identity keeps a baseline minimum length of 8 and honors stricter env policy.
func HashPassword(plain string) (string, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		// Treat invalid env as an operational error, not a weak fallback.
		return "", err
	}
	if cfg.Policy.MinLength < 8 {
		cfg.Policy.MinLength = 8
	}
	return cfg.Hash(plain)
}

// VerifyPassword checks a password against a PHC Argon2id hash.
// Strict PHC parsing; verification refuses hashes with parameters wildly
// above configured maxima.
func VerifyPassword(plain, encodedPHC string) (bool, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		return false, err
	}
	return cfg.Verify(encodedPHC, plain)
}
