package app

import (
	"errors"

	"vidcore/cmd/security/token"
)

// ValidateSecurityConfig enforces the token-hashing policy at startup.
// Failing fast beats silently storing weaker digests in production.
func ValidateSecurityConfig(cfg Config) error {
	if !cfg.RequireTokenHMAC {
		return nil
	}

	// 32 bytes minimum for an HMAC-SHA256 secret; measured in bytes because
	// the key is used raw.
	if _, err := token.HMACKeyFromEnv(32); err != nil {
		switch {
		case errors.Is(err, token.ErrHMACKeyMissing):
			return errors.New("security policy: VIDCORE_REQUIRE_TOKEN_HMAC=true but VIDCORE_TOKEN_HMAC_KEY is missing")
		case errors.Is(err, token.ErrHMACKeyTooShort):
			return errors.New("security policy: VIDCORE_REQUIRE_TOKEN_HMAC=true but VIDCORE_TOKEN_HMAC_KEY is too short (min 32 bytes)")
		default:
			return err
		}
	}

	if !token.HMACEnabled() {
		return errors.New("security policy: VIDCORE_REQUIRE_TOKEN_HMAC=true but token hasher is not in HMAC mode")
	}

	return nil
}
