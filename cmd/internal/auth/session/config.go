package session

import (
	"os"
	"time"
)

// Config defines all runtime configuration for the session subsystem.
//
// It controls token TTLs, clock skew tolerance, and the two independent
// signing secrets. The struct is environment-driven and immutable after
// construction; the token issuer reads it exactly once.
type Config struct {
	// Issuer is the value set in the "iss" claim of both tokens.
	Issuer string

	// AccessTokenTTL defines the lifetime of access tokens (minutes class).
	AccessTokenTTL time.Duration

	// RefreshTokenTTL defines the lifetime of refresh tokens (days class).
	RefreshTokenTTL time.Duration

	// ClockSkew defines the allowed time skew during token validation.
	ClockSkew time.Duration

	// AccessTokenSecret and RefreshTokenSecret are independent HS256 keys.
	// They must differ so an access token can never pass refresh
	// verification or vice versa.
	AccessTokenSecret  string
	RefreshTokenSecret string
}

// DefaultConfig returns a configuration suitable for development.
// Secrets are intentionally empty and must be provided via env.
func DefaultConfig() Config {
	return Config{
		Issuer:          "vidcore",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 10 * 24 * time.Hour,
		ClockSkew:       30 * time.Second,
	}
}

const minSecretBytes = 32

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - VIDCORE_ACCESS_TOKEN_SECRET (>= 32 bytes)
//   - VIDCORE_REFRESH_TOKEN_SECRET (>= 32 bytes, distinct from access)
//
// Optional (durations must be valid Go duration strings):
//   - VIDCORE_AUTH_ISSUER
//   - VIDCORE_AUTH_ACCESS_TTL
//   - VIDCORE_AUTH_REFRESH_TTL
//   - VIDCORE_AUTH_CLOCK_SKEW
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("VIDCORE_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("VIDCORE_AUTH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTokenTTL = d
	}

	if v := os.Getenv("VIDCORE_AUTH_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTokenTTL = d
	}

	if v := os.Getenv("VIDCORE_AUTH_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ClockSkew = d
	}

	cfg.AccessTokenSecret = os.Getenv("VIDCORE_ACCESS_TOKEN_SECRET")
	cfg.RefreshTokenSecret = os.Getenv("VIDCORE_REFRESH_TOKEN_SECRET")

	if err := cfg.validateSecrets(); err != nil {
		return Config{}, err
	}

	// Invariant: access tokens must be the short-lived pair member.
	if cfg.AccessTokenTTL >= cfg.RefreshTokenTTL {
		return Config{}, ErrConfig
	}

	return cfg, nil
}

func (c Config) validateSecrets() error {
	if len(c.AccessTokenSecret) < minSecretBytes {
		return ErrConfig
	}
	if len(c.RefreshTokenSecret) < minSecretBytes {
		return ErrConfig
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return ErrConfig
	}
	return nil
}
