package session

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func setValidSecretEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VIDCORE_ACCESS_TOKEN_SECRET", strings.Repeat("a", 32))
	t.Setenv("VIDCORE_REFRESH_TOKEN_SECRET", strings.Repeat("r", 32))
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	setValidSecretEnv(t)

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Issuer != "vidcore" {
		t.Fatalf("issuer = %q", cfg.Issuer)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("access ttl = %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 10*24*time.Hour {
		t.Fatalf("refresh ttl = %v", cfg.RefreshTokenTTL)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	setValidSecretEnv(t)
	t.Setenv("VIDCORE_AUTH_ISSUER", "vidcore-staging")
	t.Setenv("VIDCORE_AUTH_ACCESS_TTL", "5m")
	t.Setenv("VIDCORE_AUTH_REFRESH_TTL", "72h")
	t.Setenv("VIDCORE_AUTH_CLOCK_SKEW", "1m")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Issuer != "vidcore-staging" {
		t.Fatalf("issuer = %q", cfg.Issuer)
	}
	if cfg.AccessTokenTTL != 5*time.Minute || cfg.RefreshTokenTTL != 72*time.Hour {
		t.Fatalf("ttls = %v / %v", cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	}
	if cfg.ClockSkew != time.Minute {
		t.Fatalf("skew = %v", cfg.ClockSkew)
	}
}

func TestLoadConfigFromEnv_Invalid(t *testing.T) {
	cases := []struct {
		name string
		set  func(t *testing.T)
	}{
		{"missing secrets", func(t *testing.T) {
			t.Setenv("VIDCORE_ACCESS_TOKEN_SECRET", "")
			t.Setenv("VIDCORE_REFRESH_TOKEN_SECRET", "")
		}},
		{"short access secret", func(t *testing.T) {
			t.Setenv("VIDCORE_ACCESS_TOKEN_SECRET", "short")
			t.Setenv("VIDCORE_REFRESH_TOKEN_SECRET", strings.Repeat("r", 32))
		}},
		{"identical secrets", func(t *testing.T) {
			t.Setenv("VIDCORE_ACCESS_TOKEN_SECRET", strings.Repeat("s", 32))
			t.Setenv("VIDCORE_REFRESH_TOKEN_SECRET", strings.Repeat("s", 32))
		}},
		{"bad duration", func(t *testing.T) {
			setValidSecretEnv(t)
			t.Setenv("VIDCORE_AUTH_ACCESS_TTL", "fifteen minutes")
		}},
		{"negative ttl", func(t *testing.T) {
			setValidSecretEnv(t)
			t.Setenv("VIDCORE_AUTH_REFRESH_TTL", "-1h")
		}},
		{"access ttl >= refresh ttl", func(t *testing.T) {
			setValidSecretEnv(t)
			t.Setenv("VIDCORE_AUTH_ACCESS_TTL", "240h")
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.set(t)
			if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}
