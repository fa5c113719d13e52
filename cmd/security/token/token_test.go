package token

import (
	"testing"
)

func TestHashRefreshTokenHex_SHA256Fallback(t *testing.T) {
	t.Setenv(HMACEnvKey, "")

	a := HashRefreshTokenHex("some-refresh-token")
	b := HashRefreshTokenHex("some-refresh-token")
	if a != b {
		t.Fatalf("hash not deterministic")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == HashRefreshTokenHex("another-token") {
		t.Fatalf("distinct inputs must not collide here")
	}
}

func TestHashRefreshTokenHex_HMACMode(t *testing.T) {
	t.Setenv(HMACEnvKey, "0123456789abcdef0123456789abcdef")

	withKey := HashRefreshTokenHex("tok")

	t.Setenv(HMACEnvKey, "")
	withoutKey := HashRefreshTokenHex("tok")

	if withKey == withoutKey {
		t.Fatalf("HMAC digest must differ from plain SHA-256")
	}
}

func TestHMACKeyFromEnv_Policy(t *testing.T) {
	t.Setenv(HMACEnvKey, "")
	if _, err := HMACKeyFromEnv(32); err != ErrHMACKeyMissing {
		t.Fatalf("expected ErrHMACKeyMissing, got %v", err)
	}

	t.Setenv(HMACEnvKey, "short")
	if _, err := HMACKeyFromEnv(32); err != ErrHMACKeyTooShort {
		t.Fatalf("expected ErrHMACKeyTooShort, got %v", err)
	}

	t.Setenv(HMACEnvKey, "0123456789abcdef0123456789abcdef")
	key, err := HMACKeyFromEnv(32)
	if err != nil {
		t.Fatalf("HMACKeyFromEnv: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("unexpected key length %d", len(key))
	}
}
