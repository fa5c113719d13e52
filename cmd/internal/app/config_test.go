package app

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.HTTPAddr != "0.0.0.0:8080" {
		t.Fatalf("addr = %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("level = %q", cfg.LogLevel)
	}
	if cfg.ReadHeaderTimeout != 5*time.Second {
		t.Fatalf("read header timeout = %v", cfg.ReadHeaderTimeout)
	}
	if !cfg.MigrateOnStart {
		t.Fatalf("expected MigrateOnStart default true")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("VIDCORE_HTTP_ADDR", "127.0.0.1:9999")
	t.Setenv("VIDCORE_DB_MAX_CONNS", "25")
	t.Setenv("VIDCORE_MIGRATE_ON_START", "false")
	t.Setenv("VIDCORE_HTTP_READ_TIMEOUT", "30s")

	cfg := LoadConfig()
	if cfg.HTTPAddr != "127.0.0.1:9999" {
		t.Fatalf("addr = %q", cfg.HTTPAddr)
	}
	if cfg.DBMaxConns != 25 {
		t.Fatalf("max conns = %d", cfg.DBMaxConns)
	}
	if cfg.MigrateOnStart {
		t.Fatalf("expected MigrateOnStart disabled")
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Fatalf("read timeout = %v", cfg.ReadTimeout)
	}
}

func TestEnvHelpers_BadValuesFallBack(t *testing.T) {
	t.Setenv("VIDCORE_TEST_INT", "not-a-number")
	t.Setenv("VIDCORE_TEST_DUR", "soon")
	t.Setenv("VIDCORE_TEST_BOOL", "perhaps")

	if got := EnvInt("VIDCORE_TEST_INT", 7); got != 7 {
		t.Fatalf("EnvInt = %d", got)
	}
	if got := EnvDuration("VIDCORE_TEST_DUR", time.Minute); got != time.Minute {
		t.Fatalf("EnvDuration = %v", got)
	}
	if got := EnvBool("VIDCORE_TEST_BOOL", true); got != true {
		t.Fatalf("EnvBool = %v", got)
	}
}
