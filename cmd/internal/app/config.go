package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// MigrateOnStart applies the embedded migrations before serving.
	MigrateOnStart bool

	// If true, /readyz returns 503 unless the DB is configured and reachable.
	ReadinessRequireDB bool

	// If true, VIDCORE_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) and
	// refresh-token hashing must be HMAC-based.
	RequireTokenHMAC bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("VIDCORE_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("VIDCORE_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("VIDCORE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("VIDCORE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("VIDCORE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("VIDCORE_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("VIDCORE_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("VIDCORE_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("VIDCORE_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("VIDCORE_DB_MIN_CONNS", 0),

		MigrateOnStart: EnvBool("VIDCORE_MIGRATE_ON_START", true),

		ReadinessRequireDB: EnvBool("VIDCORE_READINESS_REQUIRE_DB", false),

		RequireTokenHMAC: EnvBool("VIDCORE_REQUIRE_TOKEN_HMAC", false),
	}
}
