package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// Config controls the HTTP auth surface: cookie attributes, body limits, and
// proxy trust.
type Config struct {
	AccessCookieName  string
	RefreshCookieName string
	CookiePath        string
	CookieDomain      string
	CookieSecure      bool
	CookieSameSite    http.SameSite

	TrustProxy     bool
	MaxBodyBytes   int64
	MaxUploadBytes int64
}

// LoadConfigFromEnv loads auth API config from environment variables with
// safe defaults.
func LoadConfigFromEnv() Config {
	cfg := Config{
		AccessCookieName:  envString("VIDCORE_ACCESS_COOKIE_NAME", "accessToken"),
		RefreshCookieName: envString("VIDCORE_REFRESH_COOKIE_NAME", "refreshToken"),
		CookiePath:        envString("VIDCORE_COOKIE_PATH", "/"),
		CookieDomain:      envString("VIDCORE_COOKIE_DOMAIN", ""),
		CookieSecure:      envBool("VIDCORE_COOKIE_SECURE", true),
		CookieSameSite:    envSameSite("VIDCORE_COOKIE_SAMESITE", http.SameSiteLaxMode),
		TrustProxy:        envBool("VIDCORE_TRUST_PROXY", false),
		MaxBodyBytes:      envInt64("VIDCORE_MAX_BODY_BYTES", 1<<20),    // 1 MiB
		MaxUploadBytes:    envInt64("VIDCORE_MAX_UPLOAD_BYTES", 10<<20), // 10 MiB
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return cfg
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envSameSite(key string, def http.SameSite) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return def
	}
}
