package media

import (
	"os"
	"strings"
)

// Config defines the S3-compatible object-store settings for media uploads.
//
// BaseEndpoint supports MinIO and other S3-compatible stores; leave it empty
// to use AWS endpoints. PublicBaseURL is the URL prefix under which stored
// objects are reachable by browsers (a CDN or the store's public endpoint).
type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseEndpoint    string
	PublicBaseURL   string
}

// LoadConfigFromEnv loads object-store configuration from environment
// variables.
//
// Required:
//   - VIDCORE_S3_BUCKET
//   - VIDCORE_S3_ACCESS_KEY_ID
//   - VIDCORE_S3_SECRET_ACCESS_KEY
//
// Optional:
//   - VIDCORE_S3_REGION (default "us-east-1")
//   - VIDCORE_S3_ENDPOINT (for MinIO and friends)
//   - VIDCORE_S3_PUBLIC_BASE_URL (default derived from endpoint + bucket)
//
// Returns ErrConfig if a required value is missing.
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		Region:          "us-east-1",
		Bucket:          os.Getenv("VIDCORE_S3_BUCKET"),
		AccessKeyID:     os.Getenv("VIDCORE_S3_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("VIDCORE_S3_SECRET_ACCESS_KEY"),
		BaseEndpoint:    strings.TrimRight(os.Getenv("VIDCORE_S3_ENDPOINT"), "/"),
		PublicBaseURL:   strings.TrimRight(os.Getenv("VIDCORE_S3_PUBLIC_BASE_URL"), "/"),
	}
	if v := os.Getenv("VIDCORE_S3_REGION"); v != "" {
		cfg.Region = v
	}

	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return Config{}, ErrConfig
	}
	if cfg.PublicBaseURL == "" && cfg.BaseEndpoint != "" {
		cfg.PublicBaseURL = cfg.BaseEndpoint + "/" + cfg.Bucket
	}
	if cfg.PublicBaseURL == "" {
		return Config{}, ErrConfig
	}
	return cfg, nil
}
