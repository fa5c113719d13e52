package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewObjectKey(t *testing.T) {
	now := time.Now().UTC()

	key, err := NewObjectKey(KindAvatar, "image/png", now)
	if err != nil {
		t.Fatalf("NewObjectKey: %v", err)
	}
	if !strings.HasPrefix(key, "avatars/") || !strings.HasSuffix(key, ".png") {
		t.Fatalf("key = %q", key)
	}

	other, err := NewObjectKey(KindAvatar, "image/png", now)
	if err != nil {
		t.Fatalf("NewObjectKey: %v", err)
	}
	if key == other {
		t.Fatalf("keys collided: %q", key)
	}

	if _, err := NewObjectKey(KindCover, "application/pdf", now); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("pdf: got %v, want ErrUnsupportedType", err)
	}
}

func TestMemoryUploader(t *testing.T) {
	u := NewMemoryUploader()

	url, err := u.Upload(context.Background(), KindCover, "image/jpeg", strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(url, "mem://media/covers/") || !strings.HasSuffix(url, ".jpg") {
		t.Fatalf("url = %q", url)
	}

	key := strings.TrimPrefix(url, "mem://media/")
	data, ok := u.Object(key)
	if !ok || string(data) != "jpeg bytes" {
		t.Fatalf("stored object missing or wrong: %q %v", data, ok)
	}
	if u.Len() != 1 {
		t.Fatalf("len = %d", u.Len())
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("VIDCORE_S3_BUCKET", "vidcore-media")
	t.Setenv("VIDCORE_S3_ACCESS_KEY_ID", "minio")
	t.Setenv("VIDCORE_S3_SECRET_ACCESS_KEY", "minio123")
	t.Setenv("VIDCORE_S3_ENDPOINT", "http://localhost:9000/")
	t.Setenv("VIDCORE_S3_PUBLIC_BASE_URL", "")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.BaseEndpoint != "http://localhost:9000" {
		t.Fatalf("endpoint = %q", cfg.BaseEndpoint)
	}
	if cfg.PublicBaseURL != "http://localhost:9000/vidcore-media" {
		t.Fatalf("public base = %q", cfg.PublicBaseURL)
	}

	t.Setenv("VIDCORE_S3_BUCKET", "")
	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("missing bucket: got %v, want ErrConfig", err)
	}
}
