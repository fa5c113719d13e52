package media

import (
	"context"
	"io"
	"sync"
	"time"
)

// MemoryUploader is an in-process Uploader used by tests and DB-less dev
// mode. Objects are held in a map keyed by their object key.
type MemoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte

	// BaseURL prefixes returned URLs; defaults to "mem://media".
	BaseURL string
}

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{objects: make(map[string][]byte), BaseURL: "mem://media"}
}

func (u *MemoryUploader) Upload(_ context.Context, kind Kind, contentType string, body io.Reader) (string, error) {
	key, err := NewObjectKey(kind, contentType, time.Now().UTC())
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = data
	return u.BaseURL + "/" + key, nil
}

// Object returns a stored object's bytes by key.
func (u *MemoryUploader) Object(key string) ([]byte, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	data, ok := u.objects[key]
	return data, ok
}

// Len reports how many objects have been stored.
func (u *MemoryUploader) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.objects)
}

var _ Uploader = (*MemoryUploader)(nil)
