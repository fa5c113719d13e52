package media

import (
	"context"
	"io"
	"time"

	"vidcore/cmd/identity/ids"
)

// Kind is a media category; it selects the key prefix an object lands under.
type Kind string

const (
	KindAvatar Kind = "avatars"
	KindCover  Kind = "covers"
)

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, kind Kind, contentType string, body io.Reader) (string, error)
}

// extByType maps accepted image content types to object-key extensions.
var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ExtForContentType returns the key extension for an accepted image content
// type, or ErrUnsupportedType.
func ExtForContentType(contentType string) (string, error) {
	ext, ok := extByType[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

// NewObjectKey builds a collision-free object key: <kind>/<ulid><ext>.
func NewObjectKey(kind Kind, contentType string, now time.Time) (string, error) {
	ext, err := ExtForContentType(contentType)
	if err != nil {
		return "", err
	}
	id, err := ids.NewULID(now)
	if err != nil {
		return "", err
	}
	return string(kind) + "/" + id + ext, nil
}
