package media

import "errors"

var (
	// ErrConfig is returned for invalid object-store configuration.
	ErrConfig = errors.New("invalid media config")

	// ErrUnsupportedType is returned when an upload's content type is not an
	// accepted image format.
	ErrUnsupportedType = errors.New("unsupported image type")
)
