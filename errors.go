package bramble

import (
	"errors"
	"fmt"
)

var (
	// ErrRegionNotFound is returned when a named texture region was never registered.
	ErrRegionNotFound = errors.New("bramble: texture region not found")
	// ErrTextureDisposed is returned when an operation needs a texture that was unloaded.
	ErrTextureDisposed = errors.New("bramble: texture is disposed")
	// ErrNoImage is returned when CPU-side composition needs a texture whose
	// image is no longer retained.
	ErrNoImage = errors.New("bramble: texture has no retained image")
	// ErrNotImage is returned when an asset is not a decodable image.
	ErrNotImage = errors.New("bramble: asset is not an image")
	// ErrInvalidRate is returned when a loop is run with a non-positive
	// TargetRate.
	ErrInvalidRate = errors.New("bramble: loop rate must be positive")
)

// ResourceError reports a failure to read or decode an asset, an atlas
// descriptor, a font descriptor or a config file.
type ResourceError struct {
	Op   string
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("bramble: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("bramble: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}
