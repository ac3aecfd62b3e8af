package resource

import (
	"errors"
	"fmt"
)

// Causes carried by *LoadError.
var (
	ErrNotFound    = errors.New("asset not found")
	ErrUnsupported = errors.New("unsupported asset format")
	ErrDecode      = errors.New("asset decode failed")
	ErrUpload      = errors.New("device upload failed")
)

// ErrInvalidHandle is returned for handles that were never issued or whose
// asset has already been released.
var ErrInvalidHandle = errors.New("resource: invalid handle")

// LoadError reports an asset that exists but could not be brought into
// memory, or could not be found at all. Nothing is substituted on failure.
type LoadError struct {
	Path string
	Kind Kind
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("resource: load %s %q: %v", e.Kind, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
