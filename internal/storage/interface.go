package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStorage stores generated artifacts by key.
type ObjectStorage interface {
	// Upload stores the object under key, replacing any previous one.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download opens the object; it returns ErrNotFound for missing keys.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns a public URL for the object, or "" when none exists.
	GetURL(key string) string

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)
}
