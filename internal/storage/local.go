package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// LocalStorage keeps objects as files under a base directory.
type LocalStorage struct {
	fs        afero.Fs
	publicURL string
}

// NewLocalStorage roots storage at dir on fs.
func NewLocalStorage(fs afero.Fs, dir, publicURL string) (*LocalStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("local storage requires a directory")
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{
		fs:        afero.NewBasePathFs(fs, dir),
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

func cleanKey(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return clean, nil
}

func (s *LocalStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	name, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(path.Dir(name), 0755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}
	tmp := name + ".tmp"
	f, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		return fmt.Errorf("failed to upload object: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return s.fs.Rename(tmp, name)
}

func (s *LocalStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	name, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download object: %w", err)
	}
	return f, nil
}

// GetURL returns the public URL, or "" without a configured public prefix.
func (s *LocalStorage) GetURL(key string) string {
	if s.publicURL == "" {
		return ""
	}
	return s.publicURL + "/" + strings.TrimPrefix(key, "/")
}

func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	name, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, name)
}
