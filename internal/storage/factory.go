package storage

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/timmy/portrait/internal/config"
)

// StorageTypeNone disables artifact storage.
const StorageTypeNone = "none"

// StorageTypeLocal stores artifacts on the local filesystem.
const StorageTypeLocal = "local"

// NewStorage creates the ObjectStorage selected by cfg.
// Parameters:
//   - cfg: storage configuration.
//
// Returns:
//   - ObjectStorage: initialized storage, or nil when storage is disabled.
//   - error: non-nil if the storage client cannot be created.
func NewStorage(cfg *config.StorageConfig) (ObjectStorage, error) {
	typ := strings.ToLower(cfg.Type)
	switch typ {
	case "", StorageTypeNone:
		return nil, nil
	case StorageTypeLocal:
		s, err := NewLocalStorage(afero.NewOsFs(), cfg.LocalPath, cfg.PublicURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case string(StorageTypeS3), string(StorageTypeR2), string(StorageTypeS3Compatible), "auto":
		storeType := StorageType(typ)
		if typ == "auto" {
			storeType = detectStorageType(cfg.Endpoint)
		}
		s, err := NewS3Storage(cfg, storeType)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// detectStorageType guesses the provider from the endpoint host.
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
