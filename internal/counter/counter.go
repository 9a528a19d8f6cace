// Package counter keeps the global generation count and a bounded log of
// recent generations.
package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/timmy/portrait/internal/config"
	"github.com/timmy/portrait/internal/domain"
	"github.com/timmy/portrait/internal/repository"
	"gorm.io/gorm"
)

// Backend names.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendDatabase = "database"
)

// DefaultRecentLimit is used when no log capacity is configured.
const DefaultRecentLimit = 100

// Counter is the single writer for the generation total. Increment is safe
// for concurrent use and returns strictly increasing numbers.
type Counter interface {
	// Increment assigns the next number to entry, records it and returns it.
	Increment(ctx context.Context, entry domain.GenerationEntry) (int64, error)
	// Snapshot returns the current total.
	Snapshot(ctx context.Context) (domain.CounterSnapshot, error)
	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]domain.GenerationEntry, error)
}

// New builds the counter selected by cfg.
// Parameters:
//   - cfg: counter configuration.
//   - db: database handle; required for the database backend only.
//   - startedAt: process start time reported in snapshots.
//
// Returns:
//   - Counter: the configured backend.
//   - error: non-nil if the backend cannot be initialized.
func New(ctx context.Context, cfg *config.CounterConfig, db *gorm.DB, startedAt time.Time) (Counter, error) {
	limit := cfg.RecentLimit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(limit, startedAt), nil
	case BackendFile:
		return NewFile(afero.NewOsFs(), cfg.FilePath, limit, startedAt)
	case BackendDatabase:
		if db == nil {
			return nil, fmt.Errorf("database counter requires a database connection")
		}
		return NewDatabase(ctx, repository.NewGenerationRepository(db), limit, startedAt)
	default:
		return nil, fmt.Errorf("unsupported counter backend: %s", cfg.Backend)
	}
}

func clampLimit(limit, capacity int) int {
	if limit <= 0 || limit > capacity {
		return capacity
	}
	return limit
}

// newestFirst returns up to limit entries of log (oldest first) in reverse.
func newestFirst(log []domain.GenerationEntry, limit int) []domain.GenerationEntry {
	n := min(limit, len(log))
	out := make([]domain.GenerationEntry, 0, n)
	for i := len(log) - 1; i >= len(log)-n; i-- {
		out = append(out, log[i])
	}
	return out
}

// trimLog drops the oldest entries beyond capacity.
func trimLog(log []domain.GenerationEntry, capacity int) []domain.GenerationEntry {
	if len(log) <= capacity {
		return log
	}
	return append([]domain.GenerationEntry(nil), log[len(log)-capacity:]...)
}
