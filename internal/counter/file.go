package counter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/timmy/portrait/internal/domain"
	"github.com/timmy/portrait/internal/logger"
)

type fileState struct {
	Total           int64                    `json:"total"`
	LastGeneratedAt *time.Time               `json:"last_generated_at,omitempty"`
	Recent          []domain.GenerationEntry `json:"recent"`
}

// File persists the counter as a JSON document. Every increment rewrites
// the document through a temp file and rename, so a crash leaves either the
// old or the new state on disk.
type File struct {
	mu        sync.Mutex
	fs        afero.Fs
	path      string
	capacity  int
	startedAt time.Time
	state     fileState
}

// NewFile opens or creates the counter document at path.
// Returns:
//   - *File: counter loaded from disk.
//   - error: non-nil if the document exists but cannot be read.
func NewFile(fs afero.Fs, path string, capacity int, startedAt time.Time) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("file counter requires a path")
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create counter directory: %w", err)
	}

	f := &File{fs: fs, path: path, capacity: capacity, startedAt: startedAt}
	if err := f.load(); err != nil {
		return nil, err
	}
	logger.With(logger.Fields{"path": path, "total": f.state.Total}).Info(context.Background(), "File counter loaded")
	return f, nil
}

func (f *File) load() error {
	data, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read counter file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &f.state); err != nil {
		return fmt.Errorf("decode counter file: %w", err)
	}
	f.state.Recent = trimLog(f.state.Recent, f.capacity)
	return nil
}

func (f *File) store(st fileState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("write counter file: %w", err)
	}
	if err := f.fs.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace counter file: %w", err)
	}
	return nil
}

func (f *File) Increment(ctx context.Context, entry domain.GenerationEntry) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.state
	next.Total++
	entry.Number = next.Total
	at := entry.CreatedAt
	next.LastGeneratedAt = &at
	next.Recent = trimLog(append(append([]domain.GenerationEntry(nil), f.state.Recent...), entry), f.capacity)

	// commit in memory only once the document is on disk
	if err := f.store(next); err != nil {
		return 0, err
	}
	f.state = next
	return next.Total, nil
}

func (f *File) Snapshot(ctx context.Context) (domain.CounterSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.CounterSnapshot{Total: f.state.Total, LastGeneratedAt: f.state.LastGeneratedAt, StartedAt: f.startedAt}, nil
}

func (f *File) Recent(ctx context.Context, limit int) ([]domain.GenerationEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return newestFirst(f.state.Recent, clampLimit(limit, f.capacity)), nil
}
