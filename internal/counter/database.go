package counter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/timmy/portrait/internal/domain"
	"github.com/timmy/portrait/internal/repository"
)

// Database keeps the counter in a SQL table. Increments run in a
// transaction and are additionally serialized in-process.
type Database struct {
	mu        sync.Mutex
	repo      *repository.GenerationRepository
	capacity  int
	startedAt time.Time
}

// NewDatabase creates a database-backed counter, creating its row if needed.
func NewDatabase(ctx context.Context, repo *repository.GenerationRepository, capacity int, startedAt time.Time) (*Database, error) {
	if err := repo.EnsureCounter(ctx); err != nil {
		return nil, fmt.Errorf("init counter row: %w", err)
	}
	return &Database{repo: repo, capacity: capacity, startedAt: startedAt}, nil
}

func (d *Database) Increment(ctx context.Context, entry domain.GenerationEntry) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.repo.Increment(ctx, &entry, d.capacity)
}

func (d *Database) Snapshot(ctx context.Context) (domain.CounterSnapshot, error) {
	state, err := d.repo.GetState(ctx)
	if err != nil {
		return domain.CounterSnapshot{}, err
	}
	return domain.CounterSnapshot{Total: state.Total, LastGeneratedAt: state.LastGeneratedAt, StartedAt: d.startedAt}, nil
}

func (d *Database) Recent(ctx context.Context, limit int) ([]domain.GenerationEntry, error) {
	return d.repo.ListRecent(ctx, clampLimit(limit, d.capacity))
}
