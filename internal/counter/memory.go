package counter

import (
	"context"
	"sync"
	"time"

	"github.com/timmy/portrait/internal/domain"
)

// Memory keeps the counter in process memory. It resets on restart.
type Memory struct {
	mu        sync.Mutex
	total     int64
	last      *time.Time
	startedAt time.Time
	capacity  int
	log       []domain.GenerationEntry
}

// NewMemory creates an in-memory counter holding up to capacity log entries.
func NewMemory(capacity int, startedAt time.Time) *Memory {
	return &Memory{capacity: capacity, startedAt: startedAt}
}

func (m *Memory) Increment(ctx context.Context, entry domain.GenerationEntry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	entry.Number = m.total
	at := entry.CreatedAt
	m.last = &at
	m.log = trimLog(append(m.log, entry), m.capacity)
	return m.total, nil
}

func (m *Memory) Snapshot(ctx context.Context) (domain.CounterSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CounterSnapshot{Total: m.total, LastGeneratedAt: m.last, StartedAt: m.startedAt}, nil
}

func (m *Memory) Recent(ctx context.Context, limit int) ([]domain.GenerationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return newestFirst(m.log, clampLimit(limit, m.capacity)), nil
}
