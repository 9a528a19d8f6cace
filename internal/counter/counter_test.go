package counter

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/portrait/internal/config"
	"github.com/timmy/portrait/internal/domain"
	"github.com/timmy/portrait/internal/repository"
)

var started = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

func entry(i int) domain.GenerationEntry {
	return domain.GenerationEntry{
		Fingerprint: fmt.Sprintf("fp-%d", i),
		PromptHash:  fmt.Sprintf("ph-%d", i),
		Mood:        domain.MoodSerene,
		CallerHash:  "caller",
		CreatedAt:   started.Add(time.Duration(i) * time.Second),
	}
}

func newDatabaseCounter(t *testing.T, capacity int) *Database {
	t.Helper()
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "portrait.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close(db) })

	c, err := NewDatabase(context.Background(), repository.NewGenerationRepository(db), capacity, started)
	require.NoError(t, err)
	return c
}

func newFileCounter(t *testing.T, capacity int) *File {
	t.Helper()
	c, err := NewFile(afero.NewMemMapFs(), "/data/counter.json", capacity, started)
	require.NoError(t, err)
	return c
}

func backends(t *testing.T, capacity int) map[string]Counter {
	return map[string]Counter{
		BackendMemory:   NewMemory(capacity, started),
		BackendFile:     newFileCounter(t, capacity),
		BackendDatabase: newDatabaseCounter(t, capacity),
	}
}

func TestIncrementSequential(t *testing.T) {
	for name, c := range backends(t, 5) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 1; i <= 8; i++ {
				n, err := c.Increment(ctx, entry(i))
				require.NoError(t, err)
				assert.Equal(t, int64(i), n)
			}

			snap, err := c.Snapshot(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(8), snap.Total)
			require.NotNil(t, snap.LastGeneratedAt)
			assert.True(t, snap.LastGeneratedAt.Equal(entry(8).CreatedAt))
			assert.Equal(t, started, snap.StartedAt)

			recent, err := c.Recent(ctx, 0)
			require.NoError(t, err)
			require.Len(t, recent, 5)
			assert.Equal(t, int64(8), recent[0].Number)
			assert.Equal(t, int64(4), recent[4].Number)
			assert.Equal(t, "fp-8", recent[0].Fingerprint)

			recent, err = c.Recent(ctx, 2)
			require.NoError(t, err)
			assert.Len(t, recent, 2)
		})
	}
}

func TestIncrementConcurrent(t *testing.T) {
	const workers = 50

	for name, c := range backends(t, 100) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			var mu sync.Mutex
			var numbers []int64

			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					n, err := c.Increment(ctx, entry(i))
					if !assert.NoError(t, err) {
						return
					}
					mu.Lock()
					numbers = append(numbers, n)
					mu.Unlock()
				}(i)
			}
			wg.Wait()

			require.Len(t, numbers, workers)
			sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
			for i, n := range numbers {
				assert.Equal(t, int64(i+1), n, "numbers must be unique and gap-free")
			}

			snap, err := c.Snapshot(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(workers), snap.Total)
		})
	}
}

func TestEmptySnapshot(t *testing.T) {
	for name, c := range backends(t, 10) {
		t.Run(name, func(t *testing.T) {
			snap, err := c.Snapshot(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(0), snap.Total)
			assert.Nil(t, snap.LastGeneratedAt)

			recent, err := c.Recent(context.Background(), 10)
			require.NoError(t, err)
			assert.Empty(t, recent)
		})
	}
}

func TestFileCounterSurvivesRestart(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := context.Background()

	first, err := NewFile(fs, "/var/portrait/counter.json", 3, started)
	require.NoError(t, err)
	for i := 1; i <= 4; i++ {
		_, err := first.Increment(ctx, entry(i))
		require.NoError(t, err)
	}

	second, err := NewFile(fs, "/var/portrait/counter.json", 3, started)
	require.NoError(t, err)
	n, err := second.Increment(ctx, entry(5))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	recent, err := second.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, int64(5), recent[0].Number)

	exists, err := afero.Exists(fs, "/var/portrait/counter.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileCounterRejectsCorruptDocument(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.json", []byte("{not json"), 0644))

	_, err := NewFile(fs, "/c.json", 10, started)
	assert.Error(t, err)
}

type failingFs struct {
	afero.Fs
}

func (failingFs) Rename(oldname, newname string) error {
	return fmt.Errorf("disk full")
}

func TestFileCounterKeepsStateOnWriteFailure(t *testing.T) {
	c, err := NewFile(failingFs{Fs: afero.NewMemMapFs()}, "/c.json", 10, started)
	require.NoError(t, err)

	_, err = c.Increment(context.Background(), entry(1))
	require.Error(t, err)

	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Total)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, &config.CounterConfig{Backend: BackendMemory}, nil, started)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = New(ctx, &config.CounterConfig{Backend: BackendDatabase}, nil, started)
	assert.Error(t, err)

	_, err = New(ctx, &config.CounterConfig{Backend: "etcd"}, nil, started)
	assert.Error(t, err)

	c, err = New(ctx, &config.CounterConfig{Backend: BackendFile, FilePath: filepath.Join(t.TempDir(), "c.json")}, nil, started)
	require.NoError(t, err)
	assert.IsType(t, &File{}, c)
}
