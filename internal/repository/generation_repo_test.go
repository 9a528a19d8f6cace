package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/portrait/internal/config"
	"github.com/timmy/portrait/internal/domain"
)

func newTestRepo(t *testing.T) *GenerationRepository {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "repo.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	repo := NewGenerationRepository(db)
	require.NoError(t, repo.EnsureCounter(context.Background()))
	return repo
}

func TestIncrementTrimsLog(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 6; i++ {
		e := &domain.GenerationEntry{
			Fingerprint: fmt.Sprintf("fp-%d", i),
			PromptHash:  "ph",
			Mood:        domain.MoodJoyful,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		n, err := repo.Increment(ctx, e, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(i), n)
		assert.Equal(t, int64(i), e.Number)
	}

	state, err := repo.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), state.Total)
	require.NotNil(t, state.LastGeneratedAt)
	assert.True(t, base.Add(6*time.Minute).Equal(*state.LastGeneratedAt))

	recent, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []int64{6, 5, 4}, []int64{recent[0].Number, recent[1].Number, recent[2].Number})
}

func TestEnsureCounterIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Increment(ctx, &domain.GenerationEntry{Fingerprint: "a", PromptHash: "b", CreatedAt: time.Now()}, 0)
	require.NoError(t, err)
	require.NoError(t, repo.EnsureCounter(ctx))

	state, err := repo.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.Total)
}
