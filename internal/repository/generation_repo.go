package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/portrait/internal/domain"
	"gorm.io/gorm"
)

// counterRowID is the primary key of the single counter row.
const counterRowID = 1

// GenerationRepository persists the generation counter and its recent log.
type GenerationRepository struct {
	db *gorm.DB
}

// NewGenerationRepository creates a new repository.
func NewGenerationRepository(db *gorm.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

// EnsureCounter creates the counter row if it does not exist yet.
func (r *GenerationRepository) EnsureCounter(ctx context.Context) error {
	state := domain.CounterState{ID: counterRowID}
	return r.db.WithContext(ctx).FirstOrCreate(&state, domain.CounterState{ID: counterRowID}).Error
}

// Increment bumps the counter, assigns the new total to entry.Number and
// appends entry to the log in one transaction. Entries older than keep are
// trimmed; keep <= 0 keeps everything.
// Returns:
//   - int64: the new total, equal to entry.Number.
//   - error: non-nil if the transaction fails.
func (r *GenerationRepository) Increment(ctx context.Context, entry *domain.GenerationEntry, keep int) (int64, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.CounterState{}).
			Where("id = ?", counterRowID).
			Updates(map[string]interface{}{
				"total":             gorm.Expr("total + ?", 1),
				"last_generated_at": entry.CreatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("counter row %d missing", counterRowID)
		}

		var state domain.CounterState
		if err := tx.First(&state, counterRowID).Error; err != nil {
			return err
		}
		entry.Number = state.Total

		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		if keep > 0 && state.Total > int64(keep) {
			return tx.Where("number <= ?", state.Total-int64(keep)).Delete(&domain.GenerationEntry{}).Error
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment counter: %w", err)
	}
	return entry.Number, nil
}

// GetState returns the counter row.
func (r *GenerationRepository) GetState(ctx context.Context) (*domain.CounterState, error) {
	var state domain.CounterState
	err := r.db.WithContext(ctx).First(&state, counterRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.CounterState{ID: counterRowID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// ListRecent returns up to limit entries, newest first.
func (r *GenerationRepository) ListRecent(ctx context.Context, limit int) ([]domain.GenerationEntry, error) {
	var entries []domain.GenerationEntry
	err := r.db.WithContext(ctx).
		Order("number DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
