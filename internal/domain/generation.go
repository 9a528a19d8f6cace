package domain

import "time"

// ProvenanceRecord captures what inputs produced a given artifact. It is
// created once the parameters are final and never mutated afterwards.
type ProvenanceRecord struct {
	Prompt      string        `json:"prompt"`
	PromptHash  string        `json:"prompt_hash"`
	Fingerprint string        `json:"fingerprint"`
	Digest      string        `json:"digest"`
	Seed        string        `json:"seed"`
	Mood        Mood          `json:"mood"`
	CreatedAt   time.Time     `json:"created_at"`
	Creator     string        `json:"creator,omitempty"`
	Parameters  ArtworkParams `json:"parameters"`
}

// GenerationEntry is one row of the recent-requests log.
type GenerationEntry struct {
	Number      int64     `gorm:"primaryKey;autoIncrement:false" json:"generation_number"`
	Fingerprint string    `gorm:"type:text;not null" json:"fingerprint"`
	PromptHash  string    `gorm:"type:text;not null;index:idx_generation_entries_prompt_hash" json:"prompt_hash"`
	Mood        Mood      `gorm:"type:text" json:"mood"`
	CallerHash  string    `gorm:"type:text;index:idx_generation_entries_caller" json:"caller_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for GenerationEntry.
func (GenerationEntry) TableName() string {
	return "generation_entries"
}

// CounterState is the single persisted counter row.
type CounterState struct {
	ID              uint       `gorm:"primaryKey"`
	Total           int64      `gorm:"not null;default:0"`
	LastGeneratedAt *time.Time `gorm:"column:last_generated_at"`
	UpdatedAt       time.Time
}

// TableName returns the database table name for CounterState.
func (CounterState) TableName() string {
	return "generation_counters"
}

// CounterSnapshot is the read-only view served by the counter endpoint.
type CounterSnapshot struct {
	Total           int64      `json:"total"`
	LastGeneratedAt *time.Time `json:"last_generated_at,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
}
