package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/portrait/internal/counter"
	"github.com/timmy/portrait/internal/domain"
	"github.com/timmy/portrait/internal/gatekeeper"
	"github.com/timmy/portrait/internal/logger"
	"github.com/timmy/portrait/internal/provenance"
)

// CodeInvalidMood is the rejection code for an unknown preset mood.
const CodeInvalidMood = "invalid_mood"

// GenerateRequest is one incoming generation request.
type GenerateRequest struct {
	Prompt     string
	PresetMood string
	Creator    string
	Caller     string // hashed client address
}

// GenerationResult is the outcome of an accepted request.
type GenerationResult struct {
	Number      int64
	Artwork     *Artwork
	Certificate string
	ArtifactURL string
}

// GenerationService admits, generates, numbers and stores portraits.
type GenerationService struct {
	gate      *gatekeeper.Gatekeeper
	pipeline  *Pipeline
	counter   counter.Counter
	artifacts *ArtifactService
}

// NewGenerationService creates a new generation service.
// Parameters:
//   - gate: request validation and quota.
//   - pipeline: generation pipeline.
//   - ctr: generation counter.
//   - artifacts: artifact cache and storage.
//
// Returns:
//   - *GenerationService: initialized service.
func NewGenerationService(gate *gatekeeper.Gatekeeper, pipeline *Pipeline, ctr counter.Counter, artifacts *ArtifactService) *GenerationService {
	return &GenerationService{
		gate:      gate,
		pipeline:  pipeline,
		counter:   ctr,
		artifacts: artifacts,
	}
}

// Generate runs one request end to end. The quota slot is released if
// generation or numbering fails; a storage failure is logged and does not
// fail the request.
// Returns:
//   - *GenerationResult: numbered artwork and certificate.
//   - error: *gatekeeper.ValidationError, *gatekeeper.QuotaError,
//     *domain.InvariantError or an internal error.
func (s *GenerationService) Generate(ctx context.Context, req GenerateRequest) (*GenerationResult, error) {
	start := time.Now()

	var preset domain.Mood
	if req.PresetMood != "" {
		m, err := domain.ParseMood(req.PresetMood)
		if err != nil {
			return nil, &gatekeeper.ValidationError{Code: CodeInvalidMood, Reason: err.Error()}
		}
		preset = m
	}

	adm, err := s.gate.Admit(req.Prompt, req.Caller)
	if err != nil {
		return nil, err
	}

	art, err := s.pipeline.Generate(ctx, GenerateInput{Prompt: adm.Prompt, Mood: preset, Creator: req.Creator})
	if err != nil {
		adm.Release()
		logger.CtxError(ctx, "Generation failed: error=%v", err)
		return nil, err
	}

	rec := art.Provenance
	number, err := s.counter.Increment(ctx, domain.GenerationEntry{
		Fingerprint: rec.Fingerprint,
		PromptHash:  rec.PromptHash,
		Mood:        rec.Mood,
		CallerHash:  req.Caller,
		CreatedAt:   rec.CreatedAt,
	})
	if err != nil {
		adm.Release()
		return nil, fmt.Errorf("record generation: %w", err)
	}
	ctx = logger.SetGeneration(ctx, number)

	artifact := &Artifact{Number: number, Document: art.Document, Provenance: rec}
	url, err := s.artifacts.Save(ctx, artifact)
	switch {
	case errors.Is(err, ErrArtifactExists):
		logger.CtxError(ctx, "Generation number already stored, keeping the earlier artifact: error=%v", err)
	case err != nil:
		logger.CtxWarn(ctx, "Failed to store artifacts: error=%v", err)
	}

	logger.With(logger.Fields{
		logger.FieldMood: rec.Mood,
		"aesthetic":      art.Params.Style.Aesthetic,
		"fingerprint":    rec.Fingerprint,
	}).WithDuration(time.Since(start)).Info(ctx, "Portrait generated")

	return &GenerationResult{
		Number:      number,
		Artwork:     art,
		Certificate: provenance.Certificate(rec, number),
		ArtifactURL: url,
	}, nil
}

// Counter returns the current counter snapshot.
func (s *GenerationService) Counter(ctx context.Context) (domain.CounterSnapshot, error) {
	return s.counter.Snapshot(ctx)
}

// Recent returns the newest log entries.
func (s *GenerationService) Recent(ctx context.Context, limit int) ([]domain.GenerationEntry, error) {
	return s.counter.Recent(ctx, limit)
}

// Artifact returns the stored artifact for a generation number.
func (s *GenerationService) Artifact(ctx context.Context, number int64) (*Artifact, error) {
	return s.artifacts.Get(ctx, number)
}

// Remaining reports the caller's unused quota.
func (s *GenerationService) Remaining(caller string) int {
	return s.gate.Remaining(caller)
}
