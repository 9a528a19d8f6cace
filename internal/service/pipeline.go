package service

import (
	"context"
	"fmt"
	"time"

	"github.com/timmy/portrait/internal/domain"
	"github.com/timmy/portrait/internal/generator"
	"github.com/timmy/portrait/internal/provenance"
)

// DefaultDraws is how many stream values one generation draws.
const DefaultDraws = 30

// GenerateInput is the validated input of one pipeline run.
type GenerateInput struct {
	Prompt  string
	Mood    domain.Mood
	Creator string
}

// Artwork is everything one pipeline run produces.
type Artwork struct {
	Seed       generator.Seed
	Mood       domain.Mood
	Params     *domain.ArtworkParams
	CSS        string
	HTML       string
	Document   string
	Provenance *domain.ProvenanceRecord
}

// Pipeline runs seed derivation, mood resolution, synthesis, rendering and
// stamping for one prompt. It is safe for concurrent use.
type Pipeline struct {
	deriver *generator.SeedDeriver
	stamper *provenance.Stamper
	draws   int
}

// NewPipeline creates a pipeline. draws below the schema size uses DefaultDraws.
func NewPipeline(deriver *generator.SeedDeriver, stamper *provenance.Stamper, draws int) *Pipeline {
	if draws < domain.SchemaFieldCount {
		draws = DefaultDraws
	}
	return &Pipeline{deriver: deriver, stamper: stamper, draws: draws}
}

// Generate derives a fresh seed for in and renders it.
func (p *Pipeline) Generate(ctx context.Context, in GenerateInput) (*Artwork, error) {
	seed, at := p.deriver.Derive(ctx, in.Prompt, in.Creator)
	return p.Replay(seed, at, in)
}

// Replay renders a known seed. The same seed, timestamp and input always
// yield a byte-identical artwork.
func (p *Pipeline) Replay(seed generator.Seed, at time.Time, in GenerateInput) (*Artwork, error) {
	mood := generator.ResolveMood(in.Prompt, in.Mood)

	params, err := generator.Synthesize(generator.NewStream(seed).Draw(p.draws), mood)
	if err != nil {
		return nil, fmt.Errorf("synthesize parameters: %w", err)
	}

	rendered, err := generator.Render(params)
	if err != nil {
		return nil, err
	}

	rec, err := p.stamper.Stamp(provenance.StampInput{
		Prompt:    in.Prompt,
		Creator:   in.Creator,
		Seed:      string(seed),
		Mood:      mood,
		Params:    params,
		CreatedAt: at,
	})
	if err != nil {
		return nil, fmt.Errorf("stamp provenance: %w", err)
	}

	comment := provenance.CommentBlock(rec)
	return &Artwork{
		Seed:       seed,
		Mood:       mood,
		Params:     params,
		CSS:        comment + "\n" + rendered.CSS,
		HTML:       rendered.HTML,
		Document:   generator.Document(in.Prompt, comment, rendered),
		Provenance: rec,
	}, nil
}
