package provenance

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/timmy/portrait/internal/domain"
)

// StampInput carries everything the stamper records.
type StampInput struct {
	Prompt    string
	Creator   string
	Seed      string
	Mood      domain.Mood
	Params    *domain.ArtworkParams
	CreatedAt time.Time
}

// Stamper builds provenance records and their textual forms.
type Stamper struct {
	digest Digest
}

// NewStamper creates a stamper. A nil digest selects the rolling digest.
func NewStamper(d Digest) *Stamper {
	if d == nil {
		d = rollingDigest{}
	}
	return &Stamper{digest: d}
}

// DigestName returns the name of the configured digest.
func (s *Stamper) DigestName() string {
	return s.digest.Name()
}

// Stamp builds the provenance record. The timestamp is normalized to UTC
// with millisecond precision so the fingerprint can be recomputed from a
// stored record.
func (s *Stamper) Stamp(in StampInput) (*domain.ProvenanceRecord, error) {
	if in.Params == nil {
		return nil, fmt.Errorf("stamp: nil parameters")
	}
	createdAt := in.CreatedAt.UTC().Truncate(time.Millisecond)

	fp, err := s.fingerprint(in.Seed, in.Prompt, in.Params, createdAt)
	if err != nil {
		return nil, err
	}

	return &domain.ProvenanceRecord{
		Prompt:      in.Prompt,
		PromptHash:  s.digest.Sum(in.Prompt),
		Fingerprint: fp,
		Digest:      s.digest.Name(),
		Seed:        in.Seed,
		Mood:        in.Mood,
		CreatedAt:   createdAt,
		Creator:     in.Creator,
		Parameters:  *in.Params,
	}, nil
}

// Verify recomputes the fingerprint of rec and reports whether it matches.
func (s *Stamper) Verify(rec *domain.ProvenanceRecord) (bool, error) {
	if rec.Digest != "" && rec.Digest != s.digest.Name() {
		d, err := NewDigest(rec.Digest)
		if err != nil {
			return false, err
		}
		return NewStamper(d).Verify(rec)
	}
	fp, err := s.fingerprint(rec.Seed, rec.Prompt, &rec.Parameters, rec.CreatedAt.UTC())
	if err != nil {
		return false, err
	}
	return fp == rec.Fingerprint, nil
}

func (s *Stamper) fingerprint(seed, prompt string, params *domain.ArtworkParams, at time.Time) (string, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("marshal parameters: %w", err)
	}
	var b strings.Builder
	b.WriteString(seed)
	b.WriteString(prompt)
	b.Write(data)
	b.WriteString(at.Format(time.RFC3339Nano))
	return s.digest.Sum(b.String()), nil
}
