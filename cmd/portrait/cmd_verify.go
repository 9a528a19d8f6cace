package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/timmy/portrait/internal/domain"
	"github.com/timmy/portrait/internal/entropy"
	"github.com/timmy/portrait/internal/generator"
	"github.com/timmy/portrait/internal/provenance"
	"github.com/timmy/portrait/internal/service"
)

// verifyCmd checks a provenance record
var verifyCmd = &cobra.Command{
	Use:   "verify <provenance.json>",
	Short: "Verify a provenance record",
	Long: `Verify recomputes the fingerprint of a provenance record and replays its
seed to confirm that the recorded parameters are exactly what the seed
produces. Both a bare provenance record and a JSON certificate are accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	rec, err := readRecord(appFs, args[0])
	if err != nil {
		return err
	}

	stamper := provenance.NewStamper(nil)
	ok, err := stamper.Verify(rec)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("fingerprint mismatch: record was modified")
	}

	digest, err := provenance.NewDigest(rec.Digest)
	if err != nil {
		return err
	}
	pipeline := service.NewPipeline(generator.NewSeedDeriver(entropy.Local{}, nil), provenance.NewStamper(digest), service.DefaultDraws)

	art, err := pipeline.Replay(generator.Seed(rec.Seed), rec.CreatedAt, service.GenerateInput{
		Prompt:  rec.Prompt,
		Mood:    rec.Mood,
		Creator: rec.Creator,
	})
	if err != nil {
		return fmt.Errorf("replay seed: %w", err)
	}
	if art.Provenance.Fingerprint != rec.Fingerprint {
		return fmt.Errorf("replay mismatch: seed does not reproduce the recorded parameters")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "OK %s (%s, %s)\n", rec.Fingerprint, rec.Digest, rec.Mood)
	return nil
}

// readRecord accepts either a provenance record or a certificate document.
func readRecord(fs afero.Fs, path string) (*domain.ProvenanceRecord, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc provenance.CertificateDocument
	if err := json.Unmarshal(data, &doc); err == nil && doc.Provenance != nil {
		return doc.Provenance, nil
	}

	var rec domain.ProvenanceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if rec.Fingerprint == "" || rec.Seed == "" {
		return nil, fmt.Errorf("%s is not a provenance record", path)
	}
	return &rec, nil
}
