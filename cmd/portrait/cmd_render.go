package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/timmy/portrait/internal/domain"
	"github.com/timmy/portrait/internal/entropy"
	"github.com/timmy/portrait/internal/gatekeeper"
	"github.com/timmy/portrait/internal/generator"
	"github.com/timmy/portrait/internal/provenance"
	"github.com/timmy/portrait/internal/service"
)

var (
	renderMood    string
	renderCreator string
	renderSeed    string
	renderAt      string
	renderOut     string
	renderDigest  string
)

// renderCmd renders one portrait to a directory
var renderCmd = &cobra.Command{
	Use:   "render <prompt>",
	Short: "Render a portrait from a prompt",
	Long: `Render a portrait and write portrait.html, certificate.txt and
provenance.json to the output directory.

With --seed the given seed is replayed instead of deriving a fresh one, so a
seed taken from a provenance record reproduces the same artwork.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderMood, "mood", "", "Preset mood (melancholic, hopeful, dramatic, serene, joyful)")
	renderCmd.Flags().StringVar(&renderCreator, "creator", "", "Creator name recorded in the provenance")
	renderCmd.Flags().StringVar(&renderSeed, "seed", "", "Replay this seed instead of deriving one")
	renderCmd.Flags().StringVar(&renderAt, "at", "", "Creation time (RFC3339) recorded when replaying a seed")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", ".", "Output directory")
	renderCmd.Flags().StringVar(&renderDigest, "digest", provenance.DigestRolling, "Fingerprint digest (rolling or sha256)")
}

func runRender(cmd *cobra.Command, args []string) error {
	prompt, err := gatekeeper.DefaultPolicy().Validate(strings.Join(args, " "))
	if err != nil {
		return err
	}

	var mood domain.Mood
	if renderMood != "" {
		if mood, err = domain.ParseMood(renderMood); err != nil {
			return err
		}
	}

	digest, err := provenance.NewDigest(renderDigest)
	if err != nil {
		return err
	}
	pipeline := service.NewPipeline(generator.NewSeedDeriver(entropy.Local{}, nil), provenance.NewStamper(digest), service.DefaultDraws)
	in := service.GenerateInput{Prompt: prompt, Mood: mood, Creator: renderCreator}

	var art *service.Artwork
	if renderSeed != "" {
		at := time.Now()
		if renderAt != "" {
			if at, err = time.Parse(time.RFC3339Nano, renderAt); err != nil {
				return fmt.Errorf("invalid --at: %w", err)
			}
		}
		art, err = pipeline.Replay(generator.Seed(renderSeed), at, in)
	} else {
		art, err = pipeline.Generate(context.Background(), in)
	}
	if err != nil {
		return err
	}

	if err := writeArtwork(appFs, renderOut, art); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "mood:        %s\n", art.Mood)
	fmt.Fprintf(cmd.OutOrStdout(), "aesthetic:   %s\n", art.Params.Style.Aesthetic)
	fmt.Fprintf(cmd.OutOrStdout(), "fingerprint: %s\n", art.Provenance.Fingerprint)
	fmt.Fprintf(cmd.OutOrStdout(), "written to:  %s\n", renderOut)
	return nil
}

func writeArtwork(fs afero.Fs, dir string, art *service.Artwork) error {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	prov, err := json.MarshalIndent(art.Provenance, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal provenance: %w", err)
	}

	files := map[string][]byte{
		service.ArtifactPortrait:    []byte(art.Document),
		service.ArtifactCertificate: []byte(provenance.Certificate(art.Provenance, 0)),
		service.ArtifactProvenance:  prov,
	}
	for name, data := range files {
		if err := afero.WriteFile(fs, filepath.Join(dir, name), data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
