package provenance

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/timmy/portrait/internal/domain"
)

const certificateRule = "============================================================"

var commentEscaper = strings.NewReplacer(
	"*/", "* /",
	"<", "‹",
	">", "›",
)

// sanitizeComment makes s safe inside a CSS comment that itself sits in an
// HTML <style> element.
func sanitizeComment(s string) string {
	return commentEscaper.Replace(strings.ReplaceAll(s, "\n", " "))
}

// CommentBlock renders rec as a CSS comment suitable for embedding at the top
// of the generated stylesheet.
func CommentBlock(rec *domain.ProvenanceRecord) string {
	var b strings.Builder
	b.WriteString("/*\n")
	fmt.Fprintf(&b, " * Portrait provenance\n")
	fmt.Fprintf(&b, " * prompt:      %s\n", sanitizeComment(rec.Prompt))
	fmt.Fprintf(&b, " * mood:        %s\n", rec.Mood)
	fmt.Fprintf(&b, " * aesthetic:   %s\n", sanitizeComment(rec.Parameters.Style.Aesthetic))
	fmt.Fprintf(&b, " * fingerprint: %s (%s)\n", rec.Fingerprint, rec.Digest)
	fmt.Fprintf(&b, " * created:     %s\n", rec.CreatedAt.Format(time.RFC3339Nano))
	if rec.Creator != "" {
		fmt.Fprintf(&b, " * creator:     %s\n", sanitizeComment(rec.Creator))
	}
	b.WriteString(" */")
	return b.String()
}

// Certificate renders a human-readable certificate. A number of zero or less
// omits the generation line.
func Certificate(rec *domain.ProvenanceRecord, number int64) string {
	p := rec.Parameters
	var b strings.Builder
	b.WriteString(certificateRule + "\n")
	b.WriteString("              CERTIFICATE OF GENERATION\n")
	b.WriteString(certificateRule + "\n\n")
	if number > 0 {
		fmt.Fprintf(&b, "%-14s #%d\n", "Generation:", number)
	}
	fmt.Fprintf(&b, "%-14s %s\n", "Prompt:", rec.Prompt)
	if rec.Creator != "" {
		fmt.Fprintf(&b, "%-14s %s\n", "Creator:", rec.Creator)
	}
	fmt.Fprintf(&b, "%-14s %s\n", "Mood:", rec.Mood)
	fmt.Fprintf(&b, "%-14s %s\n", "Aesthetic:", p.Style.Aesthetic)
	fmt.Fprintf(&b, "%-14s %s\n", "Created:", rec.CreatedAt.Format(time.RFC3339Nano))
	fmt.Fprintf(&b, "%-14s %s\n", "Prompt hash:", rec.PromptHash)
	fmt.Fprintf(&b, "%-14s %s (%s)\n", "Fingerprint:", rec.Fingerprint, rec.Digest)
	b.WriteString("\nComposition\n")
	fmt.Fprintf(&b, "  %-12s %dx%d\n", "Canvas:", p.Canvas.Width, p.Canvas.Height)
	fmt.Fprintf(&b, "  %-12s %dx%d, rotated %gdeg\n", "Head:", p.Head.Width, p.Head.Height, p.Head.Rotation)
	fmt.Fprintf(&b, "  %-12s %d tendrils, curliness %g\n", "Hair:", p.Hair.TotalTendrils(), p.Hair.Curliness)
	fmt.Fprintf(&b, "  %-12s intensity %g at %ddeg, %d shadow layers\n", "Lighting:", p.Lighting.Intensity, p.Lighting.Angle, p.Lighting.ShadowLayers)
	fmt.Fprintf(&b, "  %-12s skin %s, hair %s, eye %s, lip %s\n", "Palette:",
		p.Palette.Skin.Hex(), p.Palette.Hair.Hex(), p.Palette.Eye.Hex(), p.Palette.Lip.Hex())
	b.WriteString("\n" + certificateRule + "\n")
	return b.String()
}

// CertificateDocument is the machine-readable certificate export.
type CertificateDocument struct {
	GenerationNumber int64                    `json:"generation_number,omitempty"`
	Provenance       *domain.ProvenanceRecord `json:"provenance"`
}

// MarshalCertificate renders the JSON certificate export.
func MarshalCertificate(rec *domain.ProvenanceRecord, number int64) ([]byte, error) {
	doc := CertificateDocument{Provenance: rec}
	if number > 0 {
		doc.GenerationNumber = number
	}
	return json.MarshalIndent(doc, "", "  ")
}
