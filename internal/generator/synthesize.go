package generator

import (
	"errors"
	"fmt"
	"math"

	"github.com/timmy/portrait/internal/domain"
)

// ErrSchemaMismatch is returned when fewer values are supplied than the
// artwork schema consumes.
var ErrSchemaMismatch = errors.New("value stream shorter than artwork schema")

// Brightness offsets applied to the mood palette.
const (
	skinShift    = 24
	hairShift    = -20
	eyeShift     = -40
	lipShift     = 8
	ambientShift = -16
	shadowShift  = 12
)

// valueReader hands out stream values in schema order, scaled to [0,1].
type valueReader struct {
	values []float64
	pos    int
}

func (r *valueReader) next() float64 {
	v := r.values[r.pos] / 100
	r.pos++
	return v
}

func (r *valueReader) float(rng domain.Range) float64 {
	v := rng.Min + r.next()*(rng.Max-rng.Min)
	return math.Round(v*1000) / 1000
}

func (r *valueReader) int(rng domain.Range) int {
	return int(rng.Min) + bucket(r.next(), int(rng.Max-rng.Min)+1)
}

// bucket maps v onto one of n equal buckets. v == 1 lands in the top bucket;
// anything outside [0,1] maps outside [0,n) so validation can reject it.
func bucket(v float64, n int) int {
	if v == 1 {
		return n - 1
	}
	return int(math.Floor(v * float64(n)))
}

// Synthesize maps stream values (each in [0,100]) onto a complete
// ArtworkParams record for the given mood. Values are consumed in a fixed
// order; extra values are ignored.
// Parameters:
//   - values: drawn stream values, at least domain.SchemaFieldCount of them.
//   - mood: resolved mood supplying the palette.
//
// Returns:
//   - *domain.ArtworkParams: validated parameters.
//   - error: ErrSchemaMismatch or *domain.InvariantError.
func Synthesize(values []float64, mood domain.Mood) (*domain.ArtworkParams, error) {
	if len(values) < domain.SchemaFieldCount {
		return nil, fmt.Errorf("%w: have %d values, need %d", ErrSchemaMismatch, len(values), domain.SchemaFieldCount)
	}

	r := &valueReader{values: values}
	p := &domain.ArtworkParams{}

	p.Canvas.Width = r.int(domain.CanvasWidthRange)
	p.Canvas.Height = r.int(domain.CanvasHeightRange)

	p.Head.X = r.float(domain.HeadXRange)
	p.Head.Y = r.float(domain.HeadYRange)
	p.Head.Width = r.int(domain.HeadWidthRange)
	p.Head.Height = r.int(domain.HeadHeightRange)
	p.Head.Rotation = r.float(domain.HeadRotationRange)
	for i := range p.Head.Radii {
		p.Head.Radii[i] = r.float(domain.HeadRadiusRange)
	}
	p.Head.BorderRadius = borderRadius(p.Head.Radii)

	p.Hair.FrontCount = r.int(domain.FrontTendrilRange)
	p.Hair.BackCount = r.int(domain.BackTendrilRange)
	p.Hair.HighlightCount = r.int(domain.HighlightTendrilRange)
	p.Hair.Curliness = r.float(domain.CurlinessRange)
	p.Hair.FlowAngle = r.float(domain.FlowAngleRange)
	p.Hair.Length = r.int(domain.HairLengthRange)

	p.Features.EyeScale = r.float(domain.EyeScaleRange)
	p.Features.NoseScale = r.float(domain.NoseScaleRange)
	p.Features.LipScale = r.float(domain.LipScaleRange)
	p.Features.EyeSpacing = r.int(domain.EyeSpacingRange)

	p.Lighting.Intensity = r.float(domain.LightIntensityRange)
	p.Lighting.Angle = r.int(domain.LightAngleRange)
	p.Lighting.ShadowLayers = r.int(domain.ShadowLayerRange)

	p.Style.Blur = r.float(domain.BlurRange)
	p.Style.Contrast = r.float(domain.ContrastRange)
	p.Style.Saturation = r.float(domain.SaturationRange)
	if idx := bucket(r.next(), len(domain.Aesthetics)); idx >= 0 && idx < len(domain.Aesthetics) {
		p.Style.Aesthetic = domain.Aesthetics[idx]
	}

	p.Palette = derivePalette(mood.Palette())

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func derivePalette(m domain.MoodPalette) domain.DerivedPalette {
	return domain.DerivedPalette{
		Skin:    m.Primary.Shift(skinShift),
		Hair:    m.Secondary.Shift(hairShift),
		Eye:     m.Accent.Shift(eyeShift),
		Lip:     m.Accent.Shift(lipShift),
		Ambient: m.Highlight.Shift(ambientShift),
		Shadow:  m.Shadow.Shift(shadowShift),
	}
}

// borderRadius builds the elliptical CSS border-radius from the four corner
// radii. Vertical radii mirror the horizontal ones so opposite corners stay
// complementary.
func borderRadius(r [4]float64) string {
	return fmt.Sprintf("%s%% %s%% %s%% %s%% / %s%% %s%% %s%% %s%%",
		formatNum(r[0], 1), formatNum(r[1], 1), formatNum(r[2], 1), formatNum(r[3], 1),
		formatNum(100-r[1], 1), formatNum(100-r[0], 1), formatNum(100-r[3], 1), formatNum(100-r[2], 1))
}
