package domain

import (
	"fmt"
	"math"
)

// SchemaFieldCount is the number of stream values consumed to build one
// ArtworkParams record.
const SchemaFieldCount = 28

// Range is an inclusive numeric bound.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within [Min,Max].
func (r Range) Contains(v float64) bool {
	return !math.IsNaN(v) && v >= r.Min && v <= r.Max
}

// Documented bounds for every numeric field of ArtworkParams.
var (
	CanvasWidthRange      = Range{Min: 480, Max: 720}
	CanvasHeightRange     = Range{Min: 600, Max: 900}
	HeadXRange            = Range{Min: 40, Max: 60}
	HeadYRange            = Range{Min: 38, Max: 50}
	HeadWidthRange        = Range{Min: 160, Max: 240}
	HeadHeightRange       = Range{Min: 210, Max: 300}
	HeadRotationRange     = Range{Min: -8, Max: 8}
	HeadRadiusRange       = Range{Min: 40, Max: 60}
	FrontTendrilRange     = Range{Min: 8, Max: 24}
	BackTendrilRange      = Range{Min: 10, Max: 30}
	HighlightTendrilRange = Range{Min: 3, Max: 10}
	CurlinessRange        = Range{Min: 0, Max: 1}
	FlowAngleRange        = Range{Min: -45, Max: 45}
	HairLengthRange       = Range{Min: 120, Max: 260}
	EyeScaleRange         = Range{Min: 0.8, Max: 1.3}
	NoseScaleRange        = Range{Min: 0.7, Max: 1.2}
	LipScaleRange         = Range{Min: 0.8, Max: 1.3}
	EyeSpacingRange       = Range{Min: 28, Max: 44}
	LightIntensityRange   = Range{Min: 0.2, Max: 1.0}
	LightAngleRange       = Range{Min: 0, Max: 359}
	ShadowLayerRange      = Range{Min: 2, Max: 6}
	BlurRange             = Range{Min: 0, Max: 3}
	ContrastRange         = Range{Min: 0.9, Max: 1.4}
	SaturationRange       = Range{Min: 0.8, Max: 1.3}
)

// Aesthetics is the closed set of style tags.
var Aesthetics = []string{"renaissance", "impressionist", "noir", "pastel", "surreal"}

// ArtworkParams is the full structured recipe for one generated portrait.
type ArtworkParams struct {
	Canvas   Canvas         `json:"canvas"`
	Palette  DerivedPalette `json:"palette"`
	Head     Head           `json:"head"`
	Hair     Hair           `json:"hair"`
	Features Features       `json:"features"`
	Lighting Lighting       `json:"lighting"`
	Style    Style          `json:"style"`
}

type Canvas struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DerivedPalette holds the brightness-shifted mood colours.
type DerivedPalette struct {
	Skin    Color `json:"skin"`
	Hair    Color `json:"hair"`
	Eye     Color `json:"eye"`
	Lip     Color `json:"lip"`
	Ambient Color `json:"ambient"`
	Shadow  Color `json:"shadow"`
}

// Head positions are percentages of the canvas; sizes are pixels.
type Head struct {
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	Rotation     float64    `json:"rotation"`
	Radii        [4]float64 `json:"radii"`
	BorderRadius string     `json:"border_radius"`
}

type Hair struct {
	FrontCount     int     `json:"front_count"`
	BackCount      int     `json:"back_count"`
	HighlightCount int     `json:"highlight_count"`
	Curliness      float64 `json:"curliness"`
	FlowAngle      float64 `json:"flow_angle"`
	Length         int     `json:"length"`
}

// TotalTendrils is the number of hair elements the renderer emits.
func (h Hair) TotalTendrils() int {
	return h.FrontCount + h.BackCount + h.HighlightCount
}

type Features struct {
	EyeScale   float64 `json:"eye_scale"`
	NoseScale  float64 `json:"nose_scale"`
	LipScale   float64 `json:"lip_scale"`
	EyeSpacing int     `json:"eye_spacing"`
}

type Lighting struct {
	Intensity    float64 `json:"intensity"`
	Angle        int     `json:"angle"`
	ShadowLayers int     `json:"shadow_layers"`
}

type Style struct {
	Blur       float64 `json:"blur"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	Aesthetic  string  `json:"aesthetic"`
}

// InvariantError reports a field that fell outside its documented range.
// It always indicates a synthesizer bug and is never clamped away.
type InvariantError struct {
	Field string
	Value float64
	Range Range
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("artwork parameter %s=%v outside [%v,%v]", e.Field, e.Value, e.Range.Min, e.Range.Max)
}

type fieldCheck struct {
	name  string
	value float64
	rng   Range
}

func (p *ArtworkParams) checks() []fieldCheck {
	return []fieldCheck{
		{"canvas.width", float64(p.Canvas.Width), CanvasWidthRange},
		{"canvas.height", float64(p.Canvas.Height), CanvasHeightRange},
		{"head.x", p.Head.X, HeadXRange},
		{"head.y", p.Head.Y, HeadYRange},
		{"head.width", float64(p.Head.Width), HeadWidthRange},
		{"head.height", float64(p.Head.Height), HeadHeightRange},
		{"head.rotation", p.Head.Rotation, HeadRotationRange},
		{"head.radii[0]", p.Head.Radii[0], HeadRadiusRange},
		{"head.radii[1]", p.Head.Radii[1], HeadRadiusRange},
		{"head.radii[2]", p.Head.Radii[2], HeadRadiusRange},
		{"head.radii[3]", p.Head.Radii[3], HeadRadiusRange},
		{"hair.front_count", float64(p.Hair.FrontCount), FrontTendrilRange},
		{"hair.back_count", float64(p.Hair.BackCount), BackTendrilRange},
		{"hair.highlight_count", float64(p.Hair.HighlightCount), HighlightTendrilRange},
		{"hair.curliness", p.Hair.Curliness, CurlinessRange},
		{"hair.flow_angle", p.Hair.FlowAngle, FlowAngleRange},
		{"hair.length", float64(p.Hair.Length), HairLengthRange},
		{"features.eye_scale", p.Features.EyeScale, EyeScaleRange},
		{"features.nose_scale", p.Features.NoseScale, NoseScaleRange},
		{"features.lip_scale", p.Features.LipScale, LipScaleRange},
		{"features.eye_spacing", float64(p.Features.EyeSpacing), EyeSpacingRange},
		{"lighting.intensity", p.Lighting.Intensity, LightIntensityRange},
		{"lighting.angle", float64(p.Lighting.Angle), LightAngleRange},
		{"lighting.shadow_layers", float64(p.Lighting.ShadowLayers), ShadowLayerRange},
		{"style.blur", p.Style.Blur, BlurRange},
		{"style.contrast", p.Style.Contrast, ContrastRange},
		{"style.saturation", p.Style.Saturation, SaturationRange},
	}
}

// Validate checks every numeric field against its documented range, the
// aesthetic tag against Aesthetics, and that the border-radius string was built.
// Returns:
//   - error: *InvariantError for the first offending field, or nil.
func (p *ArtworkParams) Validate() error {
	for _, c := range p.checks() {
		if !c.rng.Contains(c.value) {
			return &InvariantError{Field: c.name, Value: c.value, Range: c.rng}
		}
	}
	if !isAesthetic(p.Style.Aesthetic) {
		return &InvariantError{Field: "style.aesthetic", Value: math.NaN(), Range: Range{Min: 0, Max: float64(len(Aesthetics) - 1)}}
	}
	if p.Head.BorderRadius == "" {
		return &InvariantError{Field: "head.border_radius", Value: math.NaN()}
	}
	return nil
}

func isAesthetic(tag string) bool {
	for _, a := range Aesthetics {
		if a == tag {
			return true
		}
	}
	return false
}
