package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMood(t *testing.T) {
	tests := []struct {
		in      string
		want    Mood
		wantErr bool
	}{
		{in: "serene", want: MoodSerene},
		{in: "  Dramatic ", want: MoodDramatic},
		{in: "JOYFUL", want: MoodJoyful},
		{in: "angry", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMood(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorShiftClamps(t *testing.T) {
	c := Color{R: 250, G: 10, B: 128}

	assert.Equal(t, Color{R: 255, G: 30, B: 148}, c.Shift(20))
	assert.Equal(t, Color{R: 230, G: 0, B: 108}, c.Shift(-20))
	assert.Equal(t, "#fa0a80", c.Hex())
}

func TestColorJSON(t *testing.T) {
	data, err := json.Marshal(Color{R: 0x12, G: 0xab, B: 0xff})
	require.NoError(t, err)
	assert.Equal(t, `"#12abff"`, string(data))

	var c Color
	require.NoError(t, json.Unmarshal([]byte(`"#ebf8ff"`), &c))
	assert.Equal(t, Color{R: 0xeb, G: 0xf8, B: 0xff}, c)

	assert.Error(t, json.Unmarshal([]byte(`"#zzz"`), &c))
}

func TestEveryMoodHasPalette(t *testing.T) {
	for _, m := range Moods {
		_, ok := moodPalettes[m]
		assert.True(t, ok, "mood %s has no palette", m)
	}
	assert.Equal(t, moodPalettes[DefaultMood], Mood("unknown").Palette())
}

func validParams() *ArtworkParams {
	return &ArtworkParams{
		Canvas: Canvas{Width: 600, Height: 800},
		Head: Head{
			X: 50, Y: 44, Width: 200, Height: 260, Rotation: 2,
			Radii:        [4]float64{48, 52, 46, 55},
			BorderRadius: "48% 52% 46% 55% / 52% 48% 54% 45%",
		},
		Hair:     Hair{FrontCount: 10, BackCount: 12, HighlightCount: 4, Curliness: 0.4, FlowAngle: 10, Length: 180},
		Features: Features{EyeScale: 1, NoseScale: 1, LipScale: 1, EyeSpacing: 36},
		Lighting: Lighting{Intensity: 0.6, Angle: 120, ShadowLayers: 3},
		Style:    Style{Blur: 1, Contrast: 1.1, Saturation: 1, Aesthetic: "noir"},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validParams().Validate())

	tests := []struct {
		name   string
		mutate func(p *ArtworkParams)
		field  string
	}{
		{name: "canvas too wide", mutate: func(p *ArtworkParams) { p.Canvas.Width = 2000 }, field: "canvas.width"},
		{name: "rotation", mutate: func(p *ArtworkParams) { p.Head.Rotation = 9 }, field: "head.rotation"},
		{name: "negative count", mutate: func(p *ArtworkParams) { p.Hair.BackCount = -1 }, field: "hair.back_count"},
		{name: "radius", mutate: func(p *ArtworkParams) { p.Head.Radii[3] = 70 }, field: "head.radii[3]"},
		{name: "aesthetic", mutate: func(p *ArtworkParams) { p.Style.Aesthetic = "cubist" }, field: "style.aesthetic"},
		{name: "border radius", mutate: func(p *ArtworkParams) { p.Head.BorderRadius = "" }, field: "head.border_radius"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(p)

			err := p.Validate()
			var invErr *InvariantError
			require.True(t, errors.As(err, &invErr), "expected InvariantError, got %v", err)
			assert.Equal(t, tt.field, invErr.Field)
		})
	}
}

func TestTotalTendrils(t *testing.T) {
	assert.Equal(t, 26, validParams().Hair.TotalTendrils())
}
