package generator

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/portrait/internal/domain"
)

func TestRollingHash(t *testing.T) {
	assert.Equal(t, uint32(0), RollingHash(""))
	assert.Equal(t, uint32(97), RollingHash("a"))
	assert.Equal(t, uint32(97*31+98), RollingHash("ab"))
	// characters outside the BMP hash as two UTF-16 code units
	assert.Equal(t, uint32(0xD83D*31+0xDE00), RollingHash("\U0001F600"))
}

func TestStreamDeterministic(t *testing.T) {
	a := NewStream("serene|1700000000000|abc|")
	b := NewStream("serene|1700000000000|abc|")
	assert.Equal(t, a.Draw(50), b.Draw(50))

	c := NewStream("serene|1700000000001|abc|")
	a.Reset()
	assert.NotEqual(t, a.Draw(5), c.Draw(5))
}

func TestStreamReset(t *testing.T) {
	s := NewStream("reset")
	first := s.Draw(10)
	s.Reset()
	assert.Equal(t, first, s.Draw(10))
}

func TestStreamRanges(t *testing.T) {
	s := NewStream("ranges")
	for i := 0; i < 1000; i++ {
		f := s.Float()
		require.True(t, f >= 0 && f < 1, "Float out of range: %v", f)

		n := s.IntRange(3, 7)
		require.True(t, n >= 3 && n <= 7, "IntRange out of range: %v", n)

		x := s.FloatRange(-2, 2)
		require.True(t, x >= -2 && x < 2, "FloatRange out of range: %v", x)
	}
	for _, v := range s.Draw(500) {
		require.True(t, v >= 0 && v < 100)
	}

	assert.Equal(t, "", s.Pick(nil))
	assert.Contains(t, domain.Aesthetics, s.Pick(domain.Aesthetics))
}

type stubSalt struct {
	token string
	err   error
}

func (s stubSalt) Salt(ctx context.Context) (string, error) {
	return s.token, s.err
}

func TestSeedDeriver(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	d := NewSeedDeriver(stubSalt{token: "salt"}, func() time.Time { return at })

	seed, stamped := d.Derive(context.Background(), "a quiet portrait", "ada")
	assert.Equal(t, Seed("a quiet portrait|"+strconv.FormatInt(at.UnixMilli(), 10)+"|salt|ada"), seed)
	assert.Equal(t, at.Truncate(time.Millisecond), stamped)
}

func TestSeedDeriverFallsBackOnSaltError(t *testing.T) {
	d := NewSeedDeriver(stubSalt{err: errors.New("unreachable")}, nil)

	seed, _ := d.Derive(context.Background(), "prompt", "")
	parts := strings.Split(string(seed), SeedDelimiter)
	require.Len(t, parts, 4)
	assert.Len(t, parts[2], 32)

	other, _ := d.Derive(context.Background(), "prompt", "")
	assert.NotEqual(t, seed, other)
}

func TestResolveMood(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		explicit domain.Mood
		want     domain.Mood
	}{
		{name: "explicit wins", prompt: "a joyful dance", explicit: domain.MoodDramatic, want: domain.MoodDramatic},
		{name: "unknown explicit ignored", prompt: "a joyful dance", explicit: "angry", want: domain.MoodJoyful},
		{name: "mood name beats synonym", prompt: "serene portrait in blue tones", want: domain.MoodSerene},
		{name: "mood name case insensitive", prompt: "A DRAMATIC Face", want: domain.MoodDramatic},
		{name: "synonym", prompt: "a sad clown at dusk", want: domain.MoodMelancholic},
		{name: "synonym whole word only", prompt: "saddle and bluebell", want: domain.DefaultMood},
		{name: "synonym order", prompt: "happy but sad", want: domain.MoodMelancholic},
		{name: "default", prompt: "portrait of a stranger", want: domain.MoodHopeful},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveMood(tt.prompt, tt.explicit))
		})
	}
}

func TestSynthesizeSchemaMismatch(t *testing.T) {
	_, err := Synthesize(make([]float64, domain.SchemaFieldCount-1), domain.MoodSerene)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestSynthesizeBoundaries(t *testing.T) {
	low, err := Synthesize(make([]float64, domain.SchemaFieldCount), domain.MoodSerene)
	require.NoError(t, err)
	assert.Equal(t, 480, low.Canvas.Width)
	assert.Equal(t, -8.0, low.Head.Rotation)
	assert.Equal(t, domain.Aesthetics[0], low.Style.Aesthetic)

	top := make([]float64, domain.SchemaFieldCount)
	for i := range top {
		top[i] = 99.9999
	}
	high, err := Synthesize(top, domain.MoodSerene)
	require.NoError(t, err)
	assert.Equal(t, 720, high.Canvas.Width)
	assert.Equal(t, 30, high.Hair.BackCount)
	assert.Equal(t, domain.Aesthetics[len(domain.Aesthetics)-1], high.Style.Aesthetic)
}

func TestSynthesizeInclusiveTop(t *testing.T) {
	top := make([]float64, domain.SchemaFieldCount)
	for i := range top {
		top[i] = 100
	}
	p, err := Synthesize(top, domain.MoodSerene)
	require.NoError(t, err)

	assert.Equal(t, 720, p.Canvas.Width)
	assert.Equal(t, 900, p.Canvas.Height)
	assert.Equal(t, 240, p.Head.Width)
	assert.Equal(t, 300, p.Head.Height)
	assert.Equal(t, 8.0, p.Head.Rotation)
	for _, r := range p.Head.Radii {
		assert.Equal(t, 60.0, r)
	}
	assert.Equal(t, 24, p.Hair.FrontCount)
	assert.Equal(t, 30, p.Hair.BackCount)
	assert.Equal(t, 10, p.Hair.HighlightCount)
	assert.Equal(t, 1.0, p.Hair.Curliness)
	assert.Equal(t, 45.0, p.Hair.FlowAngle)
	assert.Equal(t, 260, p.Hair.Length)
	assert.Equal(t, 1.3, p.Features.EyeScale)
	assert.Equal(t, 1.2, p.Features.NoseScale)
	assert.Equal(t, 1.3, p.Features.LipScale)
	assert.Equal(t, 44, p.Features.EyeSpacing)
	assert.Equal(t, 1.0, p.Lighting.Intensity)
	assert.Equal(t, 359, p.Lighting.Angle)
	assert.Equal(t, 6, p.Lighting.ShadowLayers)
	assert.Equal(t, 3.0, p.Style.Blur)
	assert.Equal(t, 1.4, p.Style.Contrast)
	assert.Equal(t, 1.3, p.Style.Saturation)
	assert.Equal(t, domain.Aesthetics[len(domain.Aesthetics)-1], p.Style.Aesthetic)
}

func TestSynthesizeRejectsOutOfRangeValues(t *testing.T) {
	values := make([]float64, domain.SchemaFieldCount)
	values[0] = 150

	_, err := Synthesize(values, domain.MoodJoyful)
	var invErr *domain.InvariantError
	require.True(t, errors.As(err, &invErr))
	assert.Equal(t, "canvas.width", invErr.Field)
}

func TestSynthesizeAlwaysInRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		for _, m := range domain.Moods {
			s := NewStream(Seed("seed-" + strconv.Itoa(i) + "-" + string(m)))
			p, err := Synthesize(s.Draw(30), m)
			require.NoError(t, err)
			require.NoError(t, p.Validate())
		}
	}
}

func TestSynthesizePalette(t *testing.T) {
	p, err := Synthesize(make([]float64, domain.SchemaFieldCount), domain.MoodSerene)
	require.NoError(t, err)

	mp := domain.MoodSerene.Palette()
	assert.Equal(t, mp.Primary.Shift(skinShift), p.Palette.Skin)
	assert.Equal(t, mp.Shadow.Shift(shadowShift), p.Palette.Shadow)
}

func TestBorderRadius(t *testing.T) {
	got := borderRadius([4]float64{40, 45.5, 50, 60})
	assert.Equal(t, "40.0% 45.5% 50.0% 60.0% / 54.5% 60.0% 40.0% 50.0%", got)
}

func renderSeed(t *testing.T, seed Seed, mood domain.Mood) (*domain.ArtworkParams, *Rendered) {
	t.Helper()
	p, err := Synthesize(NewStream(seed).Draw(30), mood)
	require.NoError(t, err)
	r, err := Render(p)
	require.NoError(t, err)
	return p, r
}

func TestRenderIsDeterministic(t *testing.T) {
	_, a := renderSeed(t, "same seed", domain.MoodDramatic)
	_, b := renderSeed(t, "same seed", domain.MoodDramatic)
	assert.Equal(t, a.CSS, b.CSS)
	assert.Equal(t, a.HTML, b.HTML)
}

var headRule = regexp.MustCompile(`(?s)\.head \{[^}]*border-radius: [^;]+;[^}]*transform: translate\(-50%, -50%\) rotate\((-?\d+\.\d+)deg\)`)

func TestRenderStructure(t *testing.T) {
	p, r := renderSeed(t, "serene portrait in blue tones|1|x|", domain.MoodSerene)

	assert.Equal(t, p.Hair.TotalTendrils(), strings.Count(r.HTML, `class="tendril `))
	assert.Equal(t, len(featureElements), strings.Count(r.HTML, `class="feature `))
	assert.Contains(t, r.HTML, "aesthetic-"+p.Style.Aesthetic)

	m := headRule.FindStringSubmatch(r.CSS)
	require.NotNil(t, m, "head rule missing")
	rot, err := strconv.ParseFloat(m[1], 64)
	require.NoError(t, err)
	assert.True(t, rot >= -8 && rot <= 8)

	assert.Equal(t, p.Lighting.ShadowLayers+1, strings.Count(headBoxShadow(t, r.CSS), "rgba("))
}

func headBoxShadow(t *testing.T, css string) string {
	t.Helper()
	start := strings.Index(css, "box-shadow: ")
	require.True(t, start >= 0)
	end := strings.Index(css[start:], ";\n")
	return css[start : start+end]
}

func TestRenderClassesAreDefined(t *testing.T) {
	_, r := renderSeed(t, "class coverage", domain.MoodJoyful)

	classAttr := regexp.MustCompile(`class="([^"]+)"`)
	for _, m := range classAttr.FindAllStringSubmatch(r.HTML, -1) {
		for _, cls := range strings.Fields(m[1]) {
			assert.Contains(t, r.CSS, "."+cls, "class %s has no rule", cls)
		}
	}
}

func TestRenderRejectsInvalidParams(t *testing.T) {
	_, err := Render(nil)
	assert.Error(t, err)

	p, _ := renderSeed(t, "invalid", domain.MoodSerene)
	p.Head.Rotation = 20
	_, err = Render(p)
	var invErr *domain.InvariantError
	assert.True(t, errors.As(err, &invErr))
}

func TestFormatNum(t *testing.T) {
	assert.Equal(t, "0.00", formatNum(-0.001, 2))
	assert.Equal(t, "-1.25", formatNum(-1.25, 2))
	assert.Equal(t, "3.1", formatNum(3.14159, 1))
}

func TestDocumentEscapesTitle(t *testing.T) {
	doc := Document(`<script>alert(1)</script>`, "/* c */", &Rendered{CSS: ".a {}\n", HTML: "<div></div>\n"})
	assert.Contains(t, doc, "&lt;script&gt;")
	assert.NotContains(t, doc, "<title><script>")
	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "/* c */")
}
