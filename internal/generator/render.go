package generator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/timmy/portrait/internal/domain"
)

// Rendered is the CSS/HTML pair produced for one set of parameters.
type Rendered struct {
	CSS  string
	HTML string
}

// hairZone describes one layer of tendrils.
type hairZone struct {
	name    string
	reach   float64
	length  float64
	width   float64
	opacity float64
	shift   int
}

var hairZones = []hairZone{
	{name: "back", reach: 1.08, length: 1.0, width: 1.25, opacity: 0.85, shift: -16},
	{name: "front", reach: 0.92, length: 0.55, width: 1.0, opacity: 0.95, shift: 0},
	{name: "highlight", reach: 1.0, length: 0.8, width: 0.6, opacity: 0.35, shift: 48},
}

// featureElements are the facial elements nested inside the head.
var featureElements = []string{
	"brow brow-left",
	"brow brow-right",
	"eye eye-left",
	"eye eye-right",
	"nose",
	"lips",
}

var aestheticFilters = map[string]string{
	"renaissance":   "sepia(0.25)",
	"impressionist": "saturate(1.15) blur(0.3px)",
	"noir":          "grayscale(0.85)",
	"pastel":        "brightness(1.08) saturate(0.8)",
	"surreal":       "hue-rotate(25deg)",
}

const structuralCSS = `.portrait-canvas { position: relative; overflow: hidden; margin: 0 auto; }
.portrait-canvas * { box-sizing: border-box; }
.portrait-canvas .layer { position: absolute; inset: 0; pointer-events: none; }
.hair-back, .hair-front, .hair-highlight { position: absolute; inset: 0; }
.tendril { position: absolute; transform-origin: 50% 0%; }
.head .feature { position: absolute; }
.head .eye { border-radius: 50%; }
.head .brow { border-radius: 40%; }
.head .lips { border-radius: 45% 45% 50% 50%; }
`

// Render turns validated parameters into a stylesheet and the matching
// markup. The output is a pure function of p.
func Render(p *domain.ArtworkParams) (*Rendered, error) {
	if p == nil {
		return nil, fmt.Errorf("render: nil parameters")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	var css strings.Builder
	css.WriteString(structuralCSS)
	writeCanvas(&css, p)
	writeGlow(&css, p)
	writeHead(&css, p)
	writeFeatures(&css, p)
	writeHair(&css, p)

	return &Rendered{CSS: css.String(), HTML: renderHTML(p)}, nil
}

func rule(b *strings.Builder, selector string, decls ...string) {
	b.WriteString(selector)
	b.WriteString(" {\n")
	for _, d := range decls {
		b.WriteString("  ")
		b.WriteString(d)
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
}

func writeCanvas(b *strings.Builder, p *domain.ArtworkParams) {
	rule(b, ".portrait-canvas",
		fmt.Sprintf("width: %dpx", p.Canvas.Width),
		fmt.Sprintf("height: %dpx", p.Canvas.Height),
		fmt.Sprintf("background: radial-gradient(circle at %s%% %s%%, %s 0%%, %s 100%%)",
			formatNum(p.Head.X, 2), formatNum(p.Head.Y, 2), p.Palette.Ambient.Hex(), p.Palette.Shadow.Hex()),
		fmt.Sprintf("filter: blur(%spx) contrast(%s) saturate(%s)",
			formatNum(p.Style.Blur, 2), formatNum(p.Style.Contrast, 2), formatNum(p.Style.Saturation, 2)),
	)
	rule(b, ".portrait-canvas.aesthetic-"+p.Style.Aesthetic+" .head",
		"filter: "+aestheticFilters[p.Style.Aesthetic],
	)
}

func writeGlow(b *strings.Builder, p *domain.ArtworkParams) {
	rad := float64(p.Lighting.Angle) * math.Pi / 180
	rule(b, ".light-glow",
		fmt.Sprintf("background: radial-gradient(circle at %s%% %s%%, %s, transparent 60%%)",
			formatNum(50+math.Cos(rad)*40, 2), formatNum(50-math.Sin(rad)*40, 2),
			p.Palette.Ambient.RGBA(p.Lighting.Intensity*0.6)),
		"opacity: "+formatNum(p.Lighting.Intensity, 2),
	)
}

// shadowStack builds one box-shadow entry per shadow layer, cast away from
// the light source.
func shadowStack(p *domain.ArtworkParams) string {
	rad := float64(p.Lighting.Angle) * math.Pi / 180
	layers := make([]string, 0, p.Lighting.ShadowLayers+1)
	for i := 1; i <= p.Lighting.ShadowLayers; i++ {
		dist := float64(i) * 4 * p.Lighting.Intensity
		layers = append(layers, fmt.Sprintf("%spx %spx %dpx %s",
			formatNum(-math.Cos(rad)*dist, 2),
			formatNum(math.Sin(rad)*dist, 2),
			i*6,
			p.Palette.Shadow.RGBA(p.Lighting.Intensity*0.5/float64(i))))
	}
	layers = append(layers, fmt.Sprintf("inset 0 0 %spx %s",
		formatNum(12*p.Lighting.Intensity, 2), p.Palette.Ambient.RGBA(0.35)))
	return strings.Join(layers, ", ")
}

func writeHead(b *strings.Builder, p *domain.ArtworkParams) {
	skin := p.Palette.Skin
	rule(b, ".head",
		"position: absolute",
		"overflow: hidden",
		fmt.Sprintf("left: %s%%", formatNum(p.Head.X, 2)),
		fmt.Sprintf("top: %s%%", formatNum(p.Head.Y, 2)),
		fmt.Sprintf("width: %dpx", p.Head.Width),
		fmt.Sprintf("height: %dpx", p.Head.Height),
		"border-radius: "+p.Head.BorderRadius,
		fmt.Sprintf("transform: translate(-50%%, -50%%) rotate(%sdeg)", formatNum(p.Head.Rotation, 2)),
		fmt.Sprintf("background: linear-gradient(%ddeg, %s, %s 55%%, %s)",
			p.Lighting.Angle, skin.Shift(16).Hex(), skin.Hex(), skin.Shift(-24).Hex()),
		"box-shadow: "+shadowStack(p),
	)
}

func writeFeatures(b *strings.Builder, p *domain.ArtworkParams) {
	f := p.Features
	w := float64(p.Head.Width)
	h := float64(p.Head.Height)
	half := float64(f.EyeSpacing) / 2

	eyeW, eyeH := 22*f.EyeScale, 12*f.EyeScale
	eyeTop := h*0.42 - eyeH/2
	eyeBg := fmt.Sprintf("background: radial-gradient(circle at 50%% 50%%, %s 0 35%%, %s 40%%)",
		p.Palette.Eye.Hex(), p.Palette.Ambient.Shift(40).Hex())
	for i, side := range []float64{-1, 1} {
		cx := w/2 + side*half
		rule(b, ".head ."+[]string{"eye-left", "eye-right"}[i],
			fmt.Sprintf("left: %spx", formatNum(cx-eyeW/2, 2)),
			fmt.Sprintf("top: %spx", formatNum(eyeTop, 2)),
			fmt.Sprintf("width: %spx", formatNum(eyeW, 2)),
			fmt.Sprintf("height: %spx", formatNum(eyeH, 2)),
			eyeBg,
		)
	}

	browW := 26 * f.EyeScale
	tilt := 6 * f.EyeScale
	for i, side := range []float64{-1, 1} {
		cx := w/2 + side*half
		rule(b, ".head ."+[]string{"brow-left", "brow-right"}[i],
			fmt.Sprintf("left: %spx", formatNum(cx-browW/2, 2)),
			fmt.Sprintf("top: %spx", formatNum(h*0.34, 2)),
			fmt.Sprintf("width: %spx", formatNum(browW, 2)),
			"height: 4px",
			"background: "+p.Palette.Hair.Hex(),
			fmt.Sprintf("transform: rotate(%sdeg)", formatNum(-side*tilt, 2)),
		)
	}

	noseW, noseH := 14*f.NoseScale, 34*f.NoseScale
	rule(b, ".head .nose",
		fmt.Sprintf("left: %spx", formatNum(w/2-noseW/2, 2)),
		fmt.Sprintf("top: %spx", formatNum(h*0.5, 2)),
		fmt.Sprintf("width: %spx", formatNum(noseW, 2)),
		fmt.Sprintf("height: %spx", formatNum(noseH, 2)),
		fmt.Sprintf("background: linear-gradient(%ddeg, transparent, %s)",
			p.Lighting.Angle, p.Palette.Skin.Shift(-30).RGBA(p.Lighting.Intensity)),
	)

	lipW, lipH := 44*f.LipScale, 14*f.LipScale
	rule(b, ".head .lips",
		fmt.Sprintf("left: %spx", formatNum(w/2-lipW/2, 2)),
		fmt.Sprintf("top: %spx", formatNum(h*0.7, 2)),
		fmt.Sprintf("width: %spx", formatNum(lipW, 2)),
		fmt.Sprintf("height: %spx", formatNum(lipH, 2)),
		"background: "+p.Palette.Lip.Hex(),
	)
}

func zoneCount(h domain.Hair, zone string) int {
	switch zone {
	case "back":
		return h.BackCount
	case "front":
		return h.FrontCount
	default:
		return h.HighlightCount
	}
}

func writeHair(b *strings.Builder, p *domain.ArtworkParams) {
	hair := p.Hair
	cx := float64(p.Canvas.Width) * p.Head.X / 100
	cy := float64(p.Canvas.Height) * p.Head.Y / 100
	rx := float64(p.Head.Width) / 2
	ry := float64(p.Head.Height) / 2
	radius := fmt.Sprintf("border-radius: 50%% 50%% %s%% %s%%",
		formatNum(40+hair.Curliness*20, 2), formatNum(40-hair.Curliness*20, 2))

	for _, z := range hairZones {
		n := zoneCount(hair, z.name)
		rule(b, ".hair-"+z.name+" .tendril",
			"background: "+p.Palette.Hair.Shift(z.shift).Hex(),
			radius,
		)

		width := (6 + hair.Curliness*6) * z.width
		for i := 0; i < n; i++ {
			// spread roots over the crown from -99 to +99 degrees
			arc := -math.Pi*0.55 + math.Pi*1.1*float64(i)/float64(max(n-1, 1))
			x := cx + math.Sin(arc)*rx*z.reach
			y := cy - math.Cos(arc)*ry*z.reach
			length := float64(hair.Length) * z.length * (0.75 + 0.25*math.Abs(math.Cos(float64(i)*0.7)))
			curl := math.Sin(float64(i)*(1+hair.Curliness*5)) * hair.Curliness * 25
			rotation := hair.FlowAngle + arc*180/math.Pi*0.6 + curl
			opacity := z.opacity
			if z.name == "highlight" {
				opacity += 0.3 * math.Abs(math.Sin(arc)) * p.Lighting.Intensity
			}

			rule(b, fmt.Sprintf(".tendril-%s-%d", z.name, i),
				fmt.Sprintf("left: %spx", formatNum(x-width/2, 2)),
				fmt.Sprintf("top: %spx", formatNum(y, 2)),
				fmt.Sprintf("width: %spx", formatNum(width, 2)),
				fmt.Sprintf("height: %spx", formatNum(length, 2)),
				fmt.Sprintf("transform: rotate(%sdeg)", formatNum(rotation, 2)),
				"opacity: "+formatNum(opacity, 2),
			)
		}
	}
}

func renderHTML(p *domain.ArtworkParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<div class=\"portrait-canvas aesthetic-%s\">\n", p.Style.Aesthetic)
	b.WriteString("  <div class=\"layer light-glow\"></div>\n")
	writeHairHTML(&b, p.Hair, "back")
	b.WriteString("  <div class=\"head\">\n")
	for _, f := range featureElements {
		fmt.Fprintf(&b, "    <div class=\"feature %s\"></div>\n", f)
	}
	b.WriteString("  </div>\n")
	writeHairHTML(&b, p.Hair, "front")
	writeHairHTML(&b, p.Hair, "highlight")
	b.WriteString("</div>\n")
	return b.String()
}

func writeHairHTML(b *strings.Builder, h domain.Hair, zone string) {
	fmt.Fprintf(b, "  <div class=\"hair-%s\">\n", zone)
	for i := 0; i < zoneCount(h, zone); i++ {
		fmt.Fprintf(b, "    <div class=\"tendril tendril-%s-%d\"></div>\n", zone, i)
	}
	b.WriteString("  </div>\n")
}

// formatNum renders x with a fixed number of decimals and never emits "-0".
func formatNum(x float64, prec int) string {
	s := strconv.FormatFloat(x, 'f', prec, 64)
	if strings.TrimLeft(s, "-0.") == "" && strings.HasPrefix(s, "-") {
		return s[1:]
	}
	return s
}
