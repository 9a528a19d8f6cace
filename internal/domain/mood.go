package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Mood is a named palette/style preset, either chosen explicitly or inferred
// from the prompt text.
type Mood string

const (
	MoodMelancholic Mood = "melancholic"
	MoodHopeful     Mood = "hopeful"
	MoodDramatic    Mood = "dramatic"
	MoodSerene      Mood = "serene"
	MoodJoyful      Mood = "joyful"
)

// DefaultMood is used when neither a preset nor a keyword selects a mood.
const DefaultMood = MoodHopeful

// Moods lists every mood in resolution order.
var Moods = []Mood{MoodMelancholic, MoodHopeful, MoodDramatic, MoodSerene, MoodJoyful}

// ParseMood converts a preset name into a Mood.
// Parameters:
//   - s: preset name, case-insensitive; surrounding whitespace is ignored.
//
// Returns:
//   - Mood: the matching mood.
//   - error: non-nil if s names no known mood.
func ParseMood(s string) (Mood, error) {
	name := Mood(strings.ToLower(strings.TrimSpace(s)))
	for _, m := range Moods {
		if m == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mood %q", s)
}

// Palette returns the fixed palette for the mood, falling back to the
// default mood's palette for unknown values.
func (m Mood) Palette() MoodPalette {
	if p, ok := moodPalettes[m]; ok {
		return p
	}
	return moodPalettes[DefaultMood]
}

// Color is an sRGB colour serialized as "#rrggbb".
type Color struct {
	R, G, B uint8
}

// ParseHex parses "#rrggbb" (the leading '#' is optional).
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func mustHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex renders the colour as lowercase "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA renders the colour as a CSS rgba() with the given alpha.
func (c Color) RGBA(alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(alpha, 'f', 2, 64))
}

// Shift adds delta to every channel, clamping each to [0,255].
func (c Color) Shift(delta int) Color {
	return Color{R: shiftChannel(c.R, delta), G: shiftChannel(c.G, delta), B: shiftChannel(c.B, delta)}
}

func shiftChannel(v uint8, delta int) uint8 {
	n := int(v) + delta
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

// MarshalJSON implements json.Marshaler.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHex(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MoodPalette is the fixed five-colour record attached to a mood.
type MoodPalette struct {
	Primary   Color `json:"primary"`
	Secondary Color `json:"secondary"`
	Accent    Color `json:"accent"`
	Shadow    Color `json:"shadow"`
	Highlight Color `json:"highlight"`
}

var moodPalettes = map[Mood]MoodPalette{
	MoodMelancholic: {
		Primary:   mustHex("#8a94a6"),
		Secondary: mustHex("#2c3e50"),
		Accent:    mustHex("#5d7290"),
		Shadow:    mustHex("#1a202c"),
		Highlight: mustHex("#a0aec0"),
	},
	MoodHopeful: {
		Primary:   mustHex("#f3c98b"),
		Secondary: mustHex("#8c5a2b"),
		Accent:    mustHex("#68b37a"),
		Shadow:    mustHex("#5a3a1a"),
		Highlight: mustHex("#fff6d8"),
	},
	MoodDramatic: {
		Primary:   mustHex("#c98f7a"),
		Secondary: mustHex("#1a1a1a"),
		Accent:    mustHex("#b3202c"),
		Shadow:    mustHex("#000000"),
		Highlight: mustHex("#feb2b2"),
	},
	MoodSerene: {
		Primary:   mustHex("#e6cfc0"),
		Secondary: mustHex("#4a6a8a"),
		Accent:    mustHex("#6fb7c9"),
		Shadow:    mustHex("#2c5282"),
		Highlight: mustHex("#ebf8ff"),
	},
	MoodJoyful: {
		Primary:   mustHex("#f7c6a3"),
		Secondary: mustHex("#d9822b"),
		Accent:    mustHex("#e8508a"),
		Shadow:    mustHex("#97266d"),
		Highlight: mustHex("#fff5f7"),
	},
}
