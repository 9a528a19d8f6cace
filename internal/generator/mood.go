package generator

import (
	"strings"
	"unicode"

	"github.com/timmy/portrait/internal/domain"
)

// moodSynonyms maps each mood to the whole words that select it.
var moodSynonyms = map[domain.Mood][]string{
	domain.MoodMelancholic: {"sad", "blue", "melancholy", "gloomy", "lonely", "sorrow", "grief", "tears", "rain", "rainy"},
	domain.MoodHopeful:     {"hope", "hopes", "dawn", "sunrise", "optimistic", "spring", "promise", "bloom"},
	domain.MoodDramatic:    {"intense", "dark", "storm", "stormy", "bold", "fierce", "fire", "rage", "thunder"},
	domain.MoodSerene:      {"calm", "peace", "peaceful", "quiet", "tranquil", "still", "gentle", "soft", "zen"},
	domain.MoodJoyful:      {"happy", "joy", "cheerful", "smile", "smiling", "laugh", "laughing", "celebrate", "fun"},
}

// ResolveMood picks the mood for a prompt. A known explicit mood always
// wins. Otherwise the first mood whose name occurs in the lowercased prompt
// is used, then the first mood with a matching synonym word, then
// domain.DefaultMood.
func ResolveMood(prompt string, explicit domain.Mood) domain.Mood {
	if explicit != "" {
		if m, err := domain.ParseMood(string(explicit)); err == nil {
			return m
		}
	}

	lower := strings.ToLower(prompt)
	for _, m := range domain.Moods {
		if strings.Contains(lower, string(m)) {
			return m
		}
	}

	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool { return !unicode.IsLetter(r) }) {
		words[w] = struct{}{}
	}
	for _, m := range domain.Moods {
		for _, syn := range moodSynonyms[m] {
			if _, ok := words[syn]; ok {
				return m
			}
		}
	}

	return domain.DefaultMood
}
