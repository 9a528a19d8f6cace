package gatekeeper

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rejection codes returned to clients.
const (
	CodeEmpty       = "empty_prompt"
	CodeTooShort    = "prompt_too_short"
	CodeTooLong     = "prompt_too_long"
	CodeRepetitive  = "repetitive_characters"
	CodeURL         = "contains_url"
	CodeScript      = "script_content"
	CodeLowAlpha    = "insufficient_letters"
	CodeTooFewWords = "too_few_words"
)

var (
	urlPattern    = regexp.MustCompile(`(?i)\b(?:https?|ftp)://|\bwww\.[a-z0-9-]+\.[a-z]{2,}`)
	scriptPattern = regexp.MustCompile(`(?i)<\s*/?\s*(?:script|iframe|style)\b|javascript\s*:|\bon(?:load|error|click|mouse[a-z]*|key[a-z]*|focus|blur|submit|change)\s*=|\beval\s*\(`)
)

// ValidationError describes why a prompt was refused.
type ValidationError struct {
	Code   string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Policy holds the prompt validation thresholds.
type Policy struct {
	MinLength     int
	MaxLength     int
	MaxCharRun    int
	MinAlphaRatio float64
	MinWords      int
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:     3,
		MaxLength:     500,
		MaxCharRun:    10,
		MinAlphaRatio: 0.3,
		MinWords:      2,
	}
}

// Validate checks a prompt and returns it trimmed. Checks run in order:
// emptiness, length, spam patterns, letter ratio, word count. The first
// failure is returned as a *ValidationError.
func (p Policy) Validate(prompt string) (string, error) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "", &ValidationError{Code: CodeEmpty, Reason: "prompt is required"}
	}

	n := utf8.RuneCountInString(trimmed)
	if n < p.MinLength {
		return "", &ValidationError{Code: CodeTooShort, Reason: fmt.Sprintf("prompt must be at least %d characters", p.MinLength)}
	}
	if p.MaxLength > 0 && n > p.MaxLength {
		return "", &ValidationError{Code: CodeTooLong, Reason: fmt.Sprintf("prompt must be at most %d characters", p.MaxLength)}
	}

	if p.MaxCharRun > 0 && longestRun(trimmed) >= p.MaxCharRun {
		return "", &ValidationError{Code: CodeRepetitive, Reason: "prompt contains excessive repeated characters"}
	}
	if urlPattern.MatchString(trimmed) {
		return "", &ValidationError{Code: CodeURL, Reason: "prompt must not contain links"}
	}
	if scriptPattern.MatchString(trimmed) {
		return "", &ValidationError{Code: CodeScript, Reason: "prompt must not contain script or markup"}
	}

	letters := 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if float64(letters)/float64(n) < p.MinAlphaRatio {
		return "", &ValidationError{Code: CodeLowAlpha, Reason: "prompt must be mostly words"}
	}

	if len(strings.Fields(trimmed)) < p.MinWords {
		return "", &ValidationError{Code: CodeTooFewWords, Reason: fmt.Sprintf("prompt must contain at least %d words", p.MinWords)}
	}

	return trimmed, nil
}

// longestRun returns the length of the longest run of one repeated rune.
// Whitespace is spacing, not content, and never counts as a run.
func longestRun(s string) int {
	best, run := 0, 0
	var prev rune = -1
	for _, r := range s {
		if unicode.IsSpace(r) {
			prev, run = -1, 0
			continue
		}
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run > best {
			best = run
		}
	}
	return best
}
