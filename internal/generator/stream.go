package generator

import "unicode/utf16"

const (
	lcgMultiplier uint32 = 1664525
	lcgIncrement  uint32 = 1013904223
	stateSpan            = float64(1 << 32)
)

// RollingHash folds s into 32 bits with h = h*31 + c over the UTF-16 code
// units of s, so the value matches across platforms. The empty string hashes
// to 0. It is not a cryptographic hash.
func RollingHash(s string) uint32 {
	var h uint32
	for _, u := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + uint32(u)
	}
	return h
}

// Stream is a deterministic pseudo-random value stream keyed by a seed.
// It uses no external entropy: two streams built from the same seed yield
// the same sequence in every process.
type Stream struct {
	origin uint32
	state  uint32
}

// NewStream creates a stream whose state is the rolling hash of seed.
func NewStream(seed Seed) *Stream {
	h := RollingHash(string(seed))
	return &Stream{origin: h, state: h}
}

// Reset rewinds the stream to its first value.
func (s *Stream) Reset() {
	s.state = s.origin
}

// Float advances the stream and returns a value in [0,1).
func (s *Stream) Float() float64 {
	s.state = s.state*lcgMultiplier + lcgIncrement
	return float64(s.state) / stateSpan
}

// IntRange returns an integer in [min,max] inclusive.
func (s *Stream) IntRange(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + int(s.Float()*float64(max-min+1))
}

// FloatRange returns a value in [min,max).
func (s *Stream) FloatRange(min, max float64) float64 {
	return min + s.Float()*(max-min)
}

// Pick returns a uniformly chosen element of items, or "" when items is empty.
func (s *Stream) Pick(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[int(s.Float()*float64(len(items)))]
}

// Draw returns the next n values scaled to [0,100).
func (s *Stream) Draw(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s.Float() * 100
	}
	return out
}
