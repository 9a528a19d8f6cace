package provenance

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/timmy/portrait/internal/generator"
)

// Digest names.
const (
	DigestRolling = "rolling"
	DigestSHA256  = "sha256"
)

// Digest hashes provenance inputs into a fingerprint.
type Digest interface {
	Name() string
	Sum(s string) string
}

// rollingDigest is the 32-bit rolling hash. It is short and
// non-cryptographic: fingerprints made with it are tamper-evident only
// against accidental edits.
type rollingDigest struct{}

func (rollingDigest) Name() string { return DigestRolling }

func (rollingDigest) Sum(s string) string {
	return fmt.Sprintf("%08x", generator.RollingHash(s))
}

type sha256Digest struct{}

func (sha256Digest) Name() string { return DigestSHA256 }

func (sha256Digest) Sum(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// NewDigest returns the digest registered under name. An empty name selects
// the rolling digest.
func NewDigest(name string) (Digest, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DigestRolling:
		return rollingDigest{}, nil
	case DigestSHA256:
		return sha256Digest{}, nil
	default:
		return nil, fmt.Errorf("unsupported provenance digest: %s", name)
	}
}
