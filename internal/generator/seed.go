package generator

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/portrait/internal/logger"
)

// SeedDelimiter separates the components of a Seed.
const SeedDelimiter = "|"

// Seed is the opaque input of a value stream. One is derived per request.
type Seed string

// SaltSource supplies the random token mixed into every seed.
type SaltSource interface {
	Salt(ctx context.Context) (string, error)
}

// JoinSeed builds the seed string from its parts.
func JoinSeed(prompt string, at time.Time, salt, creator string) Seed {
	return Seed(strings.Join([]string{
		prompt,
		strconv.FormatInt(at.UnixMilli(), 10),
		salt,
		creator,
	}, SeedDelimiter))
}

// SeedDeriver turns a prompt into a fresh seed. It performs no validation.
type SeedDeriver struct {
	salt SaltSource
	now  func() time.Time
}

// NewSeedDeriver creates a deriver.
// Parameters:
//   - salt: token source; nil uses a local random token.
//   - now: clock; nil uses time.Now.
//
// Returns:
//   - *SeedDeriver: initialized deriver.
func NewSeedDeriver(salt SaltSource, now func() time.Time) *SeedDeriver {
	if now == nil {
		now = time.Now
	}
	return &SeedDeriver{salt: salt, now: now}
}

// Derive returns a new seed and the instant it was stamped with. It always
// succeeds: a failing salt source is replaced by a local token.
func (d *SeedDeriver) Derive(ctx context.Context, prompt, creator string) (Seed, time.Time) {
	at := d.now().UTC().Truncate(time.Millisecond)
	return JoinSeed(prompt, at, d.saltToken(ctx), creator), at
}

func (d *SeedDeriver) saltToken(ctx context.Context) string {
	if d.salt != nil {
		token, err := d.salt.Salt(ctx)
		if err == nil && token != "" {
			return token
		}
		logger.CtxWarn(ctx, "Salt source failed, using local token: error=%v", err)
	}
	return LocalToken()
}

// LocalToken returns a random 32-character hex token.
func LocalToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
