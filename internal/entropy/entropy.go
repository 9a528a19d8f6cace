// Package entropy provides the salt tokens mixed into every generation seed.
package entropy

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/portrait/internal/config"
	"github.com/timmy/portrait/internal/generator"
	"github.com/timmy/portrait/internal/logger"
	"golang.org/x/time/rate"
)

const maxTokenLength = 64

// Local produces salt from the process random source.
type Local struct{}

func (Local) Salt(ctx context.Context) (string, error) {
	return generator.LocalToken(), nil
}

// Remote fetches salt from an HTTP endpoint that returns a plain-text token.
// Calls are throttled; when throttled, failing or returning junk it falls
// back to the local source, so Salt never returns an error.
type Remote struct {
	client   *resty.Client
	url      string
	limiter  *rate.Limiter
	fallback generator.SaltSource
}

// RemoteConfig configures a Remote source.
type RemoteConfig struct {
	URL               string
	Timeout           time.Duration
	RequestsPerMinute int
}

// NewRemote creates a remote salt source.
func NewRemote(cfg *RemoteConfig) *Remote {
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Accept", "text/plain")

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60)
		burst = max(1, cfg.RequestsPerMinute/10)
	}

	return &Remote{
		client:   client,
		url:      cfg.URL,
		limiter:  rate.NewLimiter(limit, burst),
		fallback: Local{},
	}
}

func (r *Remote) Salt(ctx context.Context) (string, error) {
	if !r.limiter.Allow() {
		logger.CtxDebug(ctx, "Remote salt throttled, using local token")
		return r.fallback.Salt(ctx)
	}

	token, err := r.fetch(ctx)
	if err != nil {
		logger.CtxWarn(ctx, "Remote salt failed, using local token: url=%s, error=%v", r.url, err)
		return r.fallback.Salt(ctx)
	}
	return token, nil
}

func (r *Remote) fetch(ctx context.Context) (string, error) {
	resp, err := r.client.R().SetContext(ctx).Get(r.url)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	token := sanitizeToken(resp.String())
	if token == "" {
		return "", fmt.Errorf("empty token")
	}
	return token, nil
}

// sanitizeToken keeps letters and digits only, since the seed uses "|" as
// its delimiter.
func sanitizeToken(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			if b.Len() == maxTokenLength {
				break
			}
		}
	}
	return b.String()
}

// New builds the salt source selected by cfg.
func New(cfg *config.EntropyConfig) generator.SaltSource {
	if cfg.Source == "remote" && cfg.URL != "" {
		return NewRemote(&RemoteConfig{
			URL:               cfg.URL,
			Timeout:           cfg.Timeout,
			RequestsPerMinute: cfg.RequestsPerMinute,
		})
	}
	return Local{}
}
