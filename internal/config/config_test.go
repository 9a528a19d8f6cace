package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Counter.Backend)
	assert.Equal(t, 100, cfg.Counter.RecentLimit)
	assert.Equal(t, 10, cfg.Quota.Limit)
	assert.Equal(t, time.Hour, cfg.Quota.Window)
	assert.Equal(t, 3, cfg.Gatekeeper.MinLength)
	assert.Equal(t, 500, cfg.Gatekeeper.MaxLength)
	assert.Equal(t, 0.3, cfg.Gatekeeper.MinAlphaRatio)
	assert.Equal(t, "rolling", cfg.Provenance.Digest)
	assert.Equal(t, "none", cfg.Storage.Type)
	assert.False(t, cfg.Sentry.Enabled())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
counter:
  backend: file
  file_path: /tmp/counter.json
quota:
  limit: 3
  window: 15m
storage:
  type: local
`)
	t.Setenv("SENTRY_DSN", "https://key@example.invalid/1")
	t.Setenv("STORAGE_BUCKET", "portraits")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Counter.Backend)
	assert.Equal(t, 3, cfg.Quota.Limit)
	assert.Equal(t, 15*time.Minute, cfg.Quota.Window)
	assert.Equal(t, "portraits", cfg.Storage.Bucket)
	assert.True(t, cfg.Sentry.Enabled())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "counter backend", body: "counter:\n  backend: redis\n"},
		{name: "remote entropy without url", body: "entropy:\n  source: remote\n"},
		{name: "length bounds", body: "gatekeeper:\n  min_length: 10\n  max_length: 5\n"},
		{name: "quota window", body: "quota:\n  limit: 5\n  window: 0s\n"},
		{name: "durable storage with memory counter", body: "storage:\n  type: local\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "portrait", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=portrait sslmode=disable", pg.DSN())

	lite := DatabaseConfig{Driver: "sqlite", Path: "./data/portrait.db"}
	assert.Equal(t, "./data/portrait.db?_busy_timeout=5000", lite.DSN())

	mem := DatabaseConfig{Driver: "sqlite"}
	assert.Equal(t, "file::memory:?cache=shared", mem.DSN())
}
