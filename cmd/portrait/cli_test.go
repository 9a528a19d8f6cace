package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/portrait/internal/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	prev := appFs
	appFs = afero.NewMemMapFs()
	t.Cleanup(func() { appFs = prev })
	return appFs
}

func resetRenderFlags() {
	renderMood, renderCreator, renderSeed, renderAt, renderOut, renderDigest = "", "", "", "", ".", "rolling"
}

func TestRenderAndVerify(t *testing.T) {
	fs := useMemFs(t)
	resetRenderFlags()

	out, err := execute(t, "render", "--out", "/out", "--mood", "joyful", "--digest", "sha256", "a", "sunny", "meadow")
	require.NoError(t, err)
	assert.Contains(t, out, "mood:        joyful")

	for _, name := range []string{"portrait.html", "certificate.txt", "provenance.json"} {
		ok, err := afero.Exists(fs, "/out/"+name)
		require.NoError(t, err)
		assert.True(t, ok, name)
	}

	out, err = execute(t, "verify", "/out/provenance.json")
	require.NoError(t, err)
	assert.Contains(t, out, "OK ")
	assert.Contains(t, out, "sha256")
}

func TestVerifyDetectsTampering(t *testing.T) {
	fs := useMemFs(t)
	resetRenderFlags()

	_, err := execute(t, "render", "--out", "/out", "a", "quiet", "harbor")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/out/provenance.json")
	require.NoError(t, err)
	var rec domain.ProvenanceRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	rec.Parameters.Head.Rotation = 7.5
	data, err = json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/out/tampered.json", data, 0644))

	_, err = execute(t, "verify", "/out/tampered.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fingerprint mismatch")
}

func TestRenderReplaysSeed(t *testing.T) {
	fs := useMemFs(t)
	resetRenderFlags()

	args := []string{"render", "--seed", "fixed|1700000000000|salt|", "--at", "2023-11-14T22:13:20Z", "a", "dramatic", "sky"}
	_, err := execute(t, append(args, "--out", "/a")...)
	require.NoError(t, err)
	_, err = execute(t, append(args, "--out", "/b")...)
	require.NoError(t, err)

	a, err := afero.ReadFile(fs, "/a/portrait.html")
	require.NoError(t, err)
	b, err := afero.ReadFile(fs, "/b/portrait.html")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderRejectsInvalidInput(t *testing.T) {
	useMemFs(t)
	resetRenderFlags()

	_, err := execute(t, "render", "--out", "/out", "x")
	assert.Error(t, err)

	resetRenderFlags()
	_, err = execute(t, "render", "--out", "/out", "--mood", "furious", "a", "calm", "lake")
	assert.Error(t, err)
}

func TestMoods(t *testing.T) {
	out, err := execute(t, "moods")
	require.NoError(t, err)
	assert.Contains(t, out, "hopeful (default)")
	assert.Contains(t, out, "melancholic")
}
