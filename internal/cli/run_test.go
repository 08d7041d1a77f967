package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/internal/claude"
	"github.com/agentdeck/agentdeck/internal/config"
)

func TestBuildRequestDefaultsFromConfig(t *testing.T) {
	cfg := config.GenerateDefault()
	cfg.Model = "opus"

	req, err := buildRequest(cfg, "say hi", "", "/work/p1", false, "")
	require.NoError(t, err)

	assert.Equal(t, "say hi", req.Prompt)
	assert.Equal(t, "opus", req.Model, "model falls back to config")
	assert.Equal(t, "/work/p1", req.WorkDir)
	assert.Equal(t, claude.ModeFresh, req.Mode)
	assert.Empty(t, req.SessionID)
}

func TestBuildRequestExplicitModelWins(t *testing.T) {
	cfg := config.GenerateDefault()

	req, err := buildRequest(cfg, "p", "haiku", "/work", false, "")
	require.NoError(t, err)
	assert.Equal(t, "haiku", req.Model)
}

func TestBuildRequestContinueMode(t *testing.T) {
	req, err := buildRequest(config.GenerateDefault(), "p", "", "/work", true, "")
	require.NoError(t, err)
	assert.Equal(t, claude.ModeContinue, req.Mode)
}

func TestBuildRequestResumeMode(t *testing.T) {
	req, err := buildRequest(config.GenerateDefault(), "p", "", "/work", false, "sess-9")
	require.NoError(t, err)
	assert.Equal(t, claude.ModeResume, req.Mode)
	assert.Equal(t, "sess-9", req.SessionID)
}

func TestBuildRequestContinueAndResumeConflict(t *testing.T) {
	_, err := buildRequest(config.GenerateDefault(), "p", "", "/work", true, "sess-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestBuildRequestDefaultsDirToCwd(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	req, err := buildRequest(config.GenerateDefault(), "p", "", "", false, "")
	require.NoError(t, err)
	assert.NotEmpty(t, req.WorkDir)
}
