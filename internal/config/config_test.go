package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is a stand-in for t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestDefault(t *testing.T) {
	config := Default()

	assert.Equal(t, "gpt-4o", config.LLM.Model)
	assert.Equal(t, "gpt-4o-mini", config.LLM.FallbackModel)
	assert.Equal(t, 2, config.Retry.MaxComplianceRetries)
	assert.Equal(t, 3, config.Retry.MaxTransientRetries)
	assert.Equal(t, 500*time.Millisecond, config.Retry.BackoffBase)
	assert.Equal(t, 0.5, config.Compliance.CJKThreshold)
	assert.Equal(t, "paper-digest", config.Pipeline.TemplateID)
	assert.Equal(t, "info", config.LogLevel)
	assert.NoError(t, config.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", config.LLM.Model)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "papersumm.yaml")
	content := `
log_level: debug
llm:
  model: gpt-5
  fallback_model: ""
  timeout: 90s
retry:
  max_compliance_retries: 4
compliance:
  cjk_threshold: 0.7
pipeline:
  max_concurrent: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "gpt-5", config.LLM.Model)
	assert.Empty(t, config.LLM.FallbackModel)
	assert.Equal(t, 90*time.Second, config.LLM.Timeout)
	assert.Equal(t, 4, config.Retry.MaxComplianceRetries)
	assert.Equal(t, 0.7, config.Compliance.CJKThreshold)
	assert.Equal(t, 8, config.Pipeline.MaxConcurrent)

	// Untouched keys keep their defaults.
	assert.Equal(t, 3, config.Retry.MaxTransientRetries)
	assert.Equal(t, "paper-digest", config.Pipeline.TemplateID)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PAPERSUMM_LLM_MODEL", "env-model")
	t.Setenv("PAPERSUMM_LOG_LEVEL", "warn")

	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-model", config.LLM.Model)
	assert.Equal(t, "warn", config.LogLevel)
}

func TestLoadAPIKeyFallsBackToOpenAIEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test")

	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", config.LLM.APIKey)
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "papersumm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compliance:\n  cjk_threshold: 1.5\n"), 0o644))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDatabasePath(t *testing.T) {
	config := &Config{DataDir: "/tmp/papersumm"}
	assert.Equal(t, filepath.Join("/tmp/papersumm", "papersumm.db"), config.DatabasePath())
}
