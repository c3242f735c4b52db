package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LLM_PROVIDER", "openrouter")
	t.Setenv("LLM_MODEL", "openai/gpt-4o-mini")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "openrouter", cfg.LLMConfig.Provider)
	assert.Equal(t, "openai/gpt-4o-mini", cfg.LLMConfig.Model)
	assert.Equal(t, "info", cfg.LogConfig.Level)
	assert.Equal(t, ".checkpoints", cfg.StorageConfig.CheckpointDir)
}

func TestLoadBenchConfigMissingFile(t *testing.T) {
	cfg, err := LoadBenchConfig(filepath.Join(t.TempDir(), "bench.yaml"))
	require.NoError(t, err)
	assert.Len(t, cfg.Evaluation.Models, 3)
	assert.Equal(t, 120, cfg.Defaults.TimeoutSec)
}

func TestLoadBenchConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	content := `
paths:
  scenarios: bench/scenarios
evaluation:
  models: ["a/one", "b/two"]
defaults:
  max_workers: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadBenchConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "bench/scenarios", cfg.Paths.Scenarios)
	assert.Equal(t, "configs", cfg.Paths.Configs)
	assert.Equal(t, []string{"a/one", "b/two"}, cfg.Evaluation.Models)
	assert.Equal(t, 4, cfg.Defaults.MaxWorkers)
	assert.Equal(t, 5, cfg.Evaluation.MaxRetries)
}

func TestLoadBenchConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paths: [unclosed"), 0o644))

	_, err := LoadBenchConfig(path)
	assert.Error(t, err)
}
