package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "spring", cfg.LayoutAlgorithm())
	assert.Equal(t, 1.0, cfg.LayoutSpacing())
	assert.Equal(t, 50, cfg.SpringIterations())
	assert.Equal(t, 500, cfg.KamadaKawaiIterations())
	assert.Equal(t, int64(42), cfg.LayoutSeed())
	assert.Equal(t, time.Duration(0), cfg.LayoutTimeout())
	assert.Equal(t, 5, cfg.TopK())
	assert.Equal(t, "greedy", cfg.CommunityMethod())
	assert.Equal(t, int64(42), cfg.CommunitySeed())
	assert.False(t, cfg.FoldCase())
	assert.Equal(t, ":8080", cfg.ServerAddress())
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout())
	assert.Equal(t, int64(10<<20), cfg.MaxBodyBytes())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
	assert.Equal(t, "info", cfg.LogLevel())
}

func TestSet(t *testing.T) {
	cfg := NewConfig()
	cfg.Set("layout.timeout_ms", 250)
	cfg.Set("metrics.top_k", 3)

	assert.Equal(t, 250*time.Millisecond, cfg.LayoutTimeout())
	assert.Equal(t, 3, cfg.TopK())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
layout:
  algorithm: kamada_kawai
  spacing: 0.25
metrics:
  top_k: 10
server:
  address: ":9090"
  request_timeout: 5s
  allowed_origins:
    - https://fraud.example.com
`), 0644))

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "kamada_kawai", cfg.LayoutAlgorithm())
	assert.Equal(t, 0.25, cfg.LayoutSpacing())
	assert.Equal(t, 10, cfg.TopK())
	assert.Equal(t, ":9090", cfg.ServerAddress())
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
	assert.Equal(t, []string{"https://fraud.example.com"}, cfg.AllowedOrigins())
	// untouched keys keep their defaults
	assert.Equal(t, 50, cfg.SpringIterations())

	assert.Error(t, NewConfig().LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("LINKGRAPH_SERVER_ADDRESS", ":7000")
	t.Setenv("LINKGRAPH_NORMALIZE_FOLD_CASE", "true")

	cfg := NewConfig()
	assert.Equal(t, ":7000", cfg.ServerAddress())
	assert.True(t, cfg.FoldCase())
}

func TestCreateLogger(t *testing.T) {
	cfg := NewConfig()
	cfg.Set("logging.format", "json")
	cfg.Set("logging.level", "warn")

	var buf bytes.Buffer
	logger := cfg.CreateLoggerTo(&buf, "linkgraph-test")
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), `"service":"linkgraph-test"`)
	assert.Contains(t, buf.String(), `"message":"shown"`)

	cfg.Set("logging.level", "nonsense")
	assert.Equal(t, zerolog.InfoLevel, cfg.CreateLoggerTo(&buf, "x").GetLevel())
}
