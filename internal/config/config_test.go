package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WritesTemplatesThenLoadsOnRetry(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	require.Error(t, err, "first call should fail and write config.toml")
	assert.FileExists(t, filepath.Join(dir, "config.toml"))

	_, err = Load(dir)
	require.Error(t, err, "second call should fail and write credentials.toml")
	assert.FileExists(t, filepath.Join(dir, "credentials.toml"))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "SPY"}, cfg.WatchedSymbols)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.DatabaseURL)
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	dir := t.TempDir()
	_, _ = Load(dir)
	_, _ = Load(dir)

	t.Setenv("DATABASE_URL", "postgres://override/db")
	t.Setenv("WATCHED_SYMBOLS", "TSLA, NVDA")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres://override/db", cfg.DatabaseURL)
	assert.Equal(t, []string{"TSLA", "NVDA"}, cfg.WatchedSymbols)
}

func TestValidate_RejectsEmptyWatchedSymbols(t *testing.T) {
	dir := t.TempDir()
	_, _ = Load(dir)
	_, _ = Load(dir)
	cfg, err := Load(dir)
	require.NoError(t, err)

	cfg.WatchedSymbols = nil
	assert.Error(t, Validate(cfg))
}

func TestValidate_RejectsOutOfRangeThreshold(t *testing.T) {
	dir := t.TempDir()
	_, _ = Load(dir)
	_, _ = Load(dir)
	cfg, err := Load(dir)
	require.NoError(t, err)

	cfg.Gate.MinConfidenceThreshold = 1.5
	assert.Error(t, Validate(cfg))
}

func TestValidate_StrategistEnabledRequiresKey(t *testing.T) {
	dir := t.TempDir()
	_, _ = Load(dir)
	_, _ = Load(dir)
	cfg, err := Load(dir)
	require.NoError(t, err)

	cfg.Collaborators.StrategistEnabled = true
	cfg.Collaborators.StrategistAPIKey = ""
	assert.Error(t, Validate(cfg))
}
