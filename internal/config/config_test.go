package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.dev.yaml"), []byte(content), 0o644))
	t.Chdir(dir)
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, int64(65536), cfg.ReadLimit)
	assert.NotEmpty(t, cfg.STUNServers)
}

func TestLoadReadsFile(t *testing.T) {
	writeConfig(t, "mode: debug\nport: 9090\nsecret: s3cret\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "s3cret", cfg.Secret)
}

func TestLoadMalformedFileErrors(t *testing.T) {
	writeConfig(t, "port: {not a number\n")

	_, err := Load()
	require.Error(t, err)
}
