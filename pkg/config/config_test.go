package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "./recordings", config.SpoolDir)
	assert.Equal(t, 50000, config.MaxResultRows)
	assert.Equal(t, "127.0.0.1", config.Server.Bind)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestSaveAndLoadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	config := DefaultConfig()
	config.SpoolDir = "/var/spool/chunkstream"
	config.MaxResultRows = 250
	config.Server.APIKey = "test-key"

	require.NoError(t, SaveConfig(config, configPath))
	assert.True(t, ConfigExists(configPath))

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, config.SpoolDir, loaded.SpoolDir)
	assert.Equal(t, config.MaxResultRows, loaded.MaxResultRows)
	assert.Equal(t, config.Server.APIKey, loaded.Server.APIKey)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestBootstrapConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	config, err := BootstrapConfig(configPath, filepath.Join(dir, "spool"))
	require.NoError(t, err)

	// The generated API key replaces the "auto" placeholder.
	assert.NotEqual(t, "auto", config.Server.APIKey)
	assert.Len(t, config.Server.APIKey, 64)

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.Server.APIKey, loaded.Server.APIKey)
}

func TestGenerateSecureKey(t *testing.T) {
	first, err := GenerateSecureKey(32)
	require.NoError(t, err)
	second, err := GenerateSecureKey(32)
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}
