package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEndpoint(t *testing.T) {
	cfg := Default()
	assert.Equal(t, defaultAPIEndpoint, cfg.API.Endpoint)
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  dir: /var/lib/turtlcore\nworkers:\n  crypto: 4\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, defaultAPIEndpoint, cfg.API.Endpoint)
	assert.Equal(t, "/var/lib/turtlcore", cfg.Data.Dir)
	assert.Equal(t, 4, cfg.Workers.Crypto)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

