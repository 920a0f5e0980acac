package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project/host-services/config"
)

func TestSetupFile(t *testing.T) {
	previous := log.Default()
	defer log.SetDefault(previous)

	path := filepath.Join(t.TempDir(), "host-services.log")
	closer, err := Setup(config.LogConfig{Level: "warn", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	log.Info("not written")
	log.Warn("Skipping invalid network", "pattern", "bogus")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Skipping invalid network")
	assert.Contains(t, string(data), "pattern=bogus")
	assert.NotContains(t, string(data), "not written")
}

func TestSetupBadLevel(t *testing.T) {
	_, err := Setup(config.LogConfig{Level: "chatty"})
	assert.Error(t, err)
}
