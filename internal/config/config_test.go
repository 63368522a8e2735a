package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Classifier.BanThreshold)
	assert.Equal(t, 5, cfg.Classifier.TrainEpochs)
	assert.Equal(t, 2, cfg.Classifier.ReinforceEpochs)
	assert.Equal(t, 0.9, cfg.Classifier.UnsafeScore)
	assert.Equal(t, 0.3, cfg.Classifier.MatchThreshold)

	assert.Equal(t, 64, cfg.Network.InputSize)
	assert.Equal(t, 32, cfg.Network.HiddenSize)
	assert.Equal(t, 8, cfg.Network.OutputSize)
	assert.Equal(t, 0.15, cfg.Network.LearningRate)

	assert.NotEmpty(t, cfg.Storage.SnapshotPath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8642, cfg.Server.Port)
	assert.Equal(t, "sift", cfg.Telemetry.ServiceName)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
classifier:
  ban_threshold: 0.8
  train_epochs: 10
network:
  hidden_size: 16
logging:
  level: debug
  format: console
server:
  port: 9999
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.8, cfg.Classifier.BanThreshold)
	assert.Equal(t, 10, cfg.Classifier.TrainEpochs)
	assert.Equal(t, 16, cfg.Network.HiddenSize)
	assert.Equal(t, 64, cfg.Network.InputSize, "unset fields keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0600))

	t.Setenv("SIFT_SERVER_PORT", "7777")
	t.Setenv("SIFT_CLASSIFIER_BAN_THRESHOLD", "0.65")
	t.Setenv("SIFT_STORAGE_SNAPSHOT_PATH", "/tmp/sift-test/memory.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, 0.65, cfg.Classifier.BanThreshold)
	assert.Equal(t, "/tmp/sift-test/memory.json", cfg.Storage.SnapshotPath)
}

// An explicit zero match threshold reads as unset and takes the default.
func TestLoad_ZeroMatchThresholdTakesDefault(t *testing.T) {
	t.Setenv("SIFT_CLASSIFIER_MATCH_THRESHOLD", "0")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.Classifier.MatchThreshold)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("SIFT_CLASSIFIER_BAN_THRESHOLD", "1.5")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - not valid"), 0600))
	_, err := Load(path)
	assert.Error(t, err)
}
