// Package config provides configuration loading for sift.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/fernwehlabs/sift/internal/logging"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// Config is the root configuration for the sift binary.
type Config struct {
	Classifier ClassifierConfig `koanf:"classifier"`
	Network    NetworkConfig    `koanf:"network"`
	Storage    StorageConfig    `koanf:"storage"`
	Logging    logging.Config   `koanf:"logging"`
	Server     ServerConfig     `koanf:"server"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

// ClassifierConfig holds the decision parameters.
type ClassifierConfig struct {
	// BanThreshold is the ban line shared by scoring and storage.
	BanThreshold float64 `koanf:"ban_threshold"`

	// TrainEpochs is the gradient step count per supervised label.
	TrainEpochs int `koanf:"train_epochs"`

	// ReinforceEpochs is the lighter step count for self-reinforcement.
	ReinforceEpochs int `koanf:"reinforce_epochs"`

	// UnsafeScore is the pinned score for operator-marked unsafe items.
	UnsafeScore float64 `koanf:"unsafe_score"`

	// MatchThreshold is the minimum similarity for a respond match.
	// Zero is treated as unset and replaced by the default; to accept
	// every candidate, set a small positive value such as 0.0001.
	MatchThreshold float64 `koanf:"match_threshold"`
}

// NetworkConfig holds the network topology and learning rate.
type NetworkConfig struct {
	InputSize    int     `koanf:"input_size"`
	HiddenSize   int     `koanf:"hidden_size"`
	OutputSize   int     `koanf:"output_size"`
	LearningRate float64 `koanf:"learning_rate"`
}

// StorageConfig holds snapshot persistence settings.
type StorageConfig struct {
	// SnapshotPath is the memory snapshot file. Empty disables
	// persistence.
	SnapshotPath string `koanf:"snapshot_path"`

	// SeedOnEmpty replays the bundled corpus when the store starts empty.
	SeedOnEmpty bool `koanf:"seed_on_empty"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
	Endpoint    string `koanf:"endpoint"`
	Insecure    bool   `koanf:"insecure"`
}

// Load reads configuration with the following precedence (highest first):
//
//  1. Environment variables (SIFT_CLASSIFIER_BAN_THRESHOLD, ...)
//  2. YAML config file, when configPath is non-empty
//  3. Hardcoded defaults
//
// Environment variables drop the SIFT_ prefix, lowercase, and split on
// the first underscore into section.field:
//
//	SIFT_SERVER_PORT              -> server.port
//	SIFT_CLASSIFIER_BAN_THRESHOLD -> classifier.ban_threshold
//	SIFT_STORAGE_SNAPSHOT_PATH    -> storage.snapshot_path
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		info, err := os.Stat(configPath)
		if err != nil {
			return nil, fmt.Errorf("config: stat %s: %w", configPath, err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config: file too large: %d bytes (max %d)",
				info.Size(), maxConfigFileSize)
		}
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("SIFT_", ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, "SIFT_"))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return &cfg, nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) error {
	if cfg.Classifier.BanThreshold == 0 {
		cfg.Classifier.BanThreshold = 0.7
	}
	if cfg.Classifier.TrainEpochs == 0 {
		cfg.Classifier.TrainEpochs = 5
	}
	if cfg.Classifier.ReinforceEpochs == 0 {
		cfg.Classifier.ReinforceEpochs = 2
	}
	if cfg.Classifier.UnsafeScore == 0 {
		cfg.Classifier.UnsafeScore = 0.9
	}
	if cfg.Classifier.MatchThreshold == 0 {
		cfg.Classifier.MatchThreshold = 0.3
	}

	if cfg.Network.InputSize == 0 {
		cfg.Network.InputSize = 64
	}
	if cfg.Network.HiddenSize == 0 {
		cfg.Network.HiddenSize = 32
	}
	if cfg.Network.OutputSize == 0 {
		cfg.Network.OutputSize = 8
	}
	if cfg.Network.LearningRate == 0 {
		cfg.Network.LearningRate = 0.15
	}

	if cfg.Storage.SnapshotPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("config: resolve home directory: %w", err)
		}
		cfg.Storage.SnapshotPath = filepath.Join(home, ".config", "sift", "memory.json")
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8642
	}

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "sift"
	}
	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4318"
	}
	return nil
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if c.Classifier.BanThreshold <= 0 || c.Classifier.BanThreshold > 1 {
		return fmt.Errorf("classifier.ban_threshold must be in (0, 1], got %g",
			c.Classifier.BanThreshold)
	}
	if c.Classifier.TrainEpochs <= 0 || c.Classifier.ReinforceEpochs <= 0 {
		return fmt.Errorf("classifier epochs must be positive")
	}
	if c.Network.InputSize <= 0 || c.Network.HiddenSize <= 0 || c.Network.OutputSize <= 0 {
		return fmt.Errorf("network sizes must be positive, got %d/%d/%d",
			c.Network.InputSize, c.Network.HiddenSize, c.Network.OutputSize)
	}
	if c.Network.LearningRate <= 0 {
		return fmt.Errorf("network.learning_rate must be > 0, got %g", c.Network.LearningRate)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	return c.Logging.Validate()
}
