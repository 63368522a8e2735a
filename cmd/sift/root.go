package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fernwehlabs/sift/internal/classifier"
	"github.com/fernwehlabs/sift/internal/config"
	"github.com/fernwehlabs/sift/internal/corpus"
	"github.com/fernwehlabs/sift/internal/logging"
	"github.com/fernwehlabs/sift/internal/network"
)

var (
	// configPath is the optional YAML config file.
	configPath string
	// version information (set via ldflags during build)
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "Trainable content classifier with a ban-line memory store",
	Long: `sift scores text on a 0-1 inappropriateness scale and remembers
allowed items in a small store partitioned into words, phrases, and game
ideas. Items scoring at or above the ban line are banned.

Train it with labeled examples, let it decide on its own, and override it
when it gets something wrong.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
}

// app bundles everything a command needs after startup.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	classifier classifier.Service
}

// newApp loads config, builds the logger and classifier, and seeds the
// bundled corpus when the store starts empty and seeding is enabled.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	svc, err := classifier.NewService(&classifier.Config{
		BanThreshold:    cfg.Classifier.BanThreshold,
		TrainEpochs:     cfg.Classifier.TrainEpochs,
		ReinforceEpochs: cfg.Classifier.ReinforceEpochs,
		UnsafeScore:     cfg.Classifier.UnsafeScore,
		MatchThreshold:  cfg.Classifier.MatchThreshold,
		Network: network.Config{
			InputSize:    cfg.Network.InputSize,
			HiddenSize:   cfg.Network.HiddenSize,
			OutputSize:   cfg.Network.OutputSize,
			LearningRate: cfg.Network.LearningRate,
		},
	}, cfg.Storage.SnapshotPath, logger)
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	if cfg.Storage.SeedOnEmpty && svc.Size(ctx) == 0 {
		if err := corpus.Seed(ctx, svc, logger); err != nil {
			return nil, err
		}
	}

	return &app{cfg: cfg, logger: logger, classifier: svc}, nil
}

// close flushes the logger; snapshot saving is each command's concern.
func (a *app) close() {
	_ = a.logger.Sync()
}
