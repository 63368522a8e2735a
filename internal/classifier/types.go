package classifier

import (
	"fmt"

	"github.com/fernwehlabs/sift/internal/network"
)

// Config fixes a Service's decision parameters at construction. Every
// knob is explicit so independently configured instances can coexist.
type Config struct {
	// BanThreshold is the ban line: scores at or above it are banned.
	BanThreshold float64

	// TrainEpochs is the number of gradient steps per supervised label.
	TrainEpochs int

	// ReinforceEpochs is the lighter step count used when Decide
	// self-reinforces an item it judged safe.
	ReinforceEpochs int

	// UnsafeScore is the fixed score recorded when AddItem marks an item
	// unsafe, overriding whatever the network predicts. It must sit at or
	// above BanThreshold so pinned items always read as banned.
	UnsafeScore float64

	// MatchThreshold is the minimum similarity Respond requires before
	// returning a match.
	MatchThreshold float64

	// Network configures the underlying feed-forward network.
	Network network.Config
}

// DefaultConfig returns the standard classifier parameters.
func DefaultConfig() *Config {
	return &Config{
		BanThreshold:    0.7,
		TrainEpochs:     5,
		ReinforceEpochs: 2,
		UnsafeScore:     0.9,
		MatchThreshold:  0.3,
		Network:         network.DefaultConfig(),
	}
}

// Validate checks the config for usable values.
func (c *Config) Validate() error {
	if c.BanThreshold <= 0 || c.BanThreshold > 1 {
		return fmt.Errorf("classifier: ban threshold must be in (0, 1], got %g", c.BanThreshold)
	}
	if c.TrainEpochs <= 0 {
		return fmt.Errorf("classifier: train epochs must be > 0, got %d", c.TrainEpochs)
	}
	if c.ReinforceEpochs <= 0 {
		return fmt.Errorf("classifier: reinforce epochs must be > 0, got %d", c.ReinforceEpochs)
	}
	if c.UnsafeScore < c.BanThreshold {
		return fmt.Errorf("classifier: unsafe score %g must not fall below the ban threshold %g",
			c.UnsafeScore, c.BanThreshold)
	}
	if c.MatchThreshold < 0 || c.MatchThreshold >= 1 {
		return fmt.Errorf("classifier: match threshold must be in [0, 1), got %g", c.MatchThreshold)
	}
	return c.Network.Validate()
}

// Decision is the outcome of a self-supervised classification.
type Decision struct {
	// Safe is true when the score fell below the ban line.
	Safe bool `json:"safe"`

	// Score is the network score the decision was based on.
	Score float64 `json:"score"`
}

// LabelResult reports what a SetLabel call did.
type LabelResult struct {
	// Safe echoes the label that was applied.
	Safe bool `json:"safe"`

	// Stored is true when the item ended up in the memory store. A safe
	// label may still leave the item unstored if the retrained score
	// stayed above the ban line.
	Stored bool `json:"stored"`

	// Score is the network score after retraining.
	Score float64 `json:"score"`
}
