// Package corpus bundles the labeled starter examples used to pre-train a
// fresh classifier and seed its memory store.
//
// The corpus is pure data replayed through SetLabel in sequence order.
// Order matters: a later entry for the same text overrides the effect of
// an earlier one, so corrections can simply be appended.
package corpus

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fernwehlabs/sift/internal/classifier"
	"github.com/fernwehlabs/sift/internal/memory"
)

// Example is one labeled training item.
type Example struct {
	Text     string
	Safe     bool
	Category memory.Category
}

// Examples is the bundled starter corpus, applied in order.
var Examples = []Example{
	// Words
	{"puppy", true, memory.CategoryWords},
	{"rainbow", true, memory.CategoryWords},
	{"friend", true, memory.CategoryWords},
	{"soccer", true, memory.CategoryWords},
	{"treehouse", true, memory.CategoryWords},
	{"sparkle", true, memory.CategoryWords},
	{"robot", true, memory.CategoryWords},
	{"dinosaur", true, memory.CategoryWords},
	{"stupid", false, memory.CategoryWords},
	{"idiot", false, memory.CategoryWords},
	{"loser", false, memory.CategoryWords},
	{"hate", false, memory.CategoryWords},

	// Phrases
	{"eat your veggies", true, memory.CategoryPhrases},
	{"good morning sunshine", true, memory.CategoryPhrases},
	{"let's build a fort", true, memory.CategoryPhrases},
	{"playing Minecraft", true, memory.CategoryPhrases},
	{"can we go to the park", true, memory.CategoryPhrases},
	{"time for bed", true, memory.CategoryPhrases},
	{"great job on your homework", true, memory.CategoryPhrases},
	{"shut up", false, memory.CategoryPhrases},
	{"you are so dumb", false, memory.CategoryPhrases},
	{"i hate you", false, memory.CategoryPhrases},
	{"kill yourself", false, memory.CategoryPhrases},
	{"nobody likes you", false, memory.CategoryPhrases},

	// Game ideas
	{"build a castle with a secret tunnel", true, memory.CategoryGameIdeas},
	{"pirate treasure hunt in the backyard", true, memory.CategoryGameIdeas},
	{"racing snails across the kitchen table", true, memory.CategoryGameIdeas},
	{"design a zoo for imaginary animals", true, memory.CategoryGameIdeas},
	{"floor is lava obstacle course", true, memory.CategoryGameIdeas},
	{"prank calling strangers", false, memory.CategoryGameIdeas},
	{"fight club behind the school", false, memory.CategoryGameIdeas},
}

// Seed replays the bundled corpus through the classifier's SetLabel
// workflow. Safe items that train below the ban line land in memory;
// unsafe items train the network toward banned and stay out of the store.
func Seed(ctx context.Context, svc classifier.Service, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	stored := 0
	for _, ex := range Examples {
		res, err := svc.SetLabel(ctx, ex.Text, ex.Safe, string(ex.Category))
		if err != nil {
			return fmt.Errorf("corpus: seed %q: %w", ex.Text, err)
		}
		if res.Stored {
			stored++
		}
	}

	logger.Info("corpus seeded",
		zap.Int("examples", len(Examples)),
		zap.Int("stored", stored))
	return nil
}
