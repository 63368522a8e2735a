package corpus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fernwehlabs/sift/internal/classifier"
	"github.com/fernwehlabs/sift/internal/memory"
)

func TestExamples_AllCategoriesValid(t *testing.T) {
	require.NotEmpty(t, Examples)
	for _, ex := range Examples {
		_, err := memory.ParseCategory(string(ex.Category))
		assert.NoError(t, err, "example %q", ex.Text)
		assert.NotEmpty(t, ex.Text)
	}
}

func TestExamples_CoverEveryCategoryAndLabel(t *testing.T) {
	type key struct {
		cat  memory.Category
		safe bool
	}
	seen := map[key]bool{}
	for _, ex := range Examples {
		seen[key{ex.Category, ex.Safe}] = true
	}
	for _, cat := range memory.Categories {
		assert.True(t, seen[key{cat, true}], "category %s needs safe examples", cat)
		assert.True(t, seen[key{cat, false}], "category %s needs unsafe examples", cat)
	}
}

func TestSeed_PopulatesStore(t *testing.T) {
	svc, err := classifier.NewService(classifier.DefaultConfig(), "", zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, Seed(ctx, svc, zap.NewNop()))

	// Unsafe corpus entries go through SetLabel and so never land in the
	// store, whatever the network thinks of them.
	for _, ex := range Examples {
		if ex.Safe {
			continue
		}
		items, err := svc.Items(ctx, string(ex.Category))
		require.NoError(t, err)
		assert.NotContains(t, items, ex.Text)
	}
}
