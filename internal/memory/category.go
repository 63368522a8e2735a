package memory

import (
	"errors"
	"fmt"
)

// ErrUnknownCategory reports a category name outside the fixed set.
var ErrUnknownCategory = errors.New("memory: unknown category")

// Category selects one of the three content partitions. The set is closed;
// callers cannot extend it at runtime.
type Category string

const (
	// CategoryWords holds single vocabulary words.
	CategoryWords Category = "words"

	// CategoryPhrases holds short free-form phrases.
	CategoryPhrases Category = "phrases"

	// CategoryGameIdeas holds game idea descriptions.
	CategoryGameIdeas Category = "game_ideas"
)

// Categories lists every valid category in a stable order.
var Categories = []Category{CategoryWords, CategoryPhrases, CategoryGameIdeas}

// ValidCategories maps valid category strings to their typed values.
var ValidCategories = map[string]Category{
	string(CategoryWords):     CategoryWords,
	string(CategoryPhrases):   CategoryPhrases,
	string(CategoryGameIdeas): CategoryGameIdeas,
}

// ParseCategory converts a string into a Category, rejecting anything
// outside the fixed set with ErrUnknownCategory.
func ParseCategory(s string) (Category, error) {
	if c, ok := ValidCategories[s]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}
