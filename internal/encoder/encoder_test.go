package encoder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Deterministic(t *testing.T) {
	a := Encode("hello world", 64)
	b := Encode("hello world", 64)
	require.Len(t, a, 64)
	assert.Equal(t, a, b, "same text and size must produce bit-identical vectors")
}

func TestEncode_Length(t *testing.T) {
	for _, size := range []int{1, 8, 64, 128} {
		assert.Len(t, Encode("some text", size), size)
	}
}

func TestEncode_EmptyText(t *testing.T) {
	vec := Encode("", 16)
	require.Len(t, vec, 16)
	for i, v := range vec {
		assert.Zero(t, v, "slot %d", i)
	}
}

func TestEncode_TruncatesLongText(t *testing.T) {
	size := 8
	base := strings.Repeat("x", size*4)
	longer := base + "extra characters beyond the window"

	assert.Equal(t, Encode(base, size), Encode(longer, size),
		"characters past size*4 must not contribute")
}

func TestEncode_KnownSlots(t *testing.T) {
	// "A" is codepoint 65: slot = (65*31 + 0) % 8 = 2015 % 8 = 7.
	vec := Encode("A", 8)
	assert.InDelta(t, 0.3, vec[7], 1e-12)
	for i, v := range vec {
		if i != 7 {
			assert.Zero(t, v, "slot %d", i)
		}
	}
}

func TestEncode_WrapsIntoUnitInterval(t *testing.T) {
	// Pile many identical characters onto a tiny vector so slots wrap.
	vec := Encode(strings.Repeat("a", 4), 1)
	require.Len(t, vec, 1)
	assert.GreaterOrEqual(t, vec[0], 0.0)
	assert.Less(t, vec[0], 1.0)
}

func TestSimilarity_Identical(t *testing.T) {
	v := Encode("playing minecraft", 64)
	assert.Equal(t, 1.0, Similarity(v, v))
}

func TestSimilarity_CanGoNegative(t *testing.T) {
	a := make([]float64, 4)
	b := []float64{2, 2, 2, 2}
	assert.Negative(t, Similarity(a, b),
		"similarity is unnormalized and goes negative for distant vectors")
}
