package encoder

import "math"

// Encode projects text onto a feature vector of the given length.
//
// Only the first size*4 characters contribute; longer text is silently
// truncated. Each character accumulates 0.3 into a slot chosen by
// (codepoint*31 + position) mod size, wrapping values back into [0, 1).
// The result depends only on text and size.
func Encode(text string, size int) []float64 {
	vec := make([]float64, size)
	if size <= 0 {
		return vec
	}
	runes := []rune(text)
	limit := size * 4
	if len(runes) > limit {
		runes = runes[:limit]
	}
	for i, r := range runes {
		idx := (int(r)*31 + i) % size
		vec[idx] = math.Mod(vec[idx]+0.3, 1.0)
	}
	return vec
}

// Similarity returns 1 minus the euclidean distance between two vectors.
// It is not a normalized similarity: distant vectors produce negative
// values. Identical vectors return exactly 1.
func Similarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return 1 - math.Sqrt(sum)
}
