// Package encoder turns text into fixed-length numeric feature vectors.
//
// The encoding is a lossy hash projection, not a semantic embedding:
// characters are folded into vector slots by position, so short or
// near-duplicate strings may collide. That trade-off keeps the encoder
// dependency-free and bit-for-bit deterministic, which the classifier
// relies on for reproducible scoring and similarity lookups.
package encoder
