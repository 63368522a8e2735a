// Package network implements a small two-layer feed-forward network
// trained by online back-propagation.
//
// The network is a plain numeric transform: a forward pass through two
// sigmoid layers, plus one mutating operation (TrainStep) that applies a
// single gradient-descent update. There is no batching, momentum,
// regularization, or learning-rate decay. Callers that share a Network
// across goroutines must provide their own mutual exclusion.
package network
