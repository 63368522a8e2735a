// Package classifier binds the encoder, network, and memory store into the
// public content-filtering workflows.
//
// A Service turns operator labels into training targets, interprets
// network scores against the ban line, and gates what the memory store
// remembers. It supports three workflows: supervised labeling (SetLabel,
// AddItem), self-supervised classification (Decide), and nearest-match
// retrieval (Respond).
//
// All operations serialize on an internal mutex; a Service may be shared
// across goroutines but performs no concurrent training.
package classifier
