// Package completion abstracts the text-generation backend. The orchestrator
// only depends on the Client contract; the Ollama implementation lives in
// this package as well.
package completion

import (
	"context"
	"errors"

	"prompterd/internal/message"
)

// ErrUnknownModel is returned when a model key has no configuration. The
// orchestrator surfaces it as a configuration error before any backend call.
var ErrUnknownModel = errors.New("model not found in configuration")

// Chunk is one partial-output event from a streaming completion.
type Chunk struct {
	Text        string // the new fragment
	Accumulated string // everything produced so far, including Text
}

// StreamFunc receives partial-output chunks. It is called from the
// execution's own goroutine and must not block.
type StreamFunc func(Chunk)

// Client is the completion backend contract. Implementations hold no
// per-call mutable state and may be shared across concurrent executions.
// Both calls honor context cancellation.
type Client interface {
	// Complete runs a single-shot completion and returns the full text.
	Complete(ctx context.Context, modelKey string, msgs []message.Message) (string, error)

	// CompleteStream runs a streaming completion, invoking fn for every
	// partial chunk, and returns the full accumulated text.
	CompleteStream(ctx context.Context, modelKey string, msgs []message.Message, fn StreamFunc) (string, error)

	// HasModel reports whether the model key is configured.
	HasModel(modelKey string) bool

	// DisplayName returns the human-readable name for a model key, falling
	// back to the key itself.
	DisplayName(modelKey string) string
}
