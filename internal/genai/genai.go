// Package genai abstracts the generative model behind a single-method
// interface so pipeline stages can be tested with deterministic stubs, and
// provides the shared best-effort decoder for the model's free-text replies.
package genai

import "context"

// Model generates a free-text completion for a prompt. Implementations must
// be safe for sequential reuse across pipeline stages; callers never
// propagate a Model error — each stage degrades to its deterministic
// fallback instead.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
