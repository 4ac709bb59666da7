package ai

import "context"

// Completer runs one prompt through a chat model and returns the raw text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder turns one text into its embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
