package client

import (
	"context"
)

// LanguageClient abstracts the model backend used for composition feedback
// and style embeddings.
type LanguageClient interface {
	// Query sends a text prompt and returns the raw model response.
	Query(ctx context.Context, model, prompt string) (string, error)
	// Embed returns an embedding vector for the given text.
	Embed(ctx context.Context, model, text string) ([]float64, error)
}
