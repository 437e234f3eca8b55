package embedding

import "context"

// EmbeddingProvider generates a vector representation of a text.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
	// Model identifies the embedding model, used for cache keys and stored
	// alongside document vectors.
	Model() string
}
