// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, embedding and querying are disabled.
//
// Implementations may include:
//   - Gemini (text-embedding-004)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// The task tells the provider whether the text is being indexed or queried.
	// Rate limit rejections are returned as *domain.RateLimitError.
	Embed(ctx context.Context, text string, task domain.TaskType) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// Returns 0 when the model is unknown and the size is only learnt from a response.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
