package driven

import (
	"context"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// Chunker splits a document into embeddable chunks.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Process splits doc into chunks whose contents concatenate back to doc.Content.
	// A document that fits in one chunk yields a single chunk with the document ID.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
