// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"unicode/utf8"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 25000

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Split cuts text into consecutive pieces of exactly maxSize characters,
// the last holding the remainder. Text that fits is returned whole.
// Sizes count runes, so a multi-byte character is never split.
// A maxSize of zero or less uses DefaultChunkSize.
func Split(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}
	if utf8.RuneCountInString(text) <= maxSize {
		return []string{text}
	}

	parts := make([]string, 0, utf8.RuneCountInString(text)/maxSize+1)
	start, runes := 0, 0
	for i := range text {
		if runes == maxSize {
			parts = append(parts, text[start:i])
			start, runes = i, 0
		}
		runes++
	}
	return append(parts, text[start:])
}

// Processor splits document content into fixed-size chunks.
// It implements the Chunker interface.
type Processor struct {
	chunkSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured maximum chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Process splits the document content into chunks.
// A document that fits in one chunk keeps its own ID.
func (p *Processor) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	parts := Split(doc.Content, p.chunkSize)
	total := len(parts)
	chunks := make([]domain.Chunk, 0, total)

	for i, part := range parts {
		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(doc.ID, i, total),
			DocumentID: doc.ID,
			Content:    part,
			Metadata: domain.RecordMetadata{
				DocumentMetadata: doc.Metadata,
				IsChunk:          total > 1,
				ChunkIndex:       i,
				TotalChunks:      total,
			},
		})
	}

	return chunks, nil
}
