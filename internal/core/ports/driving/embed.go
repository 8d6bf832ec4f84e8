package driving

import (
	"context"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// EmbedService embeds a session's documents.
type EmbedService interface {
	// EmbedSession embeds every document of the session not yet embedded,
	// merging new records with existing ones.
	// Returns domain.ErrEmbeddingInProgress if another run holds the session.
	EmbedSession(ctx context.Context, sessionID string) (*domain.EmbedReport, error)

	// EmbedDocuments chunks and embeds docs, skipping any present in existing.
	// It does not persist anything.
	EmbedDocuments(ctx context.Context, docs []domain.Document, existing []domain.EmbeddingRecord) ([]domain.EmbeddingRecord, domain.RunStats, error)

	// InProgress reports whether an embedding run holds the session.
	InProgress(sessionID string) bool
}
