package driving

import (
	"context"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// IngestService turns uploaded subtitle files into a new session's documents.
type IngestService interface {
	// Ingest normalises files and stores the resulting documents in a new session.
	// Files that are not subtitles, or that yield no text, are skipped.
	Ingest(ctx context.Context, files []domain.RawFile) (*domain.IngestResult, error)
}
