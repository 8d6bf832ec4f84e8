package driving

import (
	"context"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// QueryService retrieves grounded context for a question.
type QueryService interface {
	// Query embeds text and ranks the session's records against it.
	// A topK of zero uses the configured default.
	Query(ctx context.Context, sessionID, text string, topK int) (*domain.QueryResult, error)

	// QueryRecords ranks records against text without touching storage.
	QueryRecords(ctx context.Context, records []domain.EmbeddingRecord, text string, topK int) (*domain.QueryResult, error)
}
