package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driving"
	"github.com/custodia-labs/lecturelens/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService retrieves the passages most relevant to a question.
type QueryService struct {
	store    driven.SessionStore
	embedder driven.EmbeddingService
	topK     int
}

// NewQueryService creates a new query service.
// A topK of zero or less uses DefaultTopK.
func NewQueryService(store driven.SessionStore, embedder driven.EmbeddingService, topK int) *QueryService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &QueryService{
		store:    store,
		embedder: embedder,
		topK:     topK,
	}
}

// Query ranks the session's stored records against text.
// A session with no records yields an empty result.
func (s *QueryService) Query(ctx context.Context, sessionID, text string, topK int) (*domain.QueryResult, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	records, err := s.store.LoadRecords(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	return s.QueryRecords(ctx, records, text, topK)
}

// QueryRecords embeds text as a query and ranks records against it.
func (s *QueryService) QueryRecords(
	ctx context.Context,
	records []domain.EmbeddingRecord,
	text string,
	topK int,
) (*domain.QueryResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: query required", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = s.topK
	}

	result := &domain.QueryResult{Query: text}
	if len(records) == 0 {
		logger.Debug("No embeddings to search")
		return result, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Section("Query")
	logger.Debug("Searching %d embeddings for %q", len(records), text)

	vec, err := s.embedder.Embed(ctx, text, domain.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	ranked, err := Search(vec, records, topK)
	if err != nil {
		return nil, err
	}

	result.Results = ranked
	result.ContextBlock, result.Citations = AssembleContext(ranked)

	logger.Debug("Found %d relevant passages", len(ranked))
	return result, nil
}
