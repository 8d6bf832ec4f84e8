package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driving"
	"github.com/custodia-labs/lecturelens/internal/logger"
)

// Ensure EmbedService implements the interface.
var _ driving.EmbedService = (*EmbedService)(nil)

// EmbedService embeds stored sessions.
// At most one run writes a session's records at a time.
type EmbedService struct {
	store    driven.SessionStore
	embedder driven.EmbeddingService
	manager  *BatchManager
	now      func() time.Time

	mu     sync.RWMutex
	active map[string]struct{}
}

// NewEmbedService creates a new embed service.
// embedder is optional - if nil, every run fails with domain.ErrEmbeddingUnavailable.
func NewEmbedService(store driven.SessionStore, embedder driven.EmbeddingService, manager *BatchManager) *EmbedService {
	if manager == nil {
		manager = NewBatchManager(DefaultBatchConfig(), nil, nil)
	}
	return &EmbedService{
		store:    store,
		embedder: embedder,
		manager:  manager,
		now:      time.Now,
		active:   make(map[string]struct{}),
	}
}

// EmbedSession embeds the session's documents that have no records yet.
// Records are checkpointed after every batch, so an interrupted run resumes.
func (s *EmbedService) EmbedSession(ctx context.Context, sessionID string) (*domain.EmbedReport, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if !s.acquire(sessionID) {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrEmbeddingInProgress)
	}
	defer s.release(sessionID)

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	report := &domain.EmbedReport{SessionID: sessionID}

	docs, err := s.store.LoadDocuments(ctx, sessionID)
	if errors.Is(err, domain.ErrMissingArtifact) {
		logger.Warn("Session %s has no documents", sessionID)
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	existing, err := s.store.LoadRecords(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	logger.Section("Embed")
	logger.Info("Session %s: %d documents, model %s", sessionID, len(docs), s.embedder.ModelName())

	manager := s.manager.
		WithDimensions(session.Dimensions).
		WithCheckpoint(func(ctx context.Context, records []domain.EmbeddingRecord) error {
			return s.store.SaveRecords(ctx, sessionID, records)
		})

	records, stats, runErr := manager.Run(ctx, docs, existing, s.embedder)

	// Persist whatever was produced, even when the run was interrupted.
	if err := s.store.SaveRecords(context.WithoutCancel(ctx), sessionID, records); err != nil {
		return nil, fmt.Errorf("save records: %w", err)
	}

	session.RecordCount = len(records)
	session.UpdatedAt = s.now()
	if len(records) > 0 {
		session.Dimensions = len(records[0].Embedding)
		if stats.Embedded > 0 {
			session.EmbeddingModel = s.embedder.ModelName()
		}
	}
	if err := s.store.UpdateSession(context.WithoutCancel(ctx), session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	report.EmbeddingsGenerated = stats.Embedded
	report.TotalEmbeddings = len(records)
	report.Skipped = stats.Skipped
	report.Failed = stats.Failed
	report.Errors = stats.Errors

	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

// EmbedDocuments runs the batch manager over docs without persisting anything.
func (s *EmbedService) EmbedDocuments(
	ctx context.Context,
	docs []domain.Document,
	existing []domain.EmbeddingRecord,
) ([]domain.EmbeddingRecord, domain.RunStats, error) {
	if s.embedder == nil {
		return nil, domain.RunStats{}, domain.ErrEmbeddingUnavailable
	}
	return s.manager.Run(ctx, docs, existing, s.embedder)
}

// InProgress reports whether a run holds the session.
func (s *EmbedService) InProgress(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.active[sessionID]
	return ok
}

func (s *EmbedService) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[sessionID]; ok {
		return false
	}
	s.active[sessionID] = struct{}{}
	return true
}

func (s *EmbedService) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, sessionID)
}
