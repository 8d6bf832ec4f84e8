package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driving"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// SessionService manages stored sessions.
type SessionService struct {
	store driven.SessionStore
	embed *EmbedService
}

// NewSessionService creates a new session service.
// embed is optional and used to refuse deleting a session being embedded.
func NewSessionService(store driven.SessionStore, embed *EmbedService) *SessionService {
	return &SessionService{store: store, embed: embed}
}

// List returns all sessions, newest first.
func (s *SessionService) List(ctx context.Context) ([]domain.Session, error) {
	return s.store.ListSessions(ctx)
}

// Get retrieves a session by ID.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	return s.store.GetSession(ctx, id)
}

// Documents returns the session's documents.
func (s *SessionService) Documents(ctx context.Context, id string) ([]domain.Document, error) {
	if _, err := s.store.GetSession(ctx, id); err != nil {
		return nil, err
	}
	return s.store.LoadDocuments(ctx, id)
}

// Delete removes a session and everything stored under it.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if s.embed != nil && s.embed.InProgress(id) {
		return fmt.Errorf("session %s: %w", id, domain.ErrEmbeddingInProgress)
	}
	if _, err := s.store.GetSession(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteSession(ctx, id)
}
