package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore.
// Collections are copied on the way in and out, so callers always hold a snapshot.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]domain.Session
	documents map[string][]domain.Document
	records   map[string][]domain.EmbeddingRecord
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]domain.Session),
		documents: make(map[string][]domain.Document),
		records:   make(map[string][]domain.EmbeddingRecord),
	}
}

// CreateSession stores a new session.
func (s *SessionStore) CreateSession(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.sessions[session.ID] = *session
	return nil
}

// GetSession retrieves a session by ID.
func (s *SessionStore) GetSession(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

// UpdateSession replaces a session's summary fields.
func (s *SessionStore) UpdateSession(_ context.Context, session *domain.Session) error {
	if session == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return domain.ErrNotFound
	}
	s.sessions[session.ID] = *session
	return nil
}

// ListSessions returns all sessions, newest first.
func (s *SessionStore) ListSessions(_ context.Context) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// DeleteSession removes a session with its documents and records.
func (s *SessionStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.documents, id)
	delete(s.records, id)
	return nil
}

// SaveDocuments replaces the session's documents.
func (s *SessionStore) SaveDocuments(_ context.Context, sessionID string, docs []domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return domain.ErrNotFound
	}
	s.documents[sessionID] = append([]domain.Document(nil), docs...)
	return nil
}

// LoadDocuments returns the session's documents.
func (s *SessionStore) LoadDocuments(_ context.Context, sessionID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs, ok := s.documents[sessionID]
	if !ok {
		return nil, domain.ErrMissingArtifact
	}
	return append([]domain.Document(nil), docs...), nil
}

// SaveRecords replaces the session's embedding records.
func (s *SessionStore) SaveRecords(_ context.Context, sessionID string, records []domain.EmbeddingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return domain.ErrNotFound
	}
	s.records[sessionID] = append([]domain.EmbeddingRecord(nil), records...)
	return nil
}

// LoadRecords returns the session's embedding records.
func (s *SessionStore) LoadRecords(_ context.Context, sessionID string) ([]domain.EmbeddingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.EmbeddingRecord{}, s.records[sessionID]...), nil
}

// Close is a no-op for the memory store.
func (s *SessionStore) Close() error {
	return nil
}
