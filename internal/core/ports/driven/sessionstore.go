package driven

import (
	"context"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// SessionStore persists sessions and their artifacts.
// Artifacts are stored per session and never shared.
type SessionStore interface {
	// CreateSession stores a new session.
	// Returns domain.ErrAlreadyExists if the ID is taken.
	CreateSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// UpdateSession replaces a session's summary fields.
	UpdateSession(ctx context.Context, session *domain.Session) error

	// ListSessions returns all sessions, newest first.
	ListSessions(ctx context.Context) ([]domain.Session, error)

	// DeleteSession removes a session with its documents and records.
	DeleteSession(ctx context.Context, id string) error

	// SaveDocuments replaces the session's document collection.
	SaveDocuments(ctx context.Context, sessionID string, docs []domain.Document) error

	// LoadDocuments returns the session's documents in ingestion order.
	// Returns domain.ErrMissingArtifact if none were saved.
	LoadDocuments(ctx context.Context, sessionID string) ([]domain.Document, error)

	// SaveRecords replaces the session's embedding records.
	// The write is all-or-nothing.
	SaveRecords(ctx context.Context, sessionID string, records []domain.EmbeddingRecord) error

	// LoadRecords returns the session's embedding records in insertion order.
	// Returns an empty slice if none were saved.
	LoadRecords(ctx context.Context, sessionID string) ([]domain.EmbeddingRecord, error)

	// Close releases resources.
	Close() error
}

// RawArchive keeps a copy of uploaded files.
// This is optional - when nil, raw bytes are discarded after parsing.
type RawArchive interface {
	// Archive stores file under the session.
	Archive(ctx context.Context, sessionID string, file domain.RawFile) error
}
