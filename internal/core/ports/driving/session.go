package driving

import (
	"context"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// SessionService manages stored sessions.
type SessionService interface {
	// List returns all sessions, newest first.
	List(ctx context.Context) ([]domain.Session, error)

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Documents returns the session's documents.
	Documents(ctx context.Context, id string) ([]domain.Document, error)

	// Delete removes a session and everything stored under it.
	Delete(ctx context.Context, id string) error
}
