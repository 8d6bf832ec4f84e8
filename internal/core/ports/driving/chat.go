package driving

import (
	"context"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// ChatService answers questions grounded in a session's transcripts.
type ChatService interface {
	// Ask answers question using the session's most relevant records.
	// history holds earlier turns, oldest first.
	// Returns domain.ErrLLMUnavailable when no LLM is configured.
	Ask(ctx context.Context, sessionID, question string, history []domain.ChatTurn) (*domain.ChatAnswer, error)
}
