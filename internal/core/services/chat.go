package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driving"
	"github.com/custodia-labs/lecturelens/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// DefaultChatSystemPrompt is used when no PromptStore is configured.
// The %s placeholder receives the assembled course content.
const DefaultChatSystemPrompt = `You are LectureLens, an AI assistant that helps students with their recorded courses.

Use the following relevant course content to answer the user's question. If the context doesn't contain relevant information, provide a helpful general answer but mention that you don't have specific course material on that topic.

RELEVANT COURSE CONTENT:
%s

Always cite which course and chapter your information comes from when referencing the provided content.`

// ChatConfig configures answer generation.
type ChatConfig struct {
	// TopK is the number of passages used as context.
	TopK int

	// Temperature controls randomness of answers.
	Temperature float64

	// MaxTokens caps the answer length.
	MaxTokens int
}

// DefaultChatConfig returns the default chat configuration.
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		TopK:        domain.DefaultChatTopK,
		Temperature: domain.DefaultTemperature,
		MaxTokens:   domain.DefaultMaxTokens,
	}
}

// ChatService answers questions using retrieved lecture passages.
type ChatService struct {
	query   driving.QueryService
	llm     driven.LLMService
	prompts driven.PromptStore
	cfg     ChatConfig
}

// NewChatService creates a new chat service.
// llm is optional - if nil, Ask fails with domain.ErrLLMUnavailable.
func NewChatService(query driving.QueryService, llm driven.LLMService, cfg ChatConfig) *ChatService {
	defaults := DefaultChatConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = defaults.TopK
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	return &ChatService{
		query: query,
		llm:   llm,
		cfg:   cfg,
	}
}

// SetPromptStore sets the prompt store for loading the system prompt.
func (s *ChatService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Ask answers question, grounded in the session when retrieval succeeds.
// Retrieval failures degrade to an ungrounded answer.
func (s *ChatService) Ask(
	ctx context.Context,
	sessionID, question string,
	history []domain.ChatTurn,
) (*domain.ChatAnswer, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question required", domain.ErrInvalidInput)
	}

	logger.Section("Chat")

	var result *domain.QueryResult
	if s.query != nil && sessionID != "" {
		var err error
		result, err = s.query.Query(ctx, sessionID, question, s.cfg.TopK)
		switch {
		case err == nil:
			logger.Debug("Found %d relevant passages", len(result.Results))
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			logger.Warn("Retrieval failed, answering without course content: %v", err)
			result = nil
		}
	}

	messages := make([]driven.ChatMessage, 0, len(history)+2)
	grounded := !result.IsEmpty()
	if grounded {
		messages = append(messages, driven.ChatMessage{
			Role:    domain.RoleSystem,
			Content: strings.Replace(s.systemPrompt(), "%s", result.ContextBlock, 1),
		})
	}
	for _, turn := range history {
		if turn.Role == domain.RoleSystem || strings.TrimSpace(turn.Content) == "" {
			continue
		}
		messages = append(messages, driven.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: domain.RoleUser, Content: question})

	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	out := &domain.ChatAnswer{
		Answer:   answer,
		Grounded: grounded,
	}
	if grounded {
		out.Sources = result.Citations
	}
	return out, nil
}

func (s *ChatService) systemPrompt() string {
	if s.prompts == nil {
		return DefaultChatSystemPrompt
	}
	prompt, err := s.prompts.Load(driven.PromptChatSystem)
	if err != nil || !strings.Contains(prompt, "%s") {
		if err != nil {
			logger.Warn("Load chat prompt: %v", err)
		}
		return DefaultChatSystemPrompt
	}
	return prompt
}
