// Package gemini provides an LLM service adapter using the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Gemini names the assistant role "model".
const roleModel = "model"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the chat model to use (default: gemini-2.5-flash).
	Model string

	// ClientOptions are appended to the client options, mainly for tests.
	ClientOptions []option.ClientOption
}

// LLMService answers questions using Gemini models.
type LLMService struct {
	client *genai.Client
	model  string
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, cfg.ClientOptions...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &LLMService{client: client, model: cfg.Model}, nil
}

// Chat conducts a multi-turn conversation.
// System messages become the system instruction and the final message is sent as the new turn.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	conv, err := buildConversation(messages)
	if err != nil {
		return "", err
	}

	// Settings are per call, so each call gets its own model.
	model := s.client.GenerativeModel(s.model)
	model.SetTemperature(float32(opts.Temperature))
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if conv.system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(conv.system)}}
	}

	session := model.StartChat()
	session.History = conv.history

	resp, err := session.SendMessage(ctx, genai.Text(conv.last))
	if err != nil {
		return "", classifyError(err, time.Now())
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini: no response content returned")
	}
	return text, nil
}

// conversation is a chat split the way Gemini wants it.
type conversation struct {
	system  string
	history []*genai.Content
	last    string
}

func buildConversation(messages []driven.ChatMessage) (conversation, error) {
	var conv conversation
	var system []string
	var turns []driven.ChatMessage
	for _, msg := range messages {
		if msg.Role == domain.RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		turns = append(turns, msg)
	}
	if len(turns) == 0 {
		return conv, fmt.Errorf("%w: gemini chat needs at least one user message", domain.ErrInvalidInput)
	}

	conv.system = strings.Join(system, "\n\n")
	for _, msg := range turns[:len(turns)-1] {
		role := domain.RoleUser
		if msg.Role == domain.RoleAssistant {
			role = roleModel
		}
		conv.history = append(conv.history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	conv.last = turns[len(turns)-1].Content
	return conv, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

// classifyError turns quota rejections into rate limit errors.
func classifyError(err error, now time.Time) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return &domain.RateLimitError{
			Provider:   "gemini",
			RetryAfter: domain.ParseRetryAfter(gerr.Header.Get("Retry-After"), now),
			Err:        err,
		}
	}
	if strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
		return &domain.RateLimitError{Provider: "gemini", Err: err}
	}
	return fmt.Errorf("gemini: %w", err)
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by fetching the model's metadata.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.GenerativeModel(s.model).Info(ctx); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *LLMService) Close() error {
	return s.client.Close()
}
