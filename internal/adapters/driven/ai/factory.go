// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/custodia-labs/lecturelens/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/lecturelens/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/lecturelens/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/lecturelens/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/lecturelens/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/lecturelens/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/lecturelens/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
	"github.com/custodia-labs/lecturelens/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues; the affected service is left nil.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates the embedding and LLM services described by settings.
// Nothing is pinged; a provider that cannot be built is reported as a warning
// and the matching commands fail with ErrEmbeddingUnavailable or ErrLLMUnavailable.
func Init(settings *domain.AppSettings) *InitResult {
	result := &InitResult{}
	if settings == nil {
		return result
	}

	embedding, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedding: %v", err))
	} else if embedding == nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("embedding: provider %s is not configured", settings.Embedding.Provider))
	}
	result.EmbeddingService = embedding

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("llm: %v", err))
	} else if llm == nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("llm: provider %s is not configured", settings.LLM.Provider))
	}
	result.LLMService = llm

	for _, w := range result.Warnings {
		logger.Debug("AI init: %s", w)
	}
	return result
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// This is intended for use by 'settings validate' to check credentials.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
// This is intended for use by 'settings validate' to check credentials.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("anthropic does not support embeddings, use gemini, ollama or openai")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		return createGeminiEmbedding(settings)

	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		return createGeminiLLM(settings)

	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// embeddingDimensions returns the configured size, or the known size for the model.
func embeddingDimensions(settings *domain.EmbeddingSettings) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	return domain.EmbeddingDimensions()[settings.Model]
}

func createGeminiEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := geminiembed.NewEmbeddingService(context.Background(), geminiembed.Config{
		APIKey:     settings.APIKey,
		Model:      settings.Model,
		Dimensions: embeddingDimensions(settings),
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// createOllamaEmbedding creates an Ollama embedding service.
// Unknown models report zero dimensions until the first vector arrives.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: embeddingDimensions(settings),
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func createGeminiLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := geminillm.NewLLMService(context.Background(), geminillm.Config{
		APIKey: settings.APIKey,
		Model:  settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}
