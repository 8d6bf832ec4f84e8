// Package gemini provides an embedding service adapter using the Gemini API.
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

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "text-embedding-004"

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the embedding model to use (default: text-embedding-004).
	Model string

	// Dimensions is the expected vector size. Zero looks the model up.
	Dimensions int

	// ClientOptions are appended to the client options, mainly for tests.
	ClientOptions []option.ClientOption
}

// EmbeddingService generates embeddings using Gemini.
// Indexed text and query text go through separate models carrying the matching task type.
type EmbeddingService struct {
	client     *genai.Client
	document   *genai.EmbeddingModel
	query      *genai.EmbeddingModel
	model      string
	dimensions int
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = domain.EmbeddingDimensions()[cfg.Model]
	}

	opts := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, cfg.ClientOptions...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	document := client.EmbeddingModel(cfg.Model)
	document.TaskType = taskType(domain.TaskRetrievalDocument)
	query := client.EmbeddingModel(cfg.Model)
	query.TaskType = taskType(domain.TaskRetrievalQuery)

	return &EmbeddingService{
		client:     client,
		document:   document,
		query:      query,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string, task domain.TaskType) ([]float32, error) {
	model := s.document
	if task == domain.TaskRetrievalQuery {
		model = s.query
	}

	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, classifyError(err, time.Now())
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini: no embedding returned")
	}
	return resp.Embedding.Values, nil
}

// taskType maps a domain task to the Gemini task type.
func taskType(task domain.TaskType) genai.TaskType {
	if task == domain.TaskRetrievalQuery {
		return genai.TaskTypeRetrievalQuery
	}
	return genai.TaskTypeRetrievalDocument
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

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the API key by fetching the model's metadata.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.document.Info(ctx); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *EmbeddingService) Close() error {
	return s.client.Close()
}
