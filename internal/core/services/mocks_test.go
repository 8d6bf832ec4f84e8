package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
// Without embedFn every text maps to {1, len(text)}.
type mockEmbedder struct {
	mu      sync.Mutex
	embedFn func(ctx context.Context, text string, call int) ([]float32, error)
	texts   []string
	tasks   []domain.TaskType
}

func (m *mockEmbedder) Embed(ctx context.Context, text string, task domain.TaskType) ([]float32, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.tasks = append(m.tasks, task)
	call := len(m.texts)
	m.mu.Unlock()

	if m.embedFn != nil {
		return m.embedFn(ctx, text, call)
	}
	return []float32{1, float32(len(text))}, nil
}

func (m *mockEmbedder) Dimensions() int { return 2 }

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

func (m *mockEmbedder) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// mockPacer implements driven.Pacer and records what it was asked to do.
type mockPacer struct {
	mu       sync.Mutex
	waits    int
	items    int
	batches  int
	backoffs []time.Duration
}

func (p *mockPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	p.waits++
	p.mu.Unlock()
	return ctx.Err()
}

func (p *mockPacer) AfterItem(ctx context.Context) error {
	p.mu.Lock()
	p.items++
	p.mu.Unlock()
	return ctx.Err()
}

func (p *mockPacer) AfterBatch(ctx context.Context) error {
	p.mu.Lock()
	p.batches++
	p.mu.Unlock()
	return ctx.Err()
}

func (p *mockPacer) Backoff(retryAfter time.Duration) {
	p.mu.Lock()
	p.backoffs = append(p.backoffs, retryAfter)
	p.mu.Unlock()
}

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	answer   string
	err      error
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(_ context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

// mockQuery implements driving.QueryService for testing.
type mockQuery struct {
	result *domain.QueryResult
	err    error
	topK   int
}

func (m *mockQuery) Query(_ context.Context, _, _ string, topK int) (*domain.QueryResult, error) {
	m.topK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockQuery) QueryRecords(
	_ context.Context, _ []domain.EmbeddingRecord, _ string, _ int,
) (*domain.QueryResult, error) {
	return m.result, m.err
}

// mockPrompts implements driven.PromptStore for testing.
type mockPrompts struct {
	prompts map[string]string
}

func (m *mockPrompts) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found")
	}
	return p, nil
}

func (m *mockPrompts) Reload() {}

// mockValidator implements driven.AIConfigValidator for testing.
type mockValidator struct {
	embedErr error
	llmErr   error
	embedded *domain.EmbeddingSettings
	llm      *domain.LLMSettings
}

func (m *mockValidator) ValidateEmbedding(s *domain.EmbeddingSettings) error {
	m.embedded = s
	return m.embedErr
}

func (m *mockValidator) ValidateLLM(s *domain.LLMSettings) error {
	m.llm = s
	return m.llmErr
}

// --- Fixtures ---

func testDoc(id, content string) domain.Document {
	return domain.Document{
		ID:      id,
		Content: content,
		Metadata: domain.DocumentMetadata{
			Course:   "Algebra",
			Chapter:  "Week 1",
			Filename: id + ".srt",
			Type:     ".srt",
		},
	}
}

func testRecord(id string, vec ...float32) domain.EmbeddingRecord {
	return domain.EmbeddingRecord{
		ID:      id,
		Content: "content " + id,
		Metadata: domain.RecordMetadata{
			DocumentMetadata: domain.DocumentMetadata{Course: "Algebra", Chapter: "Week " + id, Filename: id + ".srt"},
		},
		Embedding: vec,
	}
}

func recordIDs(records []domain.EmbeddingRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
