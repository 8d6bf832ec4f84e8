package mcp

import (
	"context"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result    *domain.QueryResult
	err       error
	gotTopK   int
	gotQuery  string
	gotSessID string
}

func (m *mockQueryService) Query(_ context.Context, sessionID, text string, topK int) (*domain.QueryResult, error) {
	m.gotSessID = sessionID
	m.gotQuery = text
	m.gotTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.QueryResult{Query: text}, nil
	}
	return m.result, nil
}

func (m *mockQueryService) QueryRecords(
	_ context.Context,
	_ []domain.EmbeddingRecord,
	text string,
	_ int,
) (*domain.QueryResult, error) {
	return &domain.QueryResult{Query: text}, m.err
}

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	sessions  []domain.Session
	documents map[string][]domain.Document
	err       error
}

func (m *mockSessionService) List(_ context.Context) ([]domain.Session, error) {
	return m.sessions, m.err
}

func (m *mockSessionService) Get(_ context.Context, id string) (*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return &m.sessions[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSessionService) Documents(_ context.Context, id string) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	docs, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return docs, nil
}

func (m *mockSessionService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer *domain.ChatAnswer
	err    error
}

func (m *mockChatService) Ask(
	_ context.Context,
	_, _ string,
	_ []domain.ChatTurn,
) (*domain.ChatAnswer, error) {
	return m.answer, m.err
}
