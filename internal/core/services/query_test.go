package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lecturelens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

func directionalEmbedder() *mockEmbedder {
	return &mockEmbedder{
		embedFn: func(_ context.Context, text string, _ int) ([]float32, error) {
			switch text {
			case "groups":
				return []float32{1, 0}, nil
			case "forces":
				return []float32{0, 1}, nil
			}
			return []float32{1, 1}, nil
		},
	}
}

func TestQueryService_Query(t *testing.T) {
	store := memory.NewSessionStore()
	seedSession(t, store, "s1")
	ctx := context.Background()
	require.NoError(t, store.SaveRecords(ctx, "s1", []domain.EmbeddingRecord{
		testRecord("physics", 0, 1),
		testRecord("algebra", 1, 0),
		testRecord("mixed", 1, 1),
	}))
	embedder := directionalEmbedder()
	svc := NewQueryService(store, embedder, 2)

	result, err := svc.Query(ctx, "s1", "  groups  ", 0)

	require.NoError(t, err)
	assert.Equal(t, "groups", result.Query)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "algebra", result.Results[0].ID)
	assert.Equal(t, "mixed", result.Results[1].ID)
	require.Len(t, result.Citations, 2)
	assert.Equal(t, "algebra.srt", result.Citations[0].Filename)
	assert.Contains(t, result.ContextBlock, "[Algebra - Week algebra]\ncontent algebra")
	assert.Equal(t, []domain.TaskType{domain.TaskRetrievalQuery}, embedder.tasks)
}

func TestQueryService_Query_ExplicitTopK(t *testing.T) {
	store := memory.NewSessionStore()
	seedSession(t, store, "s1")
	ctx := context.Background()
	require.NoError(t, store.SaveRecords(ctx, "s1", []domain.EmbeddingRecord{
		testRecord("a", 1, 0), testRecord("b", 1, 1), testRecord("c", 0, 1),
	}))

	result, err := NewQueryService(store, directionalEmbedder(), 0).Query(ctx, "s1", "forces", 1)

	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "c", result.Results[0].ID)
}

func TestQueryService_Query_NoRecords(t *testing.T) {
	store := memory.NewSessionStore()
	seedSession(t, store, "s1")
	embedder := &mockEmbedder{}

	result, err := NewQueryService(store, embedder, 5).Query(context.Background(), "s1", "anything", 5)

	require.NoError(t, err)
	assert.True(t, result.IsEmpty())
	assert.Empty(t, result.ContextBlock)
	assert.Empty(t, embedder.calls())
}

func TestQueryService_Query_Errors(t *testing.T) {
	store := memory.NewSessionStore()
	seedSession(t, store, "s1")
	ctx := context.Background()
	require.NoError(t, store.SaveRecords(ctx, "s1", []domain.EmbeddingRecord{testRecord("a", 1, 0)}))

	_, err := NewQueryService(store, &mockEmbedder{}, 5).Query(ctx, "missing", "q", 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = NewQueryService(store, &mockEmbedder{}, 5).Query(ctx, "s1", "   ", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewQueryService(store, nil, 5).Query(ctx, "s1", "q", 5)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	failing := &mockEmbedder{embedFn: func(context.Context, string, int) ([]float32, error) {
		return nil, errors.New("offline")
	}}
	_, err = NewQueryService(store, failing, 5).Query(ctx, "s1", "q", 5)
	assert.ErrorContains(t, err, "embed query: offline")

	wrongDims := &mockEmbedder{embedFn: func(context.Context, string, int) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}}
	_, err = NewQueryService(store, wrongDims, 5).Query(ctx, "s1", "q", 5)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestQueryService_QueryRecords(t *testing.T) {
	svc := NewQueryService(memory.NewSessionStore(), directionalEmbedder(), 5)
	records := []domain.EmbeddingRecord{testRecord("a", 0, 1), testRecord("b", 1, 0)}

	result, err := svc.QueryRecords(context.Background(), records, "groups", 0)

	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "b", result.Results[0].ID)
	assert.InDelta(t, 1.0, result.Results[0].Score, 1e-9)
	assert.InDelta(t, 0.0, result.Results[1].Score, 1e-9)
}
