package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lecturelens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

func seedSession(t *testing.T, store *memory.SessionStore, id string, docs ...domain.Document) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateSession(ctx, &domain.Session{
		ID:            id,
		CreatedAt:     now,
		UpdatedAt:     now,
		DocumentCount: len(docs),
	}))
	if docs != nil {
		require.NoError(t, store.SaveDocuments(ctx, id, docs))
	}
}

func TestEmbedService_EmbedSession(t *testing.T) {
	store := memory.NewSessionStore()
	seedSession(t, store, "s1", testDoc("A", "alpha"), testDoc("B", "beta"))
	svc := NewEmbedService(store, &mockEmbedder{}, nil)
	later := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return later }
	ctx := context.Background()

	report, err := svc.EmbedSession(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, &domain.EmbedReport{
		SessionID:           "s1",
		EmbeddingsGenerated: 2,
		TotalEmbeddings:     2,
	}, report)

	records, err := store.LoadRecords(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, recordIDs(records))

	session, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, session.RecordCount)
	assert.Equal(t, 2, session.Dimensions)
	assert.Equal(t, "mock-embed", session.EmbeddingModel)
	assert.Equal(t, later, session.UpdatedAt)
	assert.False(t, svc.InProgress("s1"))
}

func TestEmbedService_EmbedSession_Resumes(t *testing.T) {
	store := memory.NewSessionStore()
	ctx := context.Background()
	seedSession(t, store, "s1", testDoc("A", "alpha"), testDoc("B", "beta"), testDoc("C", "gamma"))
	require.NoError(t, store.SaveRecords(ctx, "s1", []domain.EmbeddingRecord{testRecord("A", 1, 5), testRecord("B", 1, 4)}))

	embedder := &mockEmbedder{}
	report, err := NewEmbedService(store, embedder, nil).EmbedSession(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, []string{"gamma"}, embedder.calls())
	assert.Equal(t, 1, report.EmbeddingsGenerated)
	assert.Equal(t, 3, report.TotalEmbeddings)
	assert.Equal(t, 2, report.Skipped)
}

func TestEmbedService_EmbedSession_ReportsFailures(t *testing.T) {
	store := memory.NewSessionStore()
	seedSession(t, store, "s1", testDoc("A", "alpha"), testDoc("B", "beta"))
	embedder := &mockEmbedder{
		embedFn: func(_ context.Context, text string, _ int) ([]float32, error) {
			if text == "alpha" {
				return nil, errors.New("boom")
			}
			return []float32{1, 2}, nil
		},
	}

	report, err := NewEmbedService(store, embedder, nil).EmbedSession(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.TotalEmbeddings)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "A", report.Errors[0].ID)
}

func TestEmbedService_EmbedSession_Errors(t *testing.T) {
	store := memory.NewSessionStore()
	ctx := context.Background()

	_, err := NewEmbedService(store, nil, nil).EmbedSession(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	_, err = NewEmbedService(store, &mockEmbedder{}, nil).EmbedSession(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEmbedService_EmbedSession_NoDocuments(t *testing.T) {
	store := memory.NewSessionStore()
	seedSession(t, store, "s1")
	embedder := &mockEmbedder{}

	report, err := NewEmbedService(store, embedder, nil).EmbedSession(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, &domain.EmbedReport{SessionID: "s1"}, report)
	assert.Empty(t, embedder.calls())
}

func TestEmbedService_EmbedSession_CancelledKeepsProgress(t *testing.T) {
	store := memory.NewSessionStore()
	seedSession(t, store, "s1", testDoc("A", "alpha"), testDoc("B", "beta"), testDoc("C", "gamma"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	embedder := &mockEmbedder{
		embedFn: func(ctx context.Context, _ string, call int) ([]float32, error) {
			if call == 2 {
				cancel()
				return nil, ctx.Err()
			}
			return []float32{1, 2}, nil
		},
	}

	report, err := NewEmbedService(store, embedder, nil).EmbedSession(ctx, "s1")

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.TotalEmbeddings)

	records, err := store.LoadRecords(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, recordIDs(records))

	session, err := store.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, session.RecordCount)
}

func TestEmbedService_SingleWriterPerSession(t *testing.T) {
	store := memory.NewSessionStore()
	seedSession(t, store, "s1", testDoc("A", "alpha"))
	seedSession(t, store, "s2", testDoc("B", "beta"))

	started := make(chan struct{})
	release := make(chan struct{})
	embedder := &mockEmbedder{
		embedFn: func(_ context.Context, text string, _ int) ([]float32, error) {
			if text == "alpha" {
				close(started)
				<-release
			}
			return []float32{1, 2}, nil
		},
	}
	svc := NewEmbedService(store, embedder, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = svc.EmbedSession(ctx, "s1")
	}()
	<-started

	assert.True(t, svc.InProgress("s1"))
	_, err := svc.EmbedSession(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrEmbeddingInProgress)

	// Other sessions are unaffected.
	_, err = svc.EmbedSession(ctx, "s2")
	assert.NoError(t, err)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.False(t, svc.InProgress("s1"))
}

func TestEmbedService_EmbedDocuments(t *testing.T) {
	svc := NewEmbedService(memory.NewSessionStore(), &mockEmbedder{}, nil)

	records, stats, err := svc.EmbedDocuments(context.Background(),
		[]domain.Document{testDoc("A", "a"), testDoc("B", "b")},
		[]domain.EmbeddingRecord{testRecord("A", 1, 1)})

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, recordIDs(records))
	assert.Equal(t, 1, stats.Embedded)

	_, _, err = NewEmbedService(memory.NewSessionStore(), nil, nil).EmbedDocuments(context.Background(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
