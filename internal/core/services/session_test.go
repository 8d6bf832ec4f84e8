package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lecturelens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

func TestSessionService_ListGet(t *testing.T) {
	store := memory.NewSessionStore()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateSession(ctx, &domain.Session{ID: "old", CreatedAt: base}))
	require.NoError(t, store.CreateSession(ctx, &domain.Session{ID: "new", CreatedAt: base.Add(time.Hour)}))
	svc := NewSessionService(store, nil)

	sessions, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].ID)

	got, err := svc.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "old", got.ID)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionService_Documents(t *testing.T) {
	store := memory.NewSessionStore()
	seedSession(t, store, "s1", testDoc("A", "alpha"))
	svc := NewSessionService(store, nil)
	ctx := context.Background()

	docs, err := svc.Documents(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "alpha", docs[0].Content)

	_, err = svc.Documents(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionService_Delete(t *testing.T) {
	store := memory.NewSessionStore()
	seedSession(t, store, "s1", testDoc("A", "alpha"))
	svc := NewSessionService(store, NewEmbedService(store, &mockEmbedder{}, nil))
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "s1"))
	_, err := svc.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "s1"), domain.ErrNotFound)
}

func TestSessionService_Delete_RefusesActiveRun(t *testing.T) {
	store := memory.NewSessionStore()
	seedSession(t, store, "s1", testDoc("A", "alpha"))
	embed := NewEmbedService(store, &mockEmbedder{}, nil)
	svc := NewSessionService(store, embed)

	require.True(t, embed.acquire("s1"))
	err := svc.Delete(context.Background(), "s1")
	embed.release("s1")

	assert.ErrorIs(t, err, domain.ErrEmbeddingInProgress)
	_, err = svc.Get(context.Background(), "s1")
	assert.NoError(t, err)
}
