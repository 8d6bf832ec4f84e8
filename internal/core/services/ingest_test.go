package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lecturelens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/normalisers"
	"github.com/custodia-labs/lecturelens/internal/normalisers/subtitle"
)

const (
	srtHello = "1\n00:00:01,000 --> 00:00:02,000\nHello world\n"
	vttIntro = "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nWelcome to physics\n"
)

// mockArchive implements driven.RawArchive for testing.
type mockArchive struct {
	paths []string
	err   error
}

func (m *mockArchive) Archive(_ context.Context, _ string, file domain.RawFile) error {
	m.paths = append(m.paths, file.Path)
	return m.err
}

func newTestIngest(archive *mockArchive) (*IngestService, *memory.SessionStore) {
	store := memory.NewSessionStore()
	registry := normalisers.NewRegistry(subtitle.New())
	var svc *IngestService
	if archive != nil {
		svc = NewIngestService(store, registry, archive)
	} else {
		svc = NewIngestService(store, registry, nil)
	}
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestIngestService_NoFiles(t *testing.T) {
	svc, _ := newTestIngest(nil)

	_, err := svc.Ingest(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestService_Ingest(t *testing.T) {
	svc, store := newTestIngest(nil)
	ctx := context.Background()
	files := []domain.RawFile{
		{Path: "Algebra/Week 1/01.srt", Content: []byte(srtHello)},
		{Path: "Algebra/Week 1/notes.txt", Content: []byte("not a subtitle")},
		{Path: "Physics/Intro/intro.VTT", Content: []byte(vttIntro)},
		{Path: "Physics/Intro/silence.srt", Content: []byte("")},
	}

	result, err := svc.Ingest(ctx, files)

	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, 3, result.FilesProcessed)
	assert.Equal(t, 1, result.FilesSkipped)
	assert.Equal(t, 2, result.DocumentsGenerated)
	assert.Equal(t, domain.CourseStructure{
		"Algebra": {"Week 1": {"01.srt"}},
		"Physics": {"Intro": {"intro.VTT"}},
	}, result.CourseStructure)

	require.Len(t, result.Documents, 2)
	doc := result.Documents[0]
	assert.Equal(t, "Algebra_Week_1_01_srt", doc.ID)
	assert.Equal(t, "Hello world", doc.Content)
	assert.Equal(t, domain.DocumentMetadata{
		Course:       "Algebra",
		Chapter:      "Week 1",
		Filename:     "01.srt",
		OriginalPath: "Algebra/Week 1/01.srt",
		Type:         ".srt",
	}, doc.Metadata)
	assert.Equal(t, "Welcome to physics", result.Documents[1].Content)
	assert.Equal(t, ".vtt", result.Documents[1].Metadata.Type)

	session, err := store.GetSession(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 3, session.FilesProcessed)
	assert.Equal(t, 2, session.DocumentCount)
	assert.Zero(t, session.RecordCount)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), session.CreatedAt)

	stored, err := store.LoadDocuments(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, result.Documents, stored)
}

func TestIngestService_NewSessionPerCall(t *testing.T) {
	svc, store := newTestIngest(nil)
	ctx := context.Background()
	files := []domain.RawFile{{Path: "Algebra/Week 1/01.srt", Content: []byte(srtHello)}}

	first, err := svc.Ingest(ctx, files)
	require.NoError(t, err)
	second, err := svc.Ingest(ctx, files)
	require.NoError(t, err)

	assert.NotEqual(t, first.SessionID, second.SessionID)
	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestIngestService_DuplicateDocumentIDs(t *testing.T) {
	svc, _ := newTestIngest(nil)
	files := []domain.RawFile{
		{Path: "A/B/lecture-1.srt", Content: []byte(srtHello)},
		{Path: "A/B/lecture_1.srt", Content: []byte(srtHello)},
	}

	result, err := svc.Ingest(context.Background(), files)

	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 1, result.FilesSkipped)
	assert.Equal(t, len(files), result.FilesProcessed+result.FilesSkipped)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "A/B/lecture-1.srt", result.Documents[0].Metadata.OriginalPath)
}

func TestIngestService_OnlyUnsupportedFiles(t *testing.T) {
	svc, store := newTestIngest(nil)
	ctx := context.Background()

	result, err := svc.Ingest(ctx, []domain.RawFile{{Path: "readme.md", Content: []byte("# hi")}})

	require.NoError(t, err)
	assert.Zero(t, result.FilesProcessed)
	assert.Equal(t, 1, result.FilesSkipped)
	assert.Empty(t, result.Documents)

	docs, err := store.LoadDocuments(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngestService_ArchivesSubtitles(t *testing.T) {
	archive := &mockArchive{err: errors.New("read-only filesystem")}
	svc, _ := newTestIngest(archive)
	files := []domain.RawFile{
		{Path: "Algebra/Week 1/01.srt", Content: []byte(srtHello)},
		{Path: "Algebra/Week 1/notes.txt", Content: []byte("x")},
	}

	result, err := svc.Ingest(context.Background(), files)

	require.NoError(t, err)
	assert.Equal(t, []string{"Algebra/Week 1/01.srt"}, archive.paths)
	assert.Equal(t, 1, result.DocumentsGenerated)
}

func TestIngestService_Cancelled(t *testing.T) {
	svc, store := newTestIngest(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Ingest(ctx, []domain.RawFile{{Path: "a/b/c.srt", Content: []byte(srtHello)}})

	assert.ErrorIs(t, err, context.Canceled)
	sessions, _ := store.ListSessions(context.Background())
	assert.Empty(t, sessions)
}
