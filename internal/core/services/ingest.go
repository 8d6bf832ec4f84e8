package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driving"
	"github.com/custodia-labs/lecturelens/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns uploaded subtitle files into a session of documents.
type IngestService struct {
	store    driven.SessionStore
	registry driven.NormaliserRegistry
	archive  driven.RawArchive
	now      func() time.Time
}

// NewIngestService creates a new ingest service.
// archive is optional - if nil, raw bytes are not kept.
func NewIngestService(
	store driven.SessionStore,
	registry driven.NormaliserRegistry,
	archive driven.RawArchive,
) *IngestService {
	return &IngestService{
		store:    store,
		registry: registry,
		archive:  archive,
		now:      time.Now,
	}
}

// Ingest normalises files into documents and stores them under a new session.
func (s *IngestService) Ingest(ctx context.Context, files []domain.RawFile) (*domain.IngestResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files uploaded", domain.ErrInvalidInput)
	}

	sessionID := uuid.New().String()
	result := &domain.IngestResult{
		SessionID:       sessionID,
		CourseStructure: domain.CourseStructure{},
	}
	seen := make(map[string]string, len(files))

	logger.Section("Ingest")
	logger.Info("Processing %d files for session %s", len(files), sessionID)

	for i := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file := &files[i]

		if !s.registry.Supports(file.Path) {
			logger.Debug("Skipping non-subtitle file: %s", file.Path)
			result.FilesSkipped++
			continue
		}

		if s.archive != nil {
			if err := s.archive.Archive(ctx, sessionID, *file); err != nil {
				logger.Warn("Archive %s: %v", file.Path, err)
			}
		}

		text, err := s.registry.Normalise(ctx, file)
		if err != nil {
			if errors.Is(err, domain.ErrUnsupportedType) {
				result.FilesSkipped++
				continue
			}
			logger.Warn("Normalise %s: %v", file.Path, err)
		}
		if strings.TrimSpace(text) == "" {
			logger.Debug("No text in %s", file.Path)
			result.FilesProcessed++
			continue
		}

		meta := domain.MetadataFromPath(file.Path)
		id := domain.DocumentID(meta.Course, meta.Chapter, meta.Filename)
		if first, dup := seen[id]; dup {
			logger.Warn("Skipping %s: same document id as %s", file.Path, first)
			result.FilesSkipped++
			continue
		}
		seen[id] = file.Path
		result.FilesProcessed++

		result.Documents = append(result.Documents, domain.Document{
			ID:       id,
			Content:  text,
			Metadata: meta,
		})
		result.CourseStructure.Add(meta.Course, meta.Chapter, meta.Filename)
	}
	result.DocumentsGenerated = len(result.Documents)

	now := s.now()
	session := &domain.Session{
		ID:              sessionID,
		CreatedAt:       now,
		UpdatedAt:       now,
		FilesProcessed:  result.FilesProcessed,
		DocumentCount:   result.DocumentsGenerated,
		CourseStructure: result.CourseStructure,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.store.SaveDocuments(ctx, sessionID, result.Documents); err != nil {
		return nil, fmt.Errorf("save documents: %w", err)
	}

	logger.Info("Processed %d files, generated %d documents", result.FilesProcessed, result.DocumentsGenerated)
	return result, nil
}
