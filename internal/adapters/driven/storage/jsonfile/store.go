package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
)

const (
	processedDir  = "processed"
	lockFile      = ".lock"
	sessionPrefix = "session_"
	docsPrefix    = "documents_"
	recordsPrefix = "embeddings_"
	jsonExt       = ".json"
)

// Ensure Store implements the interface.
var _ driven.SessionStore = (*Store)(nil)

// Store is a JSON-file implementation of driven.SessionStore.
// The mutex orders goroutines in this process; the file lock orders processes.
type Store struct {
	mu   sync.Mutex
	dir  string
	lock *flock.Flock
}

// NewStore creates a JSON-file store under dataDir.
// If dataDir is empty, defaults to ~/.lecturelens/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lecturelens", "data")
	}

	dir := filepath.Join(dataDir, processedDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating processed directory: %w", err)
	}

	return &Store{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFile)),
	}, nil
}

// Dir returns the directory holding the session files.
func (s *Store) Dir() string {
	return s.dir
}

// CreateSession stores a new session.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	if session == nil || !validID(session.ID) {
		return domain.ErrInvalidInput
	}
	return s.withLock(ctx, func() error {
		path := s.path(sessionPrefix, session.ID)
		if _, err := os.Stat(path); err == nil {
			return domain.ErrAlreadyExists
		}
		return writeJSON(path, session)
	})
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	var session domain.Session
	err := s.withRLock(ctx, func() error {
		return readJSON(s.path(sessionPrefix, id), &session)
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSession replaces a session's summary fields.
func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return domain.ErrInvalidInput
	}
	if !validID(session.ID) {
		return domain.ErrNotFound
	}
	return s.withLock(ctx, func() error {
		path := s.path(sessionPrefix, session.ID)
		if _, err := os.Stat(path); err != nil {
			return domain.ErrNotFound
		}
		return writeJSON(path, session)
	})
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]domain.Session, error) {
	var sessions []domain.Session
	err := s.withRLock(ctx, func() error {
		entries, err := os.ReadDir(s.dir)
		if err != nil {
			return fmt.Errorf("reading processed directory: %w", err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasPrefix(name, sessionPrefix) || !strings.HasSuffix(name, jsonExt) {
				continue
			}
			var session domain.Session
			if err := readJSON(filepath.Join(s.dir, name), &session); err != nil {
				return err
			}
			sessions = append(sessions, session)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// DeleteSession removes the session's files.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	return s.withLock(ctx, func() error {
		for _, prefix := range []string{docsPrefix, recordsPrefix, sessionPrefix} {
			if err := os.Remove(s.path(prefix, id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("deleting session file: %w", err)
			}
		}
		return nil
	})
}

// SaveDocuments replaces the session's documents file.
func (s *Store) SaveDocuments(ctx context.Context, sessionID string, docs []domain.Document) error {
	if docs == nil {
		docs = []domain.Document{}
	}
	return s.saveArtifact(ctx, docsPrefix, sessionID, docs)
}

// LoadDocuments reads the session's documents file.
func (s *Store) LoadDocuments(ctx context.Context, sessionID string) ([]domain.Document, error) {
	docs := []domain.Document{}
	if !validID(sessionID) {
		return nil, domain.ErrMissingArtifact
	}
	err := s.withRLock(ctx, func() error {
		return readJSON(s.path(docsPrefix, sessionID), &docs)
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrMissingArtifact
	}
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// SaveRecords replaces the session's embeddings file.
func (s *Store) SaveRecords(ctx context.Context, sessionID string, records []domain.EmbeddingRecord) error {
	if records == nil {
		records = []domain.EmbeddingRecord{}
	}
	return s.saveArtifact(ctx, recordsPrefix, sessionID, records)
}

// LoadRecords reads the session's embeddings file.
// A session that has never been embedded has no records.
func (s *Store) LoadRecords(ctx context.Context, sessionID string) ([]domain.EmbeddingRecord, error) {
	records := []domain.EmbeddingRecord{}
	if !validID(sessionID) {
		return records, nil
	}
	err := s.withRLock(ctx, func() error {
		return readJSON(s.path(recordsPrefix, sessionID), &records)
	})
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.EmbeddingRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Close releases the file lock handle.
func (s *Store) Close() error {
	return s.lock.Close()
}

func (s *Store) saveArtifact(ctx context.Context, prefix, sessionID string, v any) error {
	if !validID(sessionID) {
		return domain.ErrNotFound
	}
	return s.withLock(ctx, func() error {
		if _, err := os.Stat(s.path(sessionPrefix, sessionID)); err != nil {
			return domain.ErrNotFound
		}
		return writeJSON(s.path(prefix, sessionID), v)
	})
}

func (s *Store) path(prefix, id string) string {
	return filepath.Join(s.dir, prefix+id+jsonExt)
}

func (s *Store) withLock(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer s.lock.Unlock() //nolint:errcheck
	return fn()
}

func (s *Store) withRLock(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// A flock handle holds a single lock, so readers in this process are serialised too.
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.RLock(); err != nil {
		return fmt.Errorf("acquire read lock: %w", err)
	}
	defer s.lock.Unlock() //nolint:errcheck
	return fn()
}

// validID rejects identifiers that could address files outside the store.
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}

// writeJSON writes v as indented JSON via a temp file and rename.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming %s: %w", filepath.Base(path), err)
	}
	return nil
}

// readJSON decodes the file at path into v.
// A missing file is reported as fs.ErrNotExist.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return nil
}
