package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/lecturelens/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
)

// DatabaseFile is the database filename inside the data directory.
const DatabaseFile = "lecturelens.db"

// Ensure Store implements the interface.
var _ driven.SessionStore = (*Store)(nil)

// Store is a SQLite-based session store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.lecturelens/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lecturelens", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL lets queries read while an embedding run commits checkpoints.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Sessions ====================

// CreateSession stores a new session.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidInput
	}
	structureJSON, err := marshalStructure(session.CourseStructure)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, updated_at, files_processed, document_count,
			record_count, embedding_model, dimensions, course_structure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, session.ID, session.CreatedAt.UTC(), session.UpdatedAt.UTC(), session.FilesProcessed,
		session.DocumentCount, session.RecordCount, session.EmbeddingModel, session.Dimensions,
		structureJSON)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, updated_at, files_processed, document_count, record_count,
			embedding_model, dimensions, course_structure
		FROM sessions WHERE id = ?
	`, id)
	return scanSession(row)
}

// UpdateSession replaces a session's summary fields.
func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return domain.ErrInvalidInput
	}
	structureJSON, err := marshalStructure(session.CourseStructure)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET
			updated_at = ?,
			files_processed = ?,
			document_count = ?,
			record_count = ?,
			embedding_model = ?,
			dimensions = ?,
			course_structure = ?
		WHERE id = ?
	`, session.UpdatedAt.UTC(), session.FilesProcessed, session.DocumentCount, session.RecordCount,
		session.EmbeddingModel, session.Dimensions, structureJSON, session.ID)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, updated_at, files_processed, document_count, record_count,
			embedding_model, dimensions, course_structure
		FROM sessions ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session //nolint:prealloc // size unknown from query
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

// DeleteSession removes a session. Documents and records cascade.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// ==================== Documents ====================

// SaveDocuments replaces the session's documents.
func (s *Store) SaveDocuments(ctx context.Context, sessionID string, docs []domain.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, "UPDATE sessions SET documents_saved = 1 WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("marking documents: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (session_id, id, position, content, metadata)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, doc := range docs {
		metadataJSON, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling document metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, sessionID, doc.ID, i, doc.Content, string(metadataJSON)); err != nil {
			return fmt.Errorf("saving document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// LoadDocuments returns the session's documents in ingestion order.
func (s *Store) LoadDocuments(ctx context.Context, sessionID string) ([]domain.Document, error) {
	var saved bool
	err := s.db.QueryRowContext(ctx,
		"SELECT documents_saved FROM sessions WHERE id = ?", sessionID).Scan(&saved)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !saved) {
		return nil, domain.ErrMissingArtifact
	}
	if err != nil {
		return nil, fmt.Errorf("checking documents: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, metadata FROM documents
		WHERE session_id = ? ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		var metadataJSON string
		if err := rows.Scan(&doc.ID, &doc.Content, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// ==================== Embedding records ====================

// SaveRecords replaces the session's embedding records in one transaction.
func (s *Store) SaveRecords(ctx context.Context, sessionID string, records []domain.EmbeddingRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM sessions WHERE id = ?", sessionID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("checking session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM embedding_records WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embedding_records (session_id, id, position, content, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		metadataJSON, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling record metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, sessionID, rec.ID, i, rec.Content,
			string(metadataJSON), float32SliceToBytes(rec.Embedding)); err != nil {
			return fmt.Errorf("saving record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// LoadRecords returns the session's embedding records in insertion order.
func (s *Store) LoadRecords(ctx context.Context, sessionID string) ([]domain.EmbeddingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, metadata, embedding FROM embedding_records
		WHERE session_id = ? ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	records := []domain.EmbeddingRecord{}
	for rows.Next() {
		var rec domain.EmbeddingRecord
		var metadataJSON string
		var embeddingBlob []byte
		if err := rows.Scan(&rec.ID, &rec.Content, &metadataJSON, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
		rec.Embedding = bytesToFloat32Slice(embeddingBlob)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSession scans a single session row.
func scanSession(row rowScanner) (*domain.Session, error) {
	var session domain.Session
	var createdAt, updatedAt time.Time
	var structureJSON string

	if err := row.Scan(&session.ID, &createdAt, &updatedAt, &session.FilesProcessed,
		&session.DocumentCount, &session.RecordCount, &session.EmbeddingModel,
		&session.Dimensions, &structureJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	session.CreatedAt = createdAt.UTC()
	session.UpdatedAt = updatedAt.UTC()

	session.CourseStructure = domain.CourseStructure{}
	if structureJSON != "" {
		if err := json.Unmarshal([]byte(structureJSON), &session.CourseStructure); err != nil {
			return nil, fmt.Errorf("unmarshaling course structure: %w", err)
		}
	}
	return &session, nil
}

func marshalStructure(cs domain.CourseStructure) (string, error) {
	if cs == nil {
		return "{}", nil
	}
	data, err := json.Marshal(cs)
	if err != nil {
		return "", fmt.Errorf("marshalling course structure: %w", err)
	}
	return string(data), nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
