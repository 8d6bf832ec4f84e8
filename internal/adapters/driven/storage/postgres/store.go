// Package postgres provides a PostgreSQL-backed implementation of driven.SessionStore.
//
// The store talks to Postgres through the pgx database/sql driver. Vectors are
// stored as little-endian float32 BYTEA so the schema needs no extensions.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
)

//go:embed schema.sql
var schema string

// Ensure Store implements the interface.
var _ driven.SessionStore = (*Store)(nil)

// Store is a PostgreSQL session store.
type Store struct {
	db *sql.DB
}

// NewStore connects to dsn and applies the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", domain.ErrInvalidInput)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSession stores a new session.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidInput
	}
	structure, err := marshalStructure(session.CourseStructure)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO lecturelens_sessions (id, created_at, updated_at, files_processed, document_count,
			record_count, embedding_model, dimensions, course_structure)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, session.ID, session.CreatedAt, session.UpdatedAt, session.FilesProcessed, session.DocumentCount,
		session.RecordCount, session.EmbeddingModel, session.Dimensions, structure)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
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
		FROM lecturelens_sessions WHERE id = $1
	`, id)
	return scanSession(row)
}

// UpdateSession replaces a session's summary fields.
func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return domain.ErrInvalidInput
	}
	structure, err := marshalStructure(session.CourseStructure)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE lecturelens_sessions SET
			updated_at = $2,
			files_processed = $3,
			document_count = $4,
			record_count = $5,
			embedding_model = $6,
			dimensions = $7,
			course_structure = $8
		WHERE id = $1
	`, session.ID, session.UpdatedAt, session.FilesProcessed, session.DocumentCount,
		session.RecordCount, session.EmbeddingModel, session.Dimensions, structure)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
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
		FROM lecturelens_sessions ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session. Documents and records cascade.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM lecturelens_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// SaveDocuments replaces the session's documents.
func (s *Store) SaveDocuments(ctx context.Context, sessionID string, docs []domain.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE lecturelens_sessions SET documents_saved = TRUE WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("mark documents: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM lecturelens_documents WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO lecturelens_documents (session_id, id, position, content, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, doc := range docs {
		metadata, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, sessionID, doc.ID, i, doc.Content, string(metadata)); err != nil {
			return fmt.Errorf("insert document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadDocuments returns the session's documents in ingestion order.
func (s *Store) LoadDocuments(ctx context.Context, sessionID string) ([]domain.Document, error) {
	var saved bool
	err := s.db.QueryRowContext(ctx,
		`SELECT documents_saved FROM lecturelens_sessions WHERE id = $1`, sessionID).Scan(&saved)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !saved) {
		return nil, domain.ErrMissingArtifact
	}
	if err != nil {
		return nil, fmt.Errorf("check documents: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, metadata FROM lecturelens_documents
		WHERE session_id = $1 ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		var metadata []byte
		if err := rows.Scan(&doc.ID, &doc.Content, &metadata); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// SaveRecords replaces the session's embedding records in one transaction.
func (s *Store) SaveRecords(ctx context.Context, sessionID string, records []domain.EmbeddingRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Lock the session row so concurrent writers replace the collection in turn.
	var id string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM lecturelens_sessions WHERE id = $1 FOR UPDATE`, sessionID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM lecturelens_records WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO lecturelens_records (session_id, id, position, content, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		metadata, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, sessionID, rec.ID, i, rec.Content,
			string(metadata), encodeVector(rec.Embedding)); err != nil {
			return fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadRecords returns the session's embedding records in insertion order.
func (s *Store) LoadRecords(ctx context.Context, sessionID string) ([]domain.EmbeddingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, metadata, embedding FROM lecturelens_records
		WHERE session_id = $1 ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []domain.EmbeddingRecord{}
	for rows.Next() {
		var rec domain.EmbeddingRecord
		var metadata, embedding []byte
		if err := rows.Scan(&rec.ID, &rec.Content, &metadata, &embedding); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		rec.Embedding = decodeVector(embedding)
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*domain.Session, error) {
	var session domain.Session
	var structure []byte
	if err := row.Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt, &session.FilesProcessed,
		&session.DocumentCount, &session.RecordCount, &session.EmbeddingModel, &session.Dimensions,
		&structure); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	session.CreatedAt = session.CreatedAt.UTC()
	session.UpdatedAt = session.UpdatedAt.UTC()

	session.CourseStructure = domain.CourseStructure{}
	if len(structure) > 0 {
		if err := json.Unmarshal(structure, &session.CourseStructure); err != nil {
			return nil, fmt.Errorf("unmarshal course structure: %w", err)
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
		return "", fmt.Errorf("marshal course structure: %w", err)
	}
	return string(data), nil
}

func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v
}
