package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
	"github.com/custodia-labs/lecturelens/internal/logger"
	"github.com/custodia-labs/lecturelens/internal/postprocessors/chunker"
)

// BatchConfig controls how documents are driven through the embedder.
type BatchConfig struct {
	// BatchSize is the number of documents per batch.
	BatchSize int

	// ChunkSize is the maximum characters per embedding call.
	// Used only when no chunker is supplied.
	ChunkSize int

	// MaxRetries is how many times a rate-limited chunk is retried.
	MaxRetries int

	// ResumeByChunk skips chunks already embedded inside a partially embedded document.
	// When false such a document is embedded again from its first chunk and its
	// earlier chunk records are replaced.
	ResumeByChunk bool
}

// DefaultBatchConfig returns the default batch configuration.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		BatchSize:     domain.DefaultBatchSize,
		ChunkSize:     domain.DefaultChunkSize,
		MaxRetries:    domain.DefaultMaxRetries,
		ResumeByChunk: true,
	}
}

// BatchConfigFromSettings converts batch settings to a BatchConfig.
func BatchConfigFromSettings(s domain.BatchSettings) BatchConfig {
	return BatchConfig{
		BatchSize:     s.Size,
		ChunkSize:     s.ChunkSize,
		MaxRetries:    s.MaxRetries,
		ResumeByChunk: s.ResumeByChunk,
	}
}

// CheckpointFunc receives the full record collection after every batch.
type CheckpointFunc func(ctx context.Context, records []domain.EmbeddingRecord) error

// BatchManager turns documents into embedding records.
// Batches, documents and chunks are processed strictly in order.
type BatchManager struct {
	cfg        BatchConfig
	chunker    driven.Chunker
	pacer      driven.Pacer
	checkpoint CheckpointFunc
	dimensions int
}

// NewBatchManager creates a batch manager.
// chunker and pacer may be nil: a fixed-size chunker of cfg.ChunkSize is used
// and calls are not paced.
func NewBatchManager(cfg BatchConfig, c driven.Chunker, pacer driven.Pacer) *BatchManager {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultBatchSize
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = domain.DefaultChunkSize
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if c == nil {
		c = chunker.New(chunker.WithChunkSize(cfg.ChunkSize))
	}
	return &BatchManager{
		cfg:     cfg,
		chunker: c,
		pacer:   pacer,
	}
}

// Config returns the manager's configuration.
func (m *BatchManager) Config() BatchConfig {
	return m.cfg
}

// WithCheckpoint returns a copy of m that calls fn after every batch.
func (m *BatchManager) WithCheckpoint(fn CheckpointFunc) *BatchManager {
	cp := *m
	cp.checkpoint = fn
	return &cp
}

// WithDimensions returns a copy of m that requires vectors of length n.
// Zero pins the dimension to the first vector seen.
func (m *BatchManager) WithDimensions(n int) *BatchManager {
	cp := *m
	cp.dimensions = n
	return &cp
}

// run holds the state of a single Run call.
type run struct {
	m        *BatchManager
	embedder driven.EmbeddingService
	records  []domain.EmbeddingRecord
	ids      map[string]struct{}
	dims     int
	stats    domain.RunStats
}

// Run embeds every document not already covered by existing.
// The returned collection is existing followed by the new records in processing order.
// Per-item failures are recorded in the stats and never abort the run.
// On cancellation the partial collection is returned with ctx.Err().
func (m *BatchManager) Run(
	ctx context.Context,
	docs []domain.Document,
	existing []domain.EmbeddingRecord,
	embedder driven.EmbeddingService,
) ([]domain.EmbeddingRecord, domain.RunStats, error) {
	r := &run{
		m:        m,
		embedder: embedder,
		records:  make([]domain.EmbeddingRecord, len(existing), len(existing)+len(docs)),
		ids:      make(map[string]struct{}, len(existing)),
		dims:     m.dimensions,
	}
	copy(r.records, existing)
	for _, rec := range existing {
		r.ids[rec.ID] = struct{}{}
	}
	if r.dims == 0 && len(existing) > 0 {
		r.dims = len(existing[0].Embedding)
	}

	if embedder == nil {
		return r.records, r.stats, domain.ErrEmbeddingUnavailable
	}

	pending := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		if _, ok := r.ids[doc.ID]; ok {
			r.stats.Skipped++
			continue
		}
		pending = append(pending, doc)
	}

	logger.Info("Found %d existing embeddings", len(existing))
	logger.Info("Processing %d remaining documents", len(pending))

	size := m.cfg.BatchSize
	batches := (len(pending) + size - 1) / size
	for b := 0; b < batches; b++ {
		start := b * size
		end := min(start+size, len(pending))
		logger.Debug("Processing batch %d/%d", b+1, batches)

		for i := start; i < end; i++ {
			if err := r.document(ctx, &pending[i]); err != nil {
				return r.records, r.stats, err
			}
		}

		if m.checkpoint != nil {
			if err := m.checkpoint(ctx, r.snapshot()); err != nil {
				return r.records, r.stats, fmt.Errorf("checkpoint: %w", err)
			}
		}
		if m.pacer != nil {
			if err := m.pacer.AfterBatch(ctx); err != nil {
				return r.records, r.stats, err
			}
		}
	}

	logger.Info("Generated %d new embeddings", r.stats.Embedded)
	return r.records, r.stats, nil
}

// document embeds one document's pending chunks.
// Only context errors are returned; everything else is recorded against the document.
func (r *run) document(ctx context.Context, doc *domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	chunks, err := r.m.chunker.Process(ctx, doc)
	if err != nil {
		r.fail(doc.ID, err)
		return nil
	}

	todo := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := r.ids[c.ID]; ok {
			continue
		}
		todo = append(todo, c)
	}
	if len(todo) == 0 {
		r.stats.Skipped++
		return nil
	}
	if len(todo) < len(chunks) && !r.m.cfg.ResumeByChunk {
		logger.Debug("Re-embedding %s: partially embedded", doc.ID)
		r.drop(chunks)
		todo = chunks
	}
	if len(todo) < len(chunks) {
		logger.Debug("Resuming %s at chunk %d/%d", doc.ID, todo[0].Metadata.ChunkIndex+1, len(chunks))
	}

	for _, c := range todo {
		vec, err := r.embed(ctx, c.Content)
		if err == nil && r.dims != 0 && len(vec) != r.dims {
			err = fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(vec), r.dims)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			r.fail(c.ID, err)
			return r.afterItem(ctx)
		}

		if r.dims == 0 {
			r.dims = len(vec)
		}
		r.records = append(r.records, domain.EmbeddingRecord{
			ID:        c.ID,
			Content:   c.Content,
			Metadata:  c.Metadata,
			Embedding: vec,
		})
		r.ids[c.ID] = struct{}{}
		r.stats.Embedded++

		if c.Metadata.TotalChunks > 1 {
			logger.Debug("Embedded %s (chunk %d/%d)", doc.ID, c.Metadata.ChunkIndex+1, c.Metadata.TotalChunks)
		} else {
			logger.Debug("Embedded %s", doc.ID)
		}

		if err := r.afterItem(ctx); err != nil {
			return err
		}
	}
	return nil
}

// embed calls the embedder, retrying rate limit rejections.
func (r *run) embed(ctx context.Context, text string) ([]float32, error) {
	for attempt := 0; ; attempt++ {
		if r.m.pacer != nil {
			if err := r.m.pacer.Wait(ctx); err != nil {
				return nil, err
			}
		}

		vec, err := r.embedder.Embed(ctx, text, domain.TaskRetrievalDocument)
		if err == nil {
			return vec, nil
		}
		if !errors.Is(err, domain.ErrRateLimited) || attempt >= r.m.cfg.MaxRetries {
			return nil, err
		}

		logger.Warn("Rate limited, retrying (%d/%d): %v", attempt+1, r.m.cfg.MaxRetries, err)
		if r.m.pacer != nil {
			r.m.pacer.Backoff(domain.RetryAfter(err))
		}
	}
}

func (r *run) afterItem(ctx context.Context) error {
	if r.m.pacer == nil {
		return ctx.Err()
	}
	return r.m.pacer.AfterItem(ctx)
}

// drop removes the records of chunks so they can be embedded again.
func (r *run) drop(chunks []domain.Chunk) {
	stale := make(map[string]struct{}, len(chunks))
	for _, c := range chunks {
		stale[c.ID] = struct{}{}
		delete(r.ids, c.ID)
	}
	kept := r.records[:0]
	for _, rec := range r.records {
		if _, ok := stale[rec.ID]; !ok {
			kept = append(kept, rec)
		}
	}
	r.records = kept
}

func (r *run) fail(id string, err error) {
	logger.Warn("Error embedding %s: %v", id, err)
	wrapped := fmt.Errorf("%w: %w", domain.ErrEmbeddingCall, err)
	r.stats.Failed++
	r.stats.Errors = append(r.stats.Errors, domain.ItemError{
		ID:      id,
		Err:     wrapped,
		Message: wrapped.Error(),
	})
}

func (r *run) snapshot() []domain.EmbeddingRecord {
	out := make([]domain.EmbeddingRecord, len(r.records))
	copy(out, r.records)
	return out
}
