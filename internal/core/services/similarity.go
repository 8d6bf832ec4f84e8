package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// DefaultTopK is the number of results returned when none is requested.
const DefaultTopK = domain.DefaultTopK

// CosineSimilarity returns dot(a,b) / (|a|*|b|).
// Vectors of different length are an error; a zero vector scores 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Search ranks records by cosine similarity to query and returns the best topK.
// Ties keep collection order. records is not modified.
func Search(query []float32, records []domain.EmbeddingRecord, topK int) ([]domain.ScoredRecord, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	scored := make([]domain.ScoredRecord, 0, len(records))
	for i := range records {
		rec := &records[i]
		score, err := CosineSimilarity(query, rec.Embedding)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		scored = append(scored, domain.ScoredRecord{
			ID:       rec.ID,
			Content:  rec.Content,
			Metadata: rec.Metadata,
			Score:    score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}
