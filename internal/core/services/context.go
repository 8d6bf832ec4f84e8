package services

import (
	"strings"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// ContextSeparator sits between passages in an assembled context block.
const ContextSeparator = "\n\n---\n\n"

// AssembleContext formats ranked results into a context block for a language model,
// with a citation per result in the same order.
func AssembleContext(results []domain.ScoredRecord) (string, []domain.Citation) {
	passages := make([]string, 0, len(results))
	citations := make([]domain.Citation, 0, len(results))

	for _, r := range results {
		passages = append(passages, "["+r.Metadata.Course+" - "+r.Metadata.Chapter+"]\n"+r.Content)
		citations = append(citations, domain.Citation{
			Course:   r.Metadata.Course,
			Chapter:  r.Metadata.Chapter,
			Filename: r.Metadata.Filename,
			Score:    r.Score,
		})
	}

	return strings.Join(passages, ContextSeparator), citations
}
