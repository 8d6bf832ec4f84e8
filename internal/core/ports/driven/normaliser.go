package driven

import (
	"context"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// Normaliser turns a subtitle file into plain prose.
// Each normaliser handles specific file extensions (e.g., ".srt", ".vtt").
type Normaliser interface {
	// SupportedExtensions returns the lower-cased extensions, with dot, this normaliser handles.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	Priority() int

	// Normalise extracts the spoken text from raw.
	// Malformed input yields an empty string, never an error.
	Normalise(ctx context.Context, raw *domain.RawFile) (string, error)
}
