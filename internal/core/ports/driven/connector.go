package driven

import (
	"context"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// Connector reads subtitle files from a source such as a local directory.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Validate checks the source exists and is readable.
	Validate(ctx context.Context) error

	// FullSync streams every file in the source.
	// Paths are relative to the source root and slash separated.
	// Both channels are closed when the walk finishes.
	FullSync(ctx context.Context) (<-chan domain.RawFile, <-chan error)

	// Close releases resources.
	Close() error
}
