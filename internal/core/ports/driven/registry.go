package driven

import (
	"context"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a file.
// It maintains a priority-ordered list of normalisers and dispatches
// on the file extension.
type NormaliserRegistry interface {
	// Normalise transforms a raw file using the best matching normaliser.
	// Returns domain.ErrUnsupportedType when no normaliser handles the extension.
	Normalise(ctx context.Context, raw *domain.RawFile) (string, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// Supports reports whether some normaliser handles the path's extension.
	Supports(path string) bool

	// SupportedExtensions returns all extensions that can be normalised.
	SupportedExtensions() []string
}
