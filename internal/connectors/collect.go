package connectors

import (
	"context"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
)

// Collect drains a connector's full sync into a slice.
// Files read before a walk error are returned alongside it.
func Collect(ctx context.Context, conn driven.Connector) ([]domain.RawFile, error) {
	files, errs := conn.FullSync(ctx)

	var out []domain.RawFile
	for f := range files {
		out = append(out, f)
	}
	if err := <-errs; err != nil {
		return out, err
	}
	return out, nil
}
