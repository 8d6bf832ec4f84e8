package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
)

const rawDir = "raw"

// Ensure Archive implements the interface.
var _ driven.RawArchive = (*Archive)(nil)

// Archive keeps the uploaded bytes of every session under <data_dir>/raw/<session>/.
// It is independent of the configured session store.
type Archive struct {
	root string
}

// NewArchive creates an archive rooted at <dataDir>/raw.
func NewArchive(dataDir string) (*Archive, error) {
	root := filepath.Join(dataDir, rawDir)
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("creating raw directory: %w", err)
	}
	return &Archive{root: root}, nil
}

// Root returns the archive directory.
func (a *Archive) Root() string {
	return a.root
}

// Archive writes file under the session's directory, preserving its relative path.
func (a *Archive) Archive(ctx context.Context, sessionID string, file domain.RawFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validID(sessionID) {
		return fmt.Errorf("%w: session id %q", domain.ErrInvalidInput, sessionID)
	}

	sessionRoot := filepath.Join(a.root, sessionID)
	target := filepath.Join(sessionRoot, filepath.FromSlash(file.Path))
	rel, err := filepath.Rel(sessionRoot, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: path %q escapes the archive", domain.ErrInvalidInput, file.Path)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}
	if err := os.WriteFile(target, file.Content, 0600); err != nil {
		return fmt.Errorf("archiving %s: %w", file.Path, err)
	}
	return nil
}
