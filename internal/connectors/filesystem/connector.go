// Package filesystem reads lecture subtitle folders from local disk.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
	"github.com/custodia-labs/lecturelens/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// DefaultMaxFileSize skips files that cannot plausibly be subtitles.
const DefaultMaxFileSize = 20 << 20

// Connector walks a directory tree and yields every visible file.
//
// Paths are made relative the way a browser folder upload reports them:
// by default the root folder's own name is the first segment, so
// "Biology/Week 1/01.srt" yields course "Biology" and chapter "Week 1".
type Connector struct {
	rootPath    string
	includeRoot bool
	maxFileSize int64
}

// Option configures a Connector.
type Option func(*Connector)

// WithoutRootName makes paths relative to the root's contents.
// Use it when the root holds several course folders.
func WithoutRootName() Option {
	return func(c *Connector) {
		c.includeRoot = false
	}
}

// WithMaxFileSize overrides DefaultMaxFileSize. Zero or less disables the limit.
func WithMaxFileSize(n int64) Option {
	return func(c *Connector) {
		c.maxFileSize = n
	}
}

// New creates a connector rooted at rootPath.
func New(rootPath string, opts ...Option) *Connector {
	c := &Connector{
		rootPath:    rootPath,
		includeRoot: true,
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// Validate checks the root exists and is a directory.
func (c *Connector) Validate(_ context.Context) error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: directory does not exist: %s", domain.ErrInvalidInput, c.rootPath)
		}
		return fmt.Errorf("stat %s: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: not a directory: %s", domain.ErrInvalidInput, c.rootPath)
	}
	return nil
}

// FullSync streams every visible file under the root in lexical order.
// Hidden files and directories are skipped. Unreadable and oversized files
// are logged and skipped. A failed walk sends one error and stops.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawFile, <-chan error) {
	files := make(chan domain.RawFile)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)

		if err := c.Validate(ctx); err != nil {
			errs <- err
			return
		}

		prefix := ""
		if c.includeRoot {
			abs, err := filepath.Abs(c.rootPath)
			if err != nil {
				errs <- fmt.Errorf("resolve %s: %w", c.rootPath, err)
				return
			}
			prefix = filepath.Base(abs) + "/"
		}

		err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if path != c.rootPath && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			raw, ok := c.read(path, d)
			if !ok {
				return nil
			}
			rel, err := filepath.Rel(c.rootPath, path)
			if err != nil {
				return err
			}
			raw.Path = prefix + filepath.ToSlash(rel)

			select {
			case files <- raw:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			errs <- fmt.Errorf("walk %s: %w", c.rootPath, err)
		}
	}()

	return files, errs
}

// read loads a file, reporting false when it should be skipped.
func (c *Connector) read(path string, d fs.DirEntry) (domain.RawFile, bool) {
	if c.maxFileSize > 0 {
		info, err := d.Info()
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			return domain.RawFile{}, false
		}
		if info.Size() > c.maxFileSize {
			logger.Warn("Skipping %s: %d bytes exceeds limit of %d", path, info.Size(), c.maxFileSize)
			return domain.RawFile{}, false
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Skipping %s: %v", path, err)
		return domain.RawFile{}, false
	}
	return domain.RawFile{Content: content}, true
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}

// isHidden reports whether a file or directory name is hidden.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
