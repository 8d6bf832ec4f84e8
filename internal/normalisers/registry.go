package normalisers

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches files to normalisers by extension.
// When several normalisers claim an extension the highest priority wins.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string][]driven.Normaliser
}

// NewRegistry creates a registry with the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{byExt: make(map[string][]driven.Normaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser for each of its extensions.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range n.SupportedExtensions() {
		ext = strings.ToLower(ext)
		list := append(r.byExt[ext], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byExt[ext] = list
	}
}

// Supports reports whether some normaliser handles the path's extension.
func (r *Registry) Supports(filePath string) bool {
	return r.lookup(filePath) != nil
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Normalise runs the best matching normaliser over raw.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawFile) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	n := r.lookup(raw.Path)
	if n == nil {
		return "", domain.ErrUnsupportedType
	}
	return n.Normalise(ctx, raw)
}

func (r *Registry) lookup(filePath string) driven.Normaliser {
	ext := strings.ToLower(path.Ext(filePath))
	if ext == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if list := r.byExt[ext]; len(list) > 0 {
		return list[0]
	}
	return nil
}
