package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/normalisers/subtitle"
)

type fixedNormaliser struct {
	exts     []string
	priority int
	output   string
}

func (f *fixedNormaliser) SupportedExtensions() []string { return f.exts }
func (f *fixedNormaliser) Priority() int                 { return f.priority }
func (f *fixedNormaliser) Normalise(_ context.Context, _ *domain.RawFile) (string, error) {
	return f.output, nil
}

func TestRegistry_DispatchByExtension(t *testing.T) {
	r := NewRegistry(subtitle.New())

	text, err := r.Normalise(context.Background(), &domain.RawFile{
		Path:    "Course/Ch/a.SRT",
		Content: []byte("1\n00:00:01,000 --> 00:00:02,000\nHello\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry(subtitle.New())

	_, err := r.Normalise(context.Background(), &domain.RawFile{Path: "a.pdf"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Normalise(context.Background(), &domain.RawFile{Path: "README"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_PriorityWins(t *testing.T) {
	low := &fixedNormaliser{exts: []string{".srt"}, priority: 10, output: "low"}
	high := &fixedNormaliser{exts: []string{".SRT"}, priority: 90, output: "high"}
	r := NewRegistry(low, high)

	text, err := r.Normalise(context.Background(), &domain.RawFile{Path: "x.srt"})
	require.NoError(t, err)
	assert.Equal(t, "high", text)
}

func TestRegistry_Supports(t *testing.T) {
	r := NewRegistry(subtitle.New())

	assert.True(t, r.Supports("a/b/c.vtt"))
	assert.True(t, r.Supports("c.SRT"))
	assert.False(t, r.Supports("c.txt"))
	assert.False(t, r.Supports(""))
	assert.Equal(t, []string{".srt", ".vtt"}, r.SupportedExtensions())
}
