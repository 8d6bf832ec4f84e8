package subtitle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

const exampleSRT = "1\n00:00:01,000 --> 00:00:02,000\nHello world (laughs) [music] 3 times"

func TestNew(t *testing.T) {
	n := New()
	require.NotNil(t, n)
	assert.Equal(t, []string{".srt", ".vtt"}, n.SupportedExtensions())
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise_SRTExample(t *testing.T) {
	assert.Equal(t, "Hello world times", Normalise([]byte(exampleSRT), "Course/Ch1/intro.srt"))
}

func TestNormalise_SRT(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name: "multiple cues",
			content: "1\n00:00:01,000 --> 00:00:02,000\nHello there.\n\n" +
				"2\n00:00:03,000 --> 00:00:04,000\nHow are you?\n",
			expected: "Hello there. How are you?",
		},
		{
			name: "multi-line cue is joined",
			content: "1\n00:00:01,000 --> 00:00:02,000\nFirst line\nsecond line\n\n" +
				"2\n00:00:03,000 --> 00:00:04,000\nthird line\n",
			expected: "First line second line third line",
		},
		{
			name:     "CRLF line endings",
			content:  "1\r\n00:00:01,000 --> 00:00:02,000\r\nHello there.\r\n\r\n2\r\n00:00:03,000 --> 00:00:04,000\r\nBye.\r\n",
			expected: "Hello there. Bye.",
		},
		{
			name:     "commas are spaced",
			content:  "1\n00:00:01,000 --> 00:00:02,000\nfirst ,second,third\n",
			expected: "first, second, third",
		},
		{
			name:     "space before punctuation removed",
			content:  "1\n00:00:01,000 --> 00:00:02,000\nReally ?\n",
			expected: "Really?",
		},
		{
			name:     "block without text is ignored",
			content:  "1\n00:00:01,000 --> 00:00:02,000\n\n2\n00:00:03,000 --> 00:00:04,000\nOnly this\n",
			expected: "Only this",
		},
		{
			name: "separator line with spaces",
			content: "1\n00:00:01,000 --> 00:00:02,000\nHello\n \n" +
				"2\n00:00:03,000 --> 00:00:04,000\nWorld\n",
			expected: "Hello World",
		},
		{
			name: "several blank lines between cues",
			content: "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n\n" +
				"2\n00:00:03,000 --> 00:00:04,000\nWorld\n",
			expected: "Hello World",
		},
		{
			name:     "leading blank line",
			content:  "\n1\n00:00:01,000 --> 00:00:02,000\nHello\n",
			expected: "Hello",
		},
		{
			name:     "empty input",
			content:  "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalise([]byte(tt.content), "a/b/c.srt"))
		})
	}
}

func TestNormalise_VTT(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name: "header and notes skipped",
			content: "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nWelcome to the course\n\n" +
				"NOTE this is a comment\n\n00:00:03.000 --> 00:00:04.000\nLet's begin, everyone!\n",
			expected: "Welcome to the course Let's begin, everyone!",
		},
		{
			name: "cue identifiers removed",
			content: "WEBVTT\n\n1\n00:00:01.000 --> 00:00:02.000\nWelcome\n\n" +
				"2\n00:00:03.000 --> 00:00:04.000\nNext part\n",
			expected: "Welcome Next part",
		},
		{
			name:     "text before first cue ignored",
			content:  "WEBVTT\nKind: captions\n\n00:00:01.000 --> 00:00:02.000\nHi\n",
			expected: "Hi",
		},
		{
			name:     "header only",
			content:  "WEBVTT\n",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalise([]byte(tt.content), "a/b/c.vtt"))
		})
	}
}

func TestNormalise_ExtensionCaseInsensitive(t *testing.T) {
	assert.Equal(t, "Hello world times", Normalise([]byte(exampleSRT), "LECTURE.SRT"))
}

func TestNormalise_UnknownExtension(t *testing.T) {
	assert.Empty(t, Normalise([]byte(exampleSRT), "notes.txt"))
	assert.Empty(t, Normalise([]byte(exampleSRT), "noext"))
}

func TestNormalise_UTF8BOM(t *testing.T) {
	content := append([]byte("\xEF\xBB\xBF"), exampleSRT...)
	assert.Equal(t, "Hello world times", Normalise(content, "a.srt"))
}

func TestNormalise_UTF16WithBOM(t *testing.T) {
	for _, order := range []unicode.Endianness{unicode.LittleEndian, unicode.BigEndian} {
		enc := unicode.UTF16(order, unicode.UseBOM).NewEncoder()
		content, err := enc.Bytes([]byte(exampleSRT))
		require.NoError(t, err)
		assert.Equal(t, "Hello world times", Normalise(content, "a.srt"))
	}
}

func TestClean_CleanInputUnchanged(t *testing.T) {
	inputs := []string{
		"Hello world times",
		"Hello there. How are you?",
		"first, second, third",
		"Welcome to the course",
	}
	for _, in := range inputs {
		assert.Equal(t, in, Clean(in))
		assert.Equal(t, Clean(in), Clean(Clean(in)))
	}
}

func TestClean_StripsDirections(t *testing.T) {
	assert.Equal(t, "so we begin", Clean("[MUSIC] so (coughs) we begin"))
}

func TestNormaliser_Normalise(t *testing.T) {
	n := New()
	ctx := context.Background()

	text, err := n.Normalise(ctx, &domain.RawFile{Path: "c/ch/x.srt", Content: []byte(exampleSRT)})
	require.NoError(t, err)
	assert.Equal(t, "Hello world times", text)

	_, err = n.Normalise(ctx, &domain.RawFile{Path: "c/ch/x.txt", Content: []byte("hello")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = n.Normalise(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormaliser_MalformedYieldsEmpty(t *testing.T) {
	text, err := New().Normalise(context.Background(), &domain.RawFile{
		Path:    "x.srt",
		Content: []byte("just some words\nwith no timing"),
	})
	require.NoError(t, err)
	assert.Empty(t, text)
}
