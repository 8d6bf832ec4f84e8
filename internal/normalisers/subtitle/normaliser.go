// Package subtitle turns SRT and WebVTT transcripts into plain prose.
package subtitle

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
	"github.com/custodia-labs/lecturelens/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Supported subtitle extensions.
const (
	ExtSRT = ".srt"
	ExtVTT = ".vtt"
)

// cleanup rules run in order over the extracted text.
var cleanupRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\[.*?\]`), ""},     // stage directions
	{regexp.MustCompile(`\(.*?\)`), ""},     // asides
	{regexp.MustCompile(`\b\d+\s+`), ""},    // cue numbers
	{regexp.MustCompile(`(?m)^\d+\s*`), ""}, // cue numbers at line start
	{regexp.MustCompile(`\s+\d+\s+`), " "},
	{regexp.MustCompile(`\d+\.`), ""},
	{regexp.MustCompile(`\s+`), " "},
	{regexp.MustCompile(`\s+([.!?])`), "$1"},
	{regexp.MustCompile(`\s*,\s*`), ", "},
	{regexp.MustCompile(`\s*\.\s*`), ". "},
}

// Normaliser handles SRT and VTT subtitle files.
type Normaliser struct{}

// New creates a new subtitle normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{ExtSRT, ExtVTT}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the spoken text from a subtitle file.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	switch strings.ToLower(path.Ext(raw.Path)) {
	case ExtSRT, ExtVTT:
		return Normalise(raw.Content, raw.Path), nil
	default:
		return "", domain.ErrUnsupportedType
	}
}

// Normalise parses subtitle content according to the extension of filePath
// and returns cleaned prose. Unknown extensions and undecodable input yield "".
func Normalise(content []byte, filePath string) string {
	text, err := decode(content)
	if err != nil {
		logger.Warn("subtitle: %s: %v", filePath, err)
		return ""
	}

	var extracted string
	switch strings.ToLower(path.Ext(filePath)) {
	case ExtSRT:
		extracted = parseSRT(text)
	case ExtVTT:
		extracted = parseVTT(text)
	default:
		return ""
	}

	return Clean(extracted)
}

// Clean applies the transcript cleanup rules to already extracted text.
func Clean(text string) string {
	for _, rule := range cleanupRules {
		text = rule.re.ReplaceAllString(text, rule.repl)
	}
	return strings.TrimSpace(text)
}

// decode converts UTF-8 or BOM-marked UTF-16 bytes to a UTF-8 string with LF line endings.
func decode(content []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	text := strings.ToValidUTF8(string(out), "\uFFFD")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}

// srtBlockSep matches the blank lines between cues, including lines of spaces.
var srtBlockSep = regexp.MustCompile(`\n[ \t]*(?:\n[ \t]*)*\n`)

func parseSRT(text string) string {
	var b strings.Builder
	for _, block := range srtBlockSep.Split(text, -1) {
		block = strings.TrimLeft(block, " \t\n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			continue
		}
		cue := strings.TrimSpace(strings.Join(lines[2:], " "))
		if cue != "" {
			b.WriteString(cue)
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func parseVTT(text string) string {
	var b strings.Builder
	inText := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "WEBVTT") || strings.HasPrefix(line, "NOTE") {
			continue
		}
		if strings.Contains(line, "-->") {
			inText = true
			continue
		}
		if inText {
			b.WriteString(line)
			b.WriteByte(' ')
		}
	}
	return b.String()
}
