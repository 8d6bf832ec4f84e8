package domain

import (
	"path"
	"strconv"
	"strings"
)

// Fallback labels used when an upload path is too shallow to name a course or chapter.
const (
	UnknownCourse  = "Unknown Course"
	UnknownChapter = "Unknown Chapter"
)

// DocumentMetadata describes where a transcript came from.
// All fields are fixed when the document is created.
type DocumentMetadata struct {
	// Course is the first segment of the upload path.
	Course string `json:"course"`

	// Chapter is the second segment of the upload path.
	Chapter string `json:"chapter"`

	// Filename is the last segment of the upload path.
	Filename string `json:"filename"`

	// OriginalPath is the relative path as uploaded.
	OriginalPath string `json:"originalPath"`

	// Type is the lower-cased file extension including the dot (".srt", ".vtt").
	Type string `json:"type"`
}

// Document is a normalised transcript.
// It is the canonical representation after subtitle parsing.
type Document struct {
	// ID is unique within a session and derived from course, chapter and filename.
	ID string `json:"id"`

	// Content is the cleaned prose. Never empty for a stored document.
	Content string `json:"content"`

	// Metadata records the document's origin.
	Metadata DocumentMetadata `json:"metadata"`
}

// RecordMetadata is document metadata extended with chunk position.
type RecordMetadata struct {
	DocumentMetadata

	// IsChunk is true when the parent document was split.
	IsChunk bool `json:"isChunk"`

	// ChunkIndex is the zero-based position within the parent.
	ChunkIndex int `json:"chunkIndex"`

	// TotalChunks is the number of chunks the parent was split into.
	TotalChunks int `json:"totalChunks"`
}

// Chunk is an embeddable slice of a document's content.
type Chunk struct {
	// ID is "{documentID}_chunk_{index}" when split, otherwise the document ID.
	ID string `json:"id"`

	// DocumentID links to the parent Document.
	DocumentID string `json:"documentId"`

	// Content is a contiguous substring of the parent content.
	Content string `json:"content"`

	// Metadata is the parent metadata plus chunk position.
	Metadata RecordMetadata `json:"metadata"`
}

// EmbeddingRecord is an embedded chunk. Records are immutable once written
// and form the only artifact consumed by search.
type EmbeddingRecord struct {
	// ID is the chunk ID and is unique within a session.
	ID string `json:"id"`

	// Content is the text that was embedded.
	Content string `json:"content"`

	// Metadata is copied from the chunk.
	Metadata RecordMetadata `json:"metadata"`

	// Embedding is the vector. Its length is fixed per session.
	Embedding []float32 `json:"embedding"`
}

// ChunkID returns the identifier for chunk index of a document split into total chunks.
func ChunkID(documentID string, index, total int) string {
	if total <= 1 {
		return documentID
	}
	return documentID + "_chunk_" + strconv.Itoa(index)
}

// DocumentID derives a document identifier from its course, chapter and filename.
// Every character outside [A-Za-z0-9_] is replaced with an underscore.
func DocumentID(course, chapter, filename string) string {
	raw := course + "_" + chapter + "_" + filename
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// MetadataFromPath derives document metadata from a slash-separated relative path.
// The first segment names the course, the second the chapter and the last the file.
func MetadataFromPath(relativePath string) DocumentMetadata {
	var parts []string
	for _, p := range strings.Split(relativePath, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	meta := DocumentMetadata{
		Course:       UnknownCourse,
		Chapter:      UnknownChapter,
		OriginalPath: relativePath,
	}
	if len(parts) > 0 {
		meta.Course = parts[0]
		meta.Filename = parts[len(parts)-1]
	}
	if len(parts) > 1 {
		meta.Chapter = parts[1]
	}
	meta.Type = strings.ToLower(path.Ext(meta.Filename))
	return meta
}
