package domain

import "time"

// CourseStructure maps course to chapter to the filenames ingested under it.
type CourseStructure map[string]map[string][]string

// Add records filename under course and chapter.
func (c CourseStructure) Add(course, chapter, filename string) {
	chapters, ok := c[course]
	if !ok {
		chapters = make(map[string][]string)
		c[course] = chapters
	}
	chapters[chapter] = append(chapters[chapter], filename)
}

// Session groups one ingestion run's documents and embedding records.
// Nothing is shared between sessions.
type Session struct {
	// ID is the opaque session identifier.
	ID string `json:"id"`

	// CreatedAt is when the session was ingested.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the session's records last changed.
	UpdatedAt time.Time `json:"updatedAt"`

	// FilesProcessed is the number of subtitle files parsed during ingest.
	FilesProcessed int `json:"filesProcessed"`

	// DocumentCount is the number of documents stored.
	DocumentCount int `json:"documentCount"`

	// RecordCount is the number of embedding records stored.
	RecordCount int `json:"recordCount"`

	// EmbeddingModel is the model that produced the records, empty until embedded.
	EmbeddingModel string `json:"embeddingModel,omitempty"`

	// Dimensions is the vector length of every record, zero until embedded.
	Dimensions int `json:"dimensions,omitempty"`

	// CourseStructure summarises what was ingested.
	CourseStructure CourseStructure `json:"courseStructure"`
}

// IngestResult summarises an ingest run.
type IngestResult struct {
	// SessionID is the session created for the run.
	SessionID string `json:"sessionId"`

	// FilesProcessed counts subtitle files that were parsed, including ones yielding no text.
	// A file is counted here or in FilesSkipped, never both.
	FilesProcessed int `json:"filesProcessed"`

	// FilesSkipped counts files that were not subtitles or duplicated another document.
	FilesSkipped int `json:"filesSkipped"`

	// DocumentsGenerated counts documents kept.
	DocumentsGenerated int `json:"documentsGenerated"`

	// CourseStructure summarises the documents kept.
	CourseStructure CourseStructure `json:"courseStructure"`

	// Documents are the documents kept, in ingestion order.
	Documents []Document `json:"-"`
}

// ItemError records a single document or chunk that failed to embed.
type ItemError struct {
	// ID is the chunk or document identifier.
	ID string `json:"id"`

	// Err is the failure, wrapping ErrEmbeddingCall.
	Err error `json:"-"`

	// Message is Err rendered for serialisation.
	Message string `json:"error"`
}

// RunStats counts what a batch run did.
type RunStats struct {
	// Embedded is the number of new records produced.
	Embedded int

	// Skipped is the number of documents with nothing left to embed.
	Skipped int

	// Failed is the number of documents that failed.
	Failed int

	// Errors holds one entry per failed document, keyed by the chunk that failed.
	Errors []ItemError
}

// EmbedReport summarises an embedSession run.
type EmbedReport struct {
	SessionID           string      `json:"sessionId"`
	EmbeddingsGenerated int         `json:"embeddingsGenerated"`
	TotalEmbeddings     int         `json:"totalEmbeddings"`
	Skipped             int         `json:"skipped"`
	Failed              int         `json:"failed"`
	Errors              []ItemError `json:"errors,omitempty"`
}
