package domain

// RawFile is an uploaded file before normalisation.
type RawFile struct {
	// Path is the logical relative path, slash separated (e.g. "Course/Chapter/01.srt").
	Path string

	// Content is the raw bytes.
	Content []byte
}
