// Package domain defines the core business entities for LectureLens.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawFile: Subtitle bytes plus the relative path they were uploaded under
//   - Document: Normalised transcript text with course metadata
//   - Chunk: An embeddable slice of a document
//   - EmbeddingRecord: A chunk with its vector, the unit searched at query time
//   - Session: The scope grouping one ingestion run's artifacts
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
