// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Normaliser: Turns subtitle bytes into plain prose
//   - NormaliserRegistry: Selects a normaliser by file extension
//   - Chunker: Splits documents into embeddable chunks
//   - SessionStore: Persists sessions, documents and embedding records
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vectors. Without it, embedding and querying are disabled.
//   - LLMService: Answers questions. Without it, chat is disabled.
//   - Pacer: Spaces out provider calls. Without it, calls run back to back.
//   - RawArchive: Keeps uploaded bytes. Without it, nothing is archived.
//   - PromptStore: Custom prompts. Without it, built-in defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
