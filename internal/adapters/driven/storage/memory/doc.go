// Package memory provides in-memory implementations of the storage ports.
//
// Sessions held here live for the lifetime of the process. SessionStore backs
// the "memory" storage backend; ConfigStore is a test double for settings.
package memory
