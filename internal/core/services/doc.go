// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The pipeline is ingest, embed, then query or chat. Each step
// reads and writes session artifacts through driven.SessionStore.
package services
