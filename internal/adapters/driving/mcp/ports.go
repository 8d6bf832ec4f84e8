package mcp

import (
	"github.com/custodia-labs/lecturelens/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Query ranks a session's passages against a question. Required.
	Query driving.QueryService

	// Session lists sessions and their documents. Optional.
	Session driving.SessionService

	// Chat answers grounded questions. Optional; enables ask_lectures.
	Chat driving.ChatService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
