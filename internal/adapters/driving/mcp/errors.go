// Package mcp provides an MCP (Model Context Protocol) server adapter for LectureLens.
// It lets AI assistants search ingested lectures and read their transcripts.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
