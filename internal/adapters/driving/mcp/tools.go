package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

// SearchInput is the input schema for the search_lectures tool.
type SearchInput struct {
	SessionID string `json:"session_id" jsonschema:"the session to search, as printed by lecturelens ingest"`
	Query     string `json:"query" jsonschema:"the question or topic to find in the lectures"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"maximum number of passages to return (default from settings)"`
}

// SearchOutput is the output schema for the search_lectures tool.
type SearchOutput struct {
	Results      []PassageOutput `json:"results"`
	Count        int             `json:"count"`
	ContextBlock string          `json:"context_block"`
}

// PassageOutput is one ranked lecture passage.
type PassageOutput struct {
	ID       string  `json:"id"`
	Course   string  `json:"course"`
	Chapter  string  `json:"chapter"`
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
}

// AskInput is the input schema for the ask_lectures tool.
type AskInput struct {
	SessionID string `json:"session_id" jsonschema:"the session to answer from"`
	Question  string `json:"question" jsonschema:"the question to answer"`
}

// AskOutput is the output schema for the ask_lectures tool.
type AskOutput struct {
	Answer   string            `json:"answer"`
	Grounded bool              `json:"grounded"`
	Sources  []domain.Citation `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_lectures",
		Description: "Find the lecture transcript passages most relevant to a query within an embedded session",
	}, s.handleSearch)

	if s.ports.Chat != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask_lectures",
			Description: "Answer a question using a session's lecture transcripts as context, with citations",
		}, s.handleAsk)
	}
}

// handleSearch handles the search_lectures tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.SessionID) == "" || strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, fmt.Errorf("%w: session_id and query are required", domain.ErrInvalidInput)
	}
	topK := input.TopK
	if topK < 0 {
		topK = 0
	}

	result, err := s.ports.Query.Query(ctx, input.SessionID, input.Query, topK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:      make([]PassageOutput, len(result.Results)),
		Count:        len(result.Results),
		ContextBlock: result.ContextBlock,
	}
	for i := range result.Results {
		r := &result.Results[i]
		output.Results[i] = PassageOutput{
			ID:       r.ID,
			Course:   r.Metadata.Course,
			Chapter:  r.Metadata.Chapter,
			Filename: r.Metadata.Filename,
			Score:    r.Score,
			Content:  r.Content,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask_lectures tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.SessionID) == "" || strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, fmt.Errorf("%w: session_id and question are required", domain.ErrInvalidInput)
	}

	answer, err := s.ports.Chat.Ask(ctx, input.SessionID, input.Question, nil)
	if err != nil {
		return nil, AskOutput{}, err
	}

	sources := answer.Sources
	if sources == nil {
		sources = []domain.Citation{}
	}
	return nil, AskOutput{
		Answer:   answer.Answer,
		Grounded: answer.Grounded,
		Sources:  sources,
	}, nil
}
