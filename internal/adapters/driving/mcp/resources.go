package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for LectureLens resources.
	uriScheme = "lecturelens://"

	sessionsPrefix  = uriScheme + "sessions/"
	documentsSuffix = "/documents"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sessions",
		Name:        "sessions",
		Description: "Ingested lecture sessions, newest first",
		MIMEType:    "application/json",
	}, s.handleSessionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}/documents",
		Name:        "session-documents",
		Description: "Transcript documents of a session with their course and chapter",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}/documents/{documentId}",
		Name:        "document-transcript",
		Description: "Cleaned transcript text of one lecture",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

type sessionInfo struct {
	ID             string                 `json:"id"`
	CreatedAt      time.Time              `json:"createdAt"`
	DocumentCount  int                    `json:"documentCount"`
	RecordCount    int                    `json:"recordCount"`
	EmbeddingModel string                 `json:"embeddingModel,omitempty"`
	Courses        domain.CourseStructure `json:"courseStructure"`
	URI            string                 `json:"uri"`
}

// handleSessionsResource returns a list of all sessions.
func (s *Server) handleSessionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Session == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	sessions, err := s.ports.Session.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	infos := make([]sessionInfo, len(sessions))
	for i := range sessions {
		infos[i] = sessionInfo{
			ID:             sessions[i].ID,
			CreatedAt:      sessions[i].CreatedAt,
			DocumentCount:  sessions[i].DocumentCount,
			RecordCount:    sessions[i].RecordCount,
			EmbeddingModel: sessions[i].EmbeddingModel,
			Courses:        sessions[i].CourseStructure,
			URI:            sessionsPrefix + sessions[i].ID + documentsSuffix,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sessions: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

type documentInfo struct {
	ID       string `json:"id"`
	Course   string `json:"course"`
	Chapter  string `json:"chapter"`
	Filename string `json:"filename"`
	Length   int    `json:"length"`
	URI      string `json:"uri"`
}

// handleDocumentsResource returns the documents of one session.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Session == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	sessionID := extractSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Session.Documents(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	infos := make([]documentInfo, len(docs))
	for i := range docs {
		infos[i] = documentInfo{
			ID:       docs[i].ID,
			Course:   docs[i].Metadata.Course,
			Chapter:  docs[i].Metadata.Chapter,
			Filename: docs[i].Metadata.Filename,
			Length:   len([]rune(docs[i].Content)),
			URI:      sessionsPrefix + sessionID + documentsSuffix + "/" + docs[i].ID,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleDocumentContentResource returns the transcript of one document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Session == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	sessionID, docID := extractDocumentRef(req.Params.URI)
	if sessionID == "" || docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Session.Documents(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document content: %w", err)
	}

	for i := range docs {
		if docs[i].ID == docID {
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{{
					URI:      req.Params.URI,
					MIMEType: "text/plain",
					Text:     docs[i].Content,
				}},
			}, nil
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractSessionID extracts the session ID from lecturelens://sessions/{id}/documents.
func extractSessionID(uri string) string {
	if !strings.HasPrefix(uri, sessionsPrefix) {
		return ""
	}
	rest := strings.TrimPrefix(uri, sessionsPrefix)
	if !strings.HasSuffix(rest, documentsSuffix) {
		return ""
	}
	id := strings.TrimSuffix(rest, documentsSuffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

// extractDocumentRef extracts both IDs from lecturelens://sessions/{id}/documents/{docId}.
func extractDocumentRef(uri string) (sessionID, docID string) {
	if !strings.HasPrefix(uri, sessionsPrefix) {
		return "", ""
	}
	rest := strings.TrimPrefix(uri, sessionsPrefix)
	sessionID, docID, ok := strings.Cut(rest, documentsSuffix+"/")
	if !ok || sessionID == "" || strings.Contains(sessionID, "/") || strings.Contains(docID, "/") {
		return "", ""
	}
	return sessionID, docID
}
