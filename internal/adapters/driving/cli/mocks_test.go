package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

type mockIngestService struct {
	files []domain.RawFile
	err   error
}

func (m *mockIngestService) Ingest(_ context.Context, files []domain.RawFile) (*domain.IngestResult, error) {
	m.files = files
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{
		SessionID:          "session-1",
		FilesProcessed:     len(files),
		FilesSkipped:       0,
		DocumentsGenerated: len(files),
		CourseStructure: domain.CourseStructure{
			"Biology": {"Week 1": {"01 Cells.srt"}},
		},
	}, nil
}

type mockEmbedService struct {
	report     *domain.EmbedReport
	err        error
	gotSession string
	inProgress bool
}

func (m *mockEmbedService) EmbedSession(_ context.Context, sessionID string) (*domain.EmbedReport, error) {
	m.gotSession = sessionID
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.EmbedReport{SessionID: sessionID, EmbeddingsGenerated: 2, TotalEmbeddings: 2}, nil
}

func (m *mockEmbedService) EmbedDocuments(
	_ context.Context,
	_ []domain.Document,
	existing []domain.EmbeddingRecord,
) ([]domain.EmbeddingRecord, domain.RunStats, error) {
	return existing, domain.RunStats{}, m.err
}

func (m *mockEmbedService) InProgress(_ string) bool {
	return m.inProgress
}

type mockQueryService struct {
	result  *domain.QueryResult
	err     error
	gotTopK int
	gotText string
}

func (m *mockQueryService) Query(_ context.Context, _, text string, topK int) (*domain.QueryResult, error) {
	m.gotText = text
	m.gotTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.QueryResult{
		Query:        text,
		ContextBlock: "[Biology - Week 1]\nCells divide by mitosis.",
		Citations:    []domain.Citation{{Course: "Biology", Chapter: "Week 1", Filename: "01 Cells.srt", Score: 0.87}},
		Results: []domain.ScoredRecord{{
			ID:      "Biology_Week_1_01_Cells_srt",
			Content: "Cells divide by mitosis.",
			Metadata: domain.RecordMetadata{DocumentMetadata: domain.DocumentMetadata{
				Course: "Biology", Chapter: "Week 1", Filename: "01 Cells.srt",
			}},
			Score: 0.87,
		}},
	}, nil
}

func (m *mockQueryService) QueryRecords(
	_ context.Context,
	_ []domain.EmbeddingRecord,
	text string,
	_ int,
) (*domain.QueryResult, error) {
	return &domain.QueryResult{Query: text}, m.err
}

type mockChatService struct {
	answer    *domain.ChatAnswer
	err       error
	questions []string
	histories [][]domain.ChatTurn
}

func (m *mockChatService) Ask(
	_ context.Context,
	_, question string,
	history []domain.ChatTurn,
) (*domain.ChatAnswer, error) {
	m.questions = append(m.questions, question)
	m.histories = append(m.histories, append([]domain.ChatTurn(nil), history...))
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.ChatAnswer{
		Answer:   "Answer to: " + question,
		Grounded: true,
		Sources:  []domain.Citation{{Course: "Biology", Chapter: "Week 1", Filename: "01 Cells.srt", Score: 0.87}},
	}, nil
}

type mockSessionService struct {
	sessions []domain.Session
	err      error
	deleted  []string
}

func (m *mockSessionService) List(_ context.Context) ([]domain.Session, error) {
	return m.sessions, m.err
}

func (m *mockSessionService) Get(_ context.Context, id string) (*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return &m.sessions[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSessionService) Documents(_ context.Context, _ string) ([]domain.Document, error) {
	return nil, m.err
}

func (m *mockSessionService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockSettingsService struct {
	settings    domain.AppSettings
	setCalls    map[string]string
	setErr      error
	embedErr    error
	llmErr      error
	embedConfig []string
}

func newMockSettingsService() *mockSettingsService {
	s := domain.DefaultAppSettings()
	s.DataDir = "/home/student/.lecturelens/data"
	s.Embedding.APIKey = "AIzaSyTESTKEY1234"
	return &mockSettingsService{settings: s, setCalls: map[string]string{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setCalls[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"batch.size", "embedding.provider"}
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedConfig = []string{provider.String(), model, apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(_ domain.AIProvider, _, _ string) error {
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.embedErr
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.llmErr
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingest   *mockIngestService
	embed    *mockEmbedService
	query    *mockQueryService
	chat     *mockChatService
	session  *mockSessionService
	settings *mockSettingsService
}

var currentMocks *testServices

// setupTestServices installs fresh mocks and returns a cleanup func.
func setupTestServices() func() {
	currentMocks = &testServices{
		ingest:  &mockIngestService{},
		embed:   &mockEmbedService{},
		query:   &mockQueryService{},
		chat:    &mockChatService{},
		session: &mockSessionService{sessions: []domain.Session{{
			ID:              "session-1",
			CreatedAt:       time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
			UpdatedAt:       time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC),
			FilesProcessed:  1,
			DocumentCount:   1,
			RecordCount:     2,
			EmbeddingModel:  "text-embedding-004",
			Dimensions:      768,
			CourseStructure: domain.CourseStructure{"Biology": {"Week 1": {"01 Cells.srt"}}},
		}}},
		settings: newMockSettingsService(),
	}
	SetServices(Services{
		Ingest:   currentMocks.ingest,
		Embed:    currentMocks.embed,
		Query:    currentMocks.query,
		Chat:     currentMocks.chat,
		Session:  currentMocks.session,
		Settings: currentMocks.settings,
	})
	resetFlags()
	restoreTerminal := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }

	return func() {
		SetServices(Services{})
		resetFlags()
		stdinIsTerminal = restoreTerminal
		currentMocks = nil
	}
}

// resetFlags restores flag variables, which persist between Execute calls.
func resetFlags() {
	jsonOutput = false
	verboseFlag = false
	ingestNoRootName = false
	ingestEmbed = false
	queryTopK = 0
	queryShowContext = false
	sessionsDeleteForce = false
}

// execute runs the root command with args and returns its output.
func execute(args []string, stdin string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	var in io.Reader = strings.NewReader(stdin)
	rootCmd.SetIn(in)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
