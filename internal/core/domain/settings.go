package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is Google's Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderGemini || p == AIProviderOllama || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects where session artifacts are kept.
type StorageBackend string

// Available storage backends.
const (
	// StorageMemory keeps sessions in process memory only.
	StorageMemory StorageBackend = "memory"

	// StorageSQLite keeps sessions in a local SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageJSON keeps sessions as documents_<id>.json and embeddings_<id>.json files.
	StorageJSON StorageBackend = "json"

	// StoragePostgres keeps sessions in a PostgreSQL database.
	StoragePostgres StorageBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageMemory, StorageSQLite, StorageJSON, StoragePostgres:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// StorageSettings holds session store configuration.
type StorageSettings struct {
	// Backend is the session store implementation.
	Backend StorageBackend

	// DSN is the connection string (postgres only).
	DSN string

	// ArchiveRaw keeps a copy of uploaded subtitle bytes under the data directory.
	ArchiveRaw bool
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for Gemini/OpenAI).
	APIKey string

	// Dimensions requests a vector size where the provider supports it. Zero uses the model default.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for Gemini/OpenAI/Anthropic).
	APIKey string

	// Temperature controls randomness of answers.
	Temperature float64

	// MaxTokens caps the answer length.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// BatchSettings controls the embedding batch manager.
type BatchSettings struct {
	// Size is the number of documents per batch.
	Size int

	// ChunkSize is the maximum characters per embedding call.
	ChunkSize int

	// MaxRetries is how many times a rate-limited chunk is retried.
	MaxRetries int

	// ResumeByChunk skips individual chunks already embedded, not just whole documents.
	ResumeByChunk bool
}

// PacingSettings controls how embedding calls are spaced out.
type PacingSettings struct {
	// ItemDelay is slept after every embedding call.
	ItemDelay time.Duration

	// BatchDelay is slept after every batch.
	BatchDelay time.Duration

	// RequestsPerMinute enables a token bucket when positive.
	RequestsPerMinute float64

	// Burst is the token bucket size.
	Burst int

	// Backoff is the wait applied after a rate limit error without a retry hint.
	Backoff time.Duration
}

// QuerySettings holds retrieval defaults.
type QuerySettings struct {
	// TopK is the default number of results for a query.
	TopK int

	// ChatTopK is the number of results used to ground a chat answer.
	ChatTopK int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir is where local stores keep their files.
	DataDir string

	// Storage holds session store settings.
	Storage StorageSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Batch holds batch manager settings.
	Batch BatchSettings

	// Pacing holds rate limit settings.
	Pacing PacingSettings

	// Query holds retrieval settings.
	Query QuerySettings
}

// Defaults for the pipeline.
const (
	DefaultBatchSize   = 5
	DefaultChunkSize   = 25000
	DefaultMaxRetries  = 3
	DefaultTopK        = 5
	DefaultChatTopK    = 3
	DefaultItemDelay   = 2 * time.Second
	DefaultBatchDelay  = 5 * time.Second
	DefaultBackoff     = 60 * time.Second
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

// DefaultAppSettings returns settings with sensible defaults.
// Providers default to Gemini but stay unconfigured until an API key is supplied.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderGemini,
			Model:    DefaultEmbeddingModels()[AIProviderGemini],
		},
		LLM: LLMSettings{
			Provider:    AIProviderGemini,
			Model:       DefaultLLMModels()[AIProviderGemini],
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Batch: BatchSettings{
			Size:          DefaultBatchSize,
			ChunkSize:     DefaultChunkSize,
			MaxRetries:    DefaultMaxRetries,
			ResumeByChunk: true,
		},
		Pacing: PacingSettings{
			ItemDelay:  DefaultItemDelay,
			BatchDelay: DefaultBatchDelay,
			Burst:      1,
			Backoff:    DefaultBackoff,
		},
		Query: QuerySettings{
			TopK:     DefaultTopK,
			ChatTopK: DefaultChatTopK,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "text-embedding-004",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-2.5-flash",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Gemini models
		"text-embedding-004":   768,
		"gemini-embedding-001": 3072,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
