package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir         = "data_dir"
	keyStorageBackend  = "storage.backend"
	keyStorageDSN      = "storage.dsn"
	keyArchiveRaw      = "storage.archive_raw"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMTemperature  = "llm.temperature"
	keyLLMMaxTokens    = "llm.max_tokens"
	keyBatchSize       = "batch.size"
	keyBatchChunkSize  = "batch.chunk_size"
	keyBatchMaxRetries = "batch.max_retries"
	keyBatchResume     = "batch.resume_by_chunk"
	keyItemDelayMS     = "pacing.item_delay_ms"
	keyBatchDelayMS    = "pacing.batch_delay_ms"
	keyRequestsPerMin  = "pacing.requests_per_minute"
	keyBurst           = "pacing.burst"
	keyBackoffSeconds  = "pacing.backoff_seconds"
	keyQueryTopK       = "query.top_k"
	keyChatTopK        = "chat.top_k"
)

// valueKind is how a config value is parsed by Set.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindProvider
	kindBackend
)

var settingKinds = map[string]valueKind{
	keyDataDir:         kindString,
	keyStorageBackend:  kindBackend,
	keyStorageDSN:      kindString,
	keyArchiveRaw:      kindBool,
	keyEmbedProvider:   kindProvider,
	keyEmbedModel:      kindString,
	keyEmbedBaseURL:    kindString,
	keyEmbedAPIKey:     kindString,
	keyEmbedDims:       kindInt,
	keyLLMProvider:     kindProvider,
	keyLLMModel:        kindString,
	keyLLMBaseURL:      kindString,
	keyLLMAPIKey:       kindString,
	keyLLMTemperature:  kindFloat,
	keyLLMMaxTokens:    kindInt,
	keyBatchSize:       kindInt,
	keyBatchChunkSize:  kindInt,
	keyBatchMaxRetries: kindInt,
	keyBatchResume:     kindBool,
	keyItemDelayMS:     kindInt,
	keyBatchDelayMS:    kindInt,
	keyRequestsPerMin:  kindFloat,
	keyBurst:           kindInt,
	keyBackoffSeconds:  kindInt,
	keyQueryTopK:       kindInt,
	keyChatTopK:        kindInt,
}

// Environment variables consulted when no API key is configured.
var apiKeyEnv = map[domain.AIProvider][]string{
	domain.AIProviderGemini:    {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
	domain.AIProviderOpenAI:    {"OPENAI_API_KEY"},
	domain.AIProviderAnthropic: {"ANTHROPIC_API_KEY"},
}

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore    driven.ConfigStore
	aiValidator    driven.AIConfigValidator
	getenv         func(string) string
	defaultDataDir string
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithGetenv replaces os.Getenv for environment fallbacks.
func WithGetenv(fn func(string) string) SettingsOption {
	return func(s *SettingsService) {
		if fn != nil {
			s.getenv = fn
		}
	}
}

// WithDefaultDataDir sets the data directory used when data_dir is not configured.
func WithDefaultDataDir(dir string) SettingsOption {
	return func(s *SettingsService) {
		s.defaultDataDir = dir
	}
}

// NewSettingsService creates a new settings service.
func NewSettingsService(
	configStore driven.ConfigStore,
	aiValidator driven.AIConfigValidator,
	opts ...SettingsOption,
) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	settings := &domain.AppSettings{
		DataDir: s.getString(keyDataDir, s.defaultDataDir),
		Storage: domain.StorageSettings{
			Backend:    s.getBackend(defaults.Storage.Backend),
			DSN:        s.configStore.GetString(keyStorageDSN),
			ArchiveRaw: s.getBool(keyArchiveRaw, defaults.Storage.ArchiveRaw),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   embedProvider,
			Model:      s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:     s.apiKey(keyEmbedAPIKey, embedProvider),
			Dimensions: s.getInt(keyEmbedDims, defaults.Embedding.Dimensions),
		},
		LLM: domain.LLMSettings{
			Provider:    llmProvider,
			Model:       s.getString(keyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.apiKey(keyLLMAPIKey, llmProvider),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			MaxTokens:   s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
		},
		Batch: domain.BatchSettings{
			Size:          s.getInt(keyBatchSize, defaults.Batch.Size),
			ChunkSize:     s.getInt(keyBatchChunkSize, defaults.Batch.ChunkSize),
			MaxRetries:    s.getInt(keyBatchMaxRetries, defaults.Batch.MaxRetries),
			ResumeByChunk: s.getBool(keyBatchResume, defaults.Batch.ResumeByChunk),
		},
		Pacing: domain.PacingSettings{
			ItemDelay:         s.getDuration(keyItemDelayMS, time.Millisecond, defaults.Pacing.ItemDelay),
			BatchDelay:        s.getDuration(keyBatchDelayMS, time.Millisecond, defaults.Pacing.BatchDelay),
			RequestsPerMinute: s.getFloat(keyRequestsPerMin, defaults.Pacing.RequestsPerMinute),
			Burst:             s.getInt(keyBurst, defaults.Pacing.Burst),
			Backoff:           s.getDuration(keyBackoffSeconds, time.Second, defaults.Pacing.Backoff),
		},
		Query: domain.QuerySettings{
			TopK:     s.getInt(keyQueryTopK, defaults.Query.TopK),
			ChatTopK: s.getInt(keyChatTopK, defaults.Query.ChatTopK),
		},
	}

	if settings.Embedding.Provider.IsLocal() && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaultOllamaURL
	}
	if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultOllamaURL
	}

	return settings, nil
}

// Keys returns every key accepted by Set, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set parses value according to key and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var stored any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		stored = f
	case kindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		stored = b
	case kindProvider:
		p := domain.AIProvider(strings.ToLower(strings.TrimSpace(value)))
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
		if key == keyEmbedProvider && !p.SupportsEmbeddings() {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, p)
		}
		stored = p.String()
	case kindBackend:
		b := domain.StorageBackend(strings.ToLower(strings.TrimSpace(value)))
		if !b.IsValid() {
			return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, value)
		}
		stored = b.String()
	default:
		stored = value
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	baseURL := ""
	if provider.IsLocal() {
		baseURL = s.getString(keyEmbedBaseURL, defaultOllamaURL)
	}

	if err := s.configStore.Set(keyEmbedProvider, provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, baseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if err := s.configStore.Set(keyEmbedAPIKey, apiKey); err != nil {
		return fmt.Errorf("save embedding api_key: %w", err)
	}

	// A new model may have a different vector size.
	if _, exists := s.configStore.Get(keyEmbedDims); exists {
		if err := s.configStore.Set(keyEmbedDims, 0); err != nil {
			return fmt.Errorf("save embedding dimensions: %w", err)
		}
	}
	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	baseURL := ""
	if provider.IsLocal() {
		baseURL = s.getString(keyLLMBaseURL, defaultOllamaURL)
	}

	if err := s.configStore.Set(keyLLMProvider, provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, baseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
		return fmt.Errorf("save llm api_key: %w", err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	defaults := domain.DefaultAppSettings()
	defaults.DataDir = s.defaultDataDir
	return defaults
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, unit, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return time.Duration(s.configStore.GetInt(key)) * unit
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

// apiKey returns the configured key, falling back to the provider's environment variables.
func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return s.envKey(provider)
}

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	for _, name := range apiKeyEnv[provider] {
		if val := s.getenv(name); val != "" {
			return val
		}
	}
	return ""
}
