package driving

import "github.com/custodia-labs/lecturelens/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	// Missing values fall back to environment variables, then defaults.
	Get() (*domain.AppSettings, error)

	// Set stores a single setting by key.
	// Returns domain.ErrInvalidInput for unknown keys or malformed values.
	Set(key, value string) error

	// Keys returns every key accepted by Set.
	Keys() []string

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
