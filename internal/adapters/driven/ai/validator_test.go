package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

func TestNewConfigValidator(t *testing.T) {
	validator := NewConfigValidator()

	require.NotNil(t, validator)
}

func TestConfigValidator_ValidateEmbedding_NilConfig(t *testing.T) {
	validator := NewConfigValidator()

	// nil config returns nil (nothing to validate)
	assert.NoError(t, validator.ValidateEmbedding(nil))
}

func TestConfigValidator_ValidateEmbedding_UnconfiguredProvider(t *testing.T) {
	validator := NewConfigValidator()

	err := validator.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderGemini})

	// Missing API key means not configured, so nothing is pinged.
	assert.NoError(t, err)
}

func TestConfigValidator_ValidateEmbedding_NoEmbeddingAPI(t *testing.T) {
	validator := NewConfigValidator()

	err := validator.ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderAnthropic,
		APIKey:   "k",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigValidator_ValidateEmbedding_Reachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	validator := NewConfigValidator()

	assert.NoError(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  server.URL,
	}))
}

func TestConfigValidator_ValidateEmbedding_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	validator := NewConfigValidator()

	err := validator.ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  server.URL,
	})

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	validator := NewConfigValidator()

	assert.NoError(t, validator.ValidateLLM(nil))
	assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{Provider: "", Model: "test-model"}))

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := validator.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: url})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}
