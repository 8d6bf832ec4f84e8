package ai

import (
	"fmt"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings by pinging the provider they describe.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding pings the embedding provider.
// A provider without an embedding API is rejected before any request is made.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config != nil && config.Provider.IsValid() && !config.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: %s has no embedding API", domain.ErrInvalidInput, config.Provider)
	}
	if err := ValidateEmbeddingConfig(config); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// ValidateLLM pings the LLM provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if err := ValidateLLMConfig(config); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return nil
}
