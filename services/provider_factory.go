// services/provider_factory.go
package services

import (
	"strings"

	"github.com/geo-agent/geo-workflows/internal/config"
)

// NewProviderForModel selects a provider implementation from the model name.
// Model names with a colon tag (llama3:8b) are Ollama models.
func NewProviderForModel(cfg *config.Config, model string, costService CostService) AIProvider {
	name := strings.ToLower(model)

	switch {
	case strings.Contains(name, "claude") || strings.Contains(name, "sonnet") ||
		strings.Contains(name, "opus") || strings.Contains(name, "haiku"):
		return NewAnthropicProvider(cfg, model, costService)
	case strings.Contains(name, "sonar") || strings.Contains(name, "perplexity"):
		return NewPerplexityProvider(cfg, model, costService)
	case strings.Contains(name, ":") || strings.Contains(name, "llama") ||
		strings.Contains(name, "mistral") || strings.Contains(name, "ollama"):
		return NewOllamaProvider(cfg, model, costService)
	default:
		// GPT family and anything unrecognized
		return NewOpenAIProvider(cfg, model, costService)
	}
}
