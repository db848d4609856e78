package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhabedank/cost-analyzer/internal/core"
)

// ModelInfo describes an available model.
type ModelInfo struct {
	ID          string   // Model identifier (e.g., "gpt-4")
	Name        string   // Human-readable name (e.g., "GPT-4")
	Description string   // Brief description
	Provider    Provider // Provider serving the model
}

// openAIModels lists chat models offered in setup.
var openAIModels = []ModelInfo{
	{ID: "gpt-4", Name: "GPT-4", Description: "Default analysis model ($30/$60 per MTok)", Provider: ProviderOpenAI},
	{ID: "gpt-4-turbo", Name: "GPT-4 Turbo", Description: "Larger context, cheaper than GPT-4 ($10/$30 per MTok)", Provider: ProviderOpenAI},
	{ID: "gpt-4o", Name: "GPT-4o", Description: "Fast multimodal model ($2.50/$10 per MTok)", Provider: ProviderOpenAI},
	{ID: "gpt-4o-mini", Name: "GPT-4o Mini", Description: "Most cost-effective ($0.15/$0.60 per MTok)", Provider: ProviderOpenAI},
}

// anthropicModels lists Claude models offered in setup.
var anthropicModels = []ModelInfo{
	{ID: "claude-sonnet-4-20250514", Name: "Claude Sonnet 4", Description: "Balanced speed and capability ($3/$15 per MTok)", Provider: ProviderAnthropic},
	{ID: "claude-opus-4-20250514", Name: "Claude Opus 4", Description: "Maximum intelligence ($15/$75 per MTok)", Provider: ProviderAnthropic},
	{ID: "claude-3-5-haiku-20241022", Name: "Claude 3.5 Haiku", Description: "Fastest, lowest cost ($0.80/$4 per MTok)", Provider: ProviderAnthropic},
}

// Providers lists the supported providers, default first.
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderAnthropic}
}

// ParseProvider resolves a provider name, case-insensitively.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case ProviderOpenAI, ProviderAnthropic:
		return p, nil
	case "":
		return DefaultConfig().Provider, nil
	default:
		return "", fmt.Errorf("unknown provider %q (supported: openai, anthropic)", name)
	}
}

// ModelsFor returns the catalog of a provider.
func ModelsFor(p Provider) []ModelInfo {
	switch p {
	case ProviderAnthropic:
		return anthropicModels
	default:
		return openAIModels
	}
}

// AllModels returns a flat list of all known models, default provider first.
func AllModels() []ModelInfo {
	var result []ModelInfo
	for _, p := range Providers() {
		result = append(result, ModelsFor(p)...)
	}
	return result
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(p Provider) string {
	if p == ProviderAnthropic {
		return DefaultAnthropicModel
	}
	return DefaultOpenAIModel
}

// APIKeyEnv is the environment variable holding the key for p.
func APIKeyEnv(p Provider) string {
	if p == ProviderAnthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// APIKeyFromEnv reads the key for p from the environment.
func APIKeyFromEnv(p Provider) string {
	return strings.TrimSpace(os.Getenv(APIKeyEnv(p)))
}

// NewAdapter builds the adapter for config.Provider.
func NewAdapter(config Config) (Adapter, error) {
	switch config.Provider {
	case ProviderAnthropic:
		return NewAnthropicAPIAdapter(config)
	case ProviderOpenAI, "":
		return NewOpenAIAPIAdapter(config)
	default:
		return nil, fmt.Errorf("unknown provider %q", config.Provider)
	}
}

// Factory returns a core.InferencerFactory that builds adapters from config
// with the credential supplied at trigger time.
func Factory(config Config) core.InferencerFactory {
	return func(credential string) (core.Inferencer, error) {
		adapter, err := NewAdapter(config.WithCredential(credential))
		if err != nil {
			return nil, err
		}
		return adapter, nil
	}
}
