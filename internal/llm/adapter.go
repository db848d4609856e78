package llm

import (
	"context"

	"github.com/dhabedank/cost-analyzer/internal/core"
)

// Provider names a hosted inference API.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Adapter is the interface all LLM adapters must implement.
// It satisfies core.Inferencer.
type Adapter interface {
	// Name returns the adapter identifier for logging.
	Name() string

	// Infer sends one chat-completion request and returns the top response text.
	// Failures are returned as *core.InferenceError.
	Infer(ctx context.Context, systemPrompt, userPrompt string, params core.InferenceParams) (string, error)
}

// Config holds configuration for LLM adapters.
type Config struct {
	// Provider selects the inference API.
	Provider Provider `yaml:"provider"`

	// Model specifies which model to use (optional, adapter chooses default).
	Model string `yaml:"model"`

	// BaseURL overrides the provider endpoint (proxies, compatible gateways).
	BaseURL string `yaml:"base_url"`

	// APIKey is supplied per request by the user and is never serialized.
	APIKey string `yaml:"-"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderOpenAI,
	}
}

// WithCredential returns a copy of c using apiKey.
func (c Config) WithCredential(apiKey string) Config {
	c.APIKey = apiKey
	return c
}

// resolveModel picks the request model over the configured one over the default.
func resolveModel(requested, configured, fallback string) string {
	if requested != "" {
		return requested
	}
	if configured != "" {
		return configured
	}
	return fallback
}
