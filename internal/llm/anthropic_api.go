package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dhabedank/cost-analyzer/internal/core"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicAPIAdapter uses the Anthropic Messages API.
type AnthropicAPIAdapter struct {
	client anthropic.Client
	model  string
}

// NewAnthropicAPIAdapter creates an Anthropic API adapter.
func NewAnthropicAPIAdapter(config Config) (*AnthropicAPIAdapter, error) {
	if config.APIKey == "" {
		return nil, core.ErrMissingCredential
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &AnthropicAPIAdapter{
		client: anthropic.NewClient(opts...),
		model:  resolveModel("", config.Model, DefaultAnthropicModel),
	}, nil
}

func (a *AnthropicAPIAdapter) Name() string {
	return "anthropic-api"
}

func (a *AnthropicAPIAdapter) Infer(ctx context.Context, systemPrompt, userPrompt string, params core.InferenceParams) (string, error) {
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = core.DefaultMaxTokens
	}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(resolveModel(params.Model, a.model, DefaultAnthropicModel)),
		MaxTokens: int64(maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
		Temperature: anthropic.Float(params.Temperature),
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", core.NewInferenceError(a.Name(), apiErr.StatusCode, fmt.Errorf("anthropic API error: %w", err))
		}
		return "", core.NewInferenceError(a.Name(), 0, err)
	}

	// Extract text from response
	var output strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			output.WriteString(block.Text)
		}
	}
	return output.String(), nil
}
