package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dhabedank/cost-analyzer/internal/core"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4"

// OpenAIAPIAdapter calls the OpenAI chat completions API.
type OpenAIAPIAdapter struct {
	client openai.Client
	model  string
}

// NewOpenAIAPIAdapter creates an OpenAI API adapter.
func NewOpenAIAPIAdapter(config Config) (*OpenAIAPIAdapter, error) {
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

	return &OpenAIAPIAdapter{
		client: openai.NewClient(opts...),
		model:  resolveModel("", config.Model, DefaultOpenAIModel),
	}, nil
}

func (a *OpenAIAPIAdapter) Name() string {
	return "openai-api"
}

func (a *OpenAIAPIAdapter) Infer(ctx context.Context, systemPrompt, userPrompt string, params core.InferenceParams) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(resolveModel(params.Model, a.model, DefaultOpenAIModel)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(params.Temperature),
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = openai.Int(int64(params.MaxTokens))
	}

	resp, err := a.client.Chat.Completions.New(ctx, req)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", core.NewInferenceError(a.Name(), apiErr.StatusCode, fmt.Errorf("openai API error: %w", err))
		}
		return "", core.NewInferenceError(a.Name(), 0, err)
	}

	// Only the top choice is used.
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
