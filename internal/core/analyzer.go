package core

import (
	"context"
	"strings"
	"time"
)

// Inferencer is the narrow interface the pipeline needs from an inference
// backend. This matches llm.Adapter but is defined here to avoid import cycles.
type Inferencer interface {
	// Name returns the provider identifier for logging.
	Name() string

	// Infer sends one chat-completion request and returns the top response text.
	Infer(ctx context.Context, systemPrompt, userPrompt string, params InferenceParams) (string, error)
}

// InferencerFactory builds an Inferencer for a user-supplied credential.
type InferencerFactory func(credential string) (Inferencer, error)

// Analysis is the outcome of one successful analysis request.
type Analysis struct {
	Prompt   *Prompt
	Text     string // opaque model output, never parsed
	Provider string
	Duration time.Duration
}

// Analyze assembles the prompt for doc and runs a single inference call.
// There is no retry. Any failure is returned as an *InferenceError.
func Analyze(ctx context.Context, inf Inferencer, doc string, cfg AnalysisConfig) (*Analysis, error) {
	prompt, err := AssemblePrompt(doc, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := inf.Infer(ctx, prompt.System, prompt.User, cfg.Params())
	if err != nil {
		return nil, asInferenceError(inf.Name(), err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, &InferenceError{Provider: inf.Name(), Kind: KindEmptyResponse, Err: errEmptyResponse}
	}

	return &Analysis{
		Prompt:   prompt,
		Text:     text,
		Provider: inf.Name(),
		Duration: time.Since(start),
	}, nil
}
