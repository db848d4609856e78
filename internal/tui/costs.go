package tui

import "fmt"

// Pricing is the USD price per 1M tokens of a model.
type Pricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// ModelPricing contains pricing per 1M tokens for the models offered in setup.
var ModelPricing = map[string]Pricing{
	// OpenAI
	"gpt-4":       {InputPer1M: 30.0, OutputPer1M: 60.0},
	"gpt-4-turbo": {InputPer1M: 10.0, OutputPer1M: 30.0},
	"gpt-4o":      {InputPer1M: 2.5, OutputPer1M: 10.0},
	"gpt-4o-mini": {InputPer1M: 0.15, OutputPer1M: 0.60},

	// Anthropic
	"claude-sonnet-4-20250514":  {InputPer1M: 3.0, OutputPer1M: 15.0},
	"claude-opus-4-20250514":    {InputPer1M: 15.0, OutputPer1M: 75.0},
	"claude-3-5-haiku-20241022": {InputPer1M: 0.80, OutputPer1M: 4.0},

	// Fallback for unknown models (use conservative estimate)
	"default": {InputPer1M: 10.0, OutputPer1M: 30.0},
}

// Estimate is the expected size and worst-case cost of one analysis request.
type Estimate struct {
	Model        string
	InputTokens  int
	OutputTokens int // the max tokens cap, not a prediction
	Cost         float64
}

// EstimateTokens estimates token count from character count.
// Uses the approximation that 1 token ≈ 4 characters.
func EstimateTokens(chars int) int {
	if chars <= 0 {
		return 0
	}
	return chars / 4
}

// EstimateCost calculates the estimated cost in USD for a model.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := ModelPricing[model]
	if !ok {
		pricing = ModelPricing["default"]
	}
	return float64(inputTokens)*pricing.InputPer1M/1_000_000 +
		float64(outputTokens)*pricing.OutputPer1M/1_000_000
}

// EstimateRequest sizes a request whose prompts total promptChars characters
// and whose output is capped at maxOutputTokens.
func EstimateRequest(model string, promptChars, maxOutputTokens int) Estimate {
	in := EstimateTokens(promptChars)
	return Estimate{
		Model:        model,
		InputTokens:  in,
		OutputTokens: maxOutputTokens,
		Cost:         EstimateCost(model, in, maxOutputTokens),
	}
}

// String renders the estimate on one line.
func (e Estimate) String() string {
	return fmt.Sprintf("~%s in / ≤%s out  up to %s",
		FormatTokens(e.InputTokens),
		FormatTokens(e.OutputTokens),
		CostStyle.Render(FormatCost(e.Cost)),
	)
}

// FormatCost formats a cost in USD for display.
func FormatCost(cost float64) string {
	switch {
	case cost < 0.001:
		return fmt.Sprintf("$%.4f", cost)
	case cost < 0.01:
		return fmt.Sprintf("$%.3f", cost)
	default:
		return fmt.Sprintf("$%.2f", cost)
	}
}

// FormatTokens formats a token count for display.
// Uses k suffix for thousands.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	if tokens < 10000 {
		return fmt.Sprintf("%.1fk", float64(tokens)/1000)
	}
	return fmt.Sprintf("%dk", tokens/1000)
}
