package tui

import (
	"math"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name     string
		chars    int
		expected int
	}{
		{"empty", 0, 0},
		{"negative", -10, 0},
		{"one row", 40, 10},
		{"default cap", 12000, 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EstimateTokens(tt.chars)
			if result != tt.expected {
				t.Errorf("EstimateTokens(%d) = %d, want %d", tt.chars, result, tt.expected)
			}
		})
	}
}

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name         string
		model        string
		inputTokens  int
		outputTokens int
		want         float64
	}{
		{"gpt-4", "gpt-4", 1000, 500, 0.06},
		{"gpt-4o mini", "gpt-4o-mini", 1000, 500, 0.00045},
		{"claude sonnet 4", "claude-sonnet-4-20250514", 1000, 500, 0.0105},
		{"unknown model uses default", "unknown-model", 1000, 500, 0.025},
		{"zero tokens", "gpt-4", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EstimateCost(tt.model, tt.inputTokens, tt.outputTokens)
			if math.Abs(result-tt.want) > 1e-9 {
				t.Errorf("EstimateCost(%s, %d, %d) = %f, want %f",
					tt.model, tt.inputTokens, tt.outputTokens, result, tt.want)
			}
		})
	}
}

func TestEstimateRequest(t *testing.T) {
	e := EstimateRequest("gpt-4", 12000, 2500)

	if e.InputTokens != 3000 {
		t.Errorf("InputTokens = %d, want 3000", e.InputTokens)
	}
	if e.OutputTokens != 2500 {
		t.Errorf("OutputTokens = %d, want 2500", e.OutputTokens)
	}
	if want := 0.09 + 0.15; math.Abs(e.Cost-want) > 1e-9 {
		t.Errorf("Cost = %f, want %f", e.Cost, want)
	}
}

func TestFormatCost(t *testing.T) {
	tests := []struct {
		name     string
		cost     float64
		expected string
	}{
		{"tiny", 0.0001, "$0.0001"},
		{"small", 0.005, "$0.005"},
		{"medium", 0.05, "$0.05"},
		{"large", 1.50, "$1.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatCost(tt.cost)
			if result != tt.expected {
				t.Errorf("FormatCost(%f) = %s, want %s", tt.cost, result, tt.expected)
			}
		})
	}
}

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		name     string
		tokens   int
		expected string
	}{
		{"small", 500, "500"},
		{"thousand", 2500, "2.5k"},
		{"large", 15000, "15k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatTokens(tt.tokens)
			if result != tt.expected {
				t.Errorf("FormatTokens(%d) = %s, want %s", tt.tokens, result, tt.expected)
			}
		})
	}
}
