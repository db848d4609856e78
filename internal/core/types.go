package core

import (
	"fmt"
	"time"
)

// TruncateUnit selects how the flattened document is cut before prompting.
type TruncateUnit string

const (
	TruncateChars  TruncateUnit = "chars"  // first K characters (runes)
	TruncateTokens TruncateUnit = "tokens" // first K model tokens
)

// AnalysisConfig configures prompt assembly and the inference call.
type AnalysisConfig struct {
	Model        string        `json:"model"`         // Provider default when empty
	Temperature  float64       `json:"temperature"`   // Default: 0.3
	MaxTokens    int           `json:"max_tokens"`    // Output cap, default: 2500
	MaxChars     int           `json:"max_chars"`     // K, default: 12000
	TruncateUnit TruncateUnit  `json:"truncate_unit"` // chars/tokens
	Region       string        `json:"region"`        // Market used for missing prices, default: French
	NoHeader     bool          `json:"no_header"`     // First row is data, not column names
	Timeout      time.Duration `json:"timeout"`       // 0 leaves it to the transport
}

// InferenceParams are the generation parameters of one inference call.
type InferenceParams struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 2500
	DefaultMaxChars    = 12000
	DefaultRegion      = "French"

	DefaultPreviewRows     = 5    // head rows per sheet in the overview
	DefaultRawPreviewChars = 5000 // raw flattened text shown before "..."
)

// DefaultAnalysisConfig returns the settings the tool ships with.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Temperature:  DefaultTemperature,
		MaxTokens:    DefaultMaxTokens,
		MaxChars:     DefaultMaxChars,
		TruncateUnit: TruncateChars,
		Region:       DefaultRegion,
	}
}

// Params returns the generation parameters for the inference call.
func (c AnalysisConfig) Params() InferenceParams {
	return InferenceParams{
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}
}

// Validate checks the configuration for values the pipeline cannot use.
func (c AnalysisConfig) Validate() error {
	if c.MaxChars <= 0 {
		return &ConfigError{Field: "max_chars", Message: "must be positive"}
	}
	if c.MaxTokens <= 0 {
		return &ConfigError{Field: "max_tokens", Message: "must be positive"}
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return &ConfigError{Field: "temperature", Message: "must be between 0 and 2"}
	}
	switch c.TruncateUnit {
	case TruncateChars, TruncateTokens, "":
	default:
		return &ConfigError{Field: "truncate_unit", Message: fmt.Sprintf("unknown unit %q (chars/tokens)", c.TruncateUnit)}
	}
	if c.Timeout < 0 {
		return &ConfigError{Field: "timeout", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s - %s", e.Field, e.Message)
}
