package core

import (
	"fmt"
	"unicode/utf8"
)

// systemPromptFormat is the system instruction for cost analysis.
// %[1]s is the market whose prices fill gaps in the source data.
const systemPromptFormat = `You are a construction cost expert with knowledge of %[1]s market prices for building materials. Calculate total prices using quantity × unit price. When the data does not give a unit price, use current %[1]s market prices and state that you did.`

// userPromptFormat is the instruction template the flattened spreadsheet is
// appended to. It ends right where the data begins.
const userPromptFormat = `Analyze the provided construction data and create a detailed material breakdown with the following:

1. For each material/component found in the data:
   - Material description
   - Quantity (extract from data if available)
   - Unit of measurement
   - Unit price (use %[1]s market prices if not provided in data)
   - Total price (quantity × unit price)

2. Organize the analysis by categories:
   - Structural materials
   - Finishes materials
   - Technical installation materials
   - External works materials

3. Include:
   - Summary table with quantities and prices
   - Total project cost estimate
   - Cost per square meter (if area data available)
   - Notes on any assumptions made for missing prices

Excel Data:
`

// SystemPrompt returns the system instruction for the given price region.
func SystemPrompt(region string) string {
	return fmt.Sprintf(systemPromptFormat, regionOrDefault(region))
}

// Template returns the fixed instruction part of the user prompt.
func Template(region string) string {
	return fmt.Sprintf(userPromptFormat, regionOrDefault(region))
}

// Prompt is one assembled analysis request.
type Prompt struct {
	System    string
	User      string
	Truncated bool // the flattened document did not fit and was cut
}

// Chars counts the characters of both prompts.
func (p *Prompt) Chars() int {
	return utf8.RuneCountInString(p.System) + utf8.RuneCountInString(p.User)
}

// AssemblePrompt appends the head of the flattened document to the template.
//
// Only the first cfg.MaxChars characters (or tokens, with TruncateTokens) of
// doc are kept. The cut is hard: it ignores row and sentence boundaries, so
// the last line sent may be partial and everything after it is not analyzed.
func AssemblePrompt(doc string, cfg AnalysisConfig) (*Prompt, error) {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}

	var data string
	var truncated bool
	switch cfg.TruncateUnit {
	case TruncateTokens:
		var err error
		data, truncated, err = truncateTokens(doc, cfg.MaxChars, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("token-aware truncation failed: %w", err)
		}
	default:
		data, truncated = truncateChars(doc, cfg.MaxChars)
	}

	return &Prompt{
		System:    SystemPrompt(cfg.Region),
		User:      Template(cfg.Region) + data,
		Truncated: truncated,
	}, nil
}

// BuildUserPrompt returns only the user message of AssemblePrompt.
func BuildUserPrompt(doc string, cfg AnalysisConfig) (string, error) {
	prompt, err := AssemblePrompt(doc, cfg)
	if err != nil {
		return "", err
	}
	return prompt.User, nil
}

func regionOrDefault(region string) string {
	if region == "" {
		return DefaultRegion
	}
	return region
}
