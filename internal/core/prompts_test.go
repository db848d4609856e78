package core

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRequestsBreakdown(t *testing.T) {
	tmpl := Template("")

	for _, want := range []string{
		"Material description",
		"Quantity",
		"Unit of measurement",
		"Unit price (use French market prices",
		"Total price (quantity × unit price)",
		"Structural materials",
		"Finishes materials",
		"Technical installation materials",
		"External works materials",
		"Summary table",
		"Total project cost",
		"Cost per square meter",
		"assumptions made for missing prices",
	} {
		assert.Contains(t, tmpl, want)
	}
	assert.True(t, strings.HasSuffix(tmpl, "Excel Data:\n"))
}

func TestSystemPromptRegion(t *testing.T) {
	assert.Contains(t, SystemPrompt(""), "French market prices")
	assert.Contains(t, SystemPrompt("Belgian"), "Belgian market prices")
	assert.Contains(t, SystemPrompt(""), "quantity × unit price")
}

func TestAssemblePromptTruncation(t *testing.T) {
	tests := []struct {
		name          string
		doc           string
		maxChars      int
		wantData      string
		wantTruncated bool
	}{
		{"empty document", "", 10, "", false},
		{"shorter than cap", "Cement | 10", 100, "Cement | 10", false},
		{"exactly the cap", "abcdef", 6, "abcdef", false},
		{"hard cut mid row", "Cement | 10 | bag\nSand | m3\n", 12, "Cement | 10 ", true},
		{"multibyte characters", "Béton | 5 | m³\n", 9, "Béton | 5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAnalysisConfig()
			cfg.MaxChars = tt.maxChars

			prompt, err := AssemblePrompt(tt.doc, cfg)
			require.NoError(t, err)

			tmpl := Template(cfg.Region)
			assert.Equal(t, tmpl+tt.wantData, prompt.User)
			assert.Equal(t, tt.wantTruncated, prompt.Truncated)
			assert.LessOrEqual(t, utf8.RuneCountInString(prompt.User), utf8.RuneCountInString(tmpl)+tt.maxChars)
		})
	}
}

func TestAssemblePromptDefaultCap(t *testing.T) {
	doc := strings.Repeat("Gravel | 3 | t\n", 2000)
	cfg := DefaultAnalysisConfig()
	cfg.MaxChars = 0

	user, err := BuildUserPrompt(doc, cfg)
	require.NoError(t, err)
	assert.Equal(t, len(Template(DefaultRegion))+DefaultMaxChars, len(user))
}

func TestPromptChars(t *testing.T) {
	tests := []struct {
		name   string
		prompt Prompt
		want   int
	}{
		{"empty", Prompt{}, 0},
		{"ascii", Prompt{System: "abc", User: "de"}, 5},
		{"multibyte", Prompt{System: "m³", User: "Béton × 2"}, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.prompt.Chars())
		})
	}

	prompt, err := AssemblePrompt("Béton | 5 | m³\n", DefaultAnalysisConfig())
	require.NoError(t, err)
	assert.Less(t, prompt.Chars(), len(prompt.System)+len(prompt.User), "× and accents are one character each")
}

// wordCodec tokenizes on single spaces.
type wordCodec struct{}

func (wordCodec) Encode(text string, _ []string, _ []string) []int {
	words := strings.Split(text, " ")
	tokens := make([]int, len(words))
	for i := range words {
		tokens[i] = i
	}
	return tokens
}

func (wordCodec) Decode(tokens []int) string {
	return strings.Repeat("w ", len(tokens))
}

func TestAssemblePromptTokens(t *testing.T) {
	orig := codecForModel
	codecForModel = func(string) (tokenCodec, error) { return wordCodec{}, nil }
	defer func() { codecForModel = orig }()

	cfg := DefaultAnalysisConfig()
	cfg.TruncateUnit = TruncateTokens
	cfg.MaxChars = 3

	prompt, err := AssemblePrompt("a b", cfg)
	require.NoError(t, err)
	assert.False(t, prompt.Truncated)
	assert.True(t, strings.HasSuffix(prompt.User, "a b"))

	prompt, err = AssemblePrompt("a b c d e", cfg)
	require.NoError(t, err)
	assert.True(t, prompt.Truncated)
	assert.True(t, strings.HasSuffix(prompt.User, "w w w "))
}

func TestTruncateTokensEmbeddedEncodings(t *testing.T) {
	tests := []struct {
		name  string
		model string
	}{
		{"cl100k model", "gpt-4"},
		{"o200k model", "gpt-4o"},
		{"unknown model", "claude-3-5-haiku-20241022"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, cut, err := truncateTokens("hello world", 1, tt.model)
			require.NoError(t, err)
			assert.True(t, cut)
			assert.Equal(t, "hello", head)

			head, cut, err = truncateTokens("hello world", 2, tt.model)
			require.NoError(t, err)
			assert.False(t, cut)
			assert.Equal(t, "hello world", head)
		})
	}
}

func TestAnalysisConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AnalysisConfig)
		wantErr string
	}{
		{"defaults", func(*AnalysisConfig) {}, ""},
		{"zero max chars", func(c *AnalysisConfig) { c.MaxChars = 0 }, "max_chars"},
		{"negative max tokens", func(c *AnalysisConfig) { c.MaxTokens = -1 }, "max_tokens"},
		{"hot temperature", func(c *AnalysisConfig) { c.Temperature = 3 }, "temperature"},
		{"unknown unit", func(c *AnalysisConfig) { c.TruncateUnit = "lines" }, "truncate_unit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAnalysisConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
