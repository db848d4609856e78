package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/cost-analyzer/internal/core"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    Provider
		wantErr bool
	}{
		{"", ProviderOpenAI, false},
		{"openai", ProviderOpenAI, false},
		{" Anthropic ", ProviderAnthropic, false},
		{"mistral", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProvider(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewAdapter(t *testing.T) {
	a, err := NewAdapter(Config{Provider: ProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai-api", a.Name())

	a, err = NewAdapter(Config{Provider: ProviderAnthropic, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic-api", a.Name())

	_, err = NewAdapter(Config{Provider: "mistral", APIKey: "k"})
	assert.Error(t, err)
}

func TestFactoryUsesTriggerCredential(t *testing.T) {
	factory := Factory(Config{Provider: ProviderOpenAI})

	_, err := factory("")
	assert.ErrorIs(t, err, core.ErrMissingCredential)

	inf, err := factory("sk-test")
	require.NoError(t, err)
	assert.Equal(t, "openai-api", inf.Name())
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", " sk-env \n")
	t.Setenv("ANTHROPIC_API_KEY", "")

	assert.Equal(t, "sk-env", APIKeyFromEnv(ProviderOpenAI))
	assert.Equal(t, "", APIKeyFromEnv(ProviderAnthropic))
}

func TestModelCatalog(t *testing.T) {
	for _, p := range Providers() {
		models := ModelsFor(p)
		require.NotEmpty(t, models)
		assert.Equal(t, DefaultModel(p), models[0].ID, "default model listed first for %s", p)
		for _, m := range models {
			assert.Equal(t, p, m.Provider)
		}
	}
	assert.Len(t, AllModels(), len(openAIModels)+len(anthropicModels))
}
