package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/cost-analyzer/internal/core"
)

const messageJSON = `{
  "id": "msg_01",
  "type": "message",
  "role": "assistant",
  "model": "claude-sonnet-4-20250514",
  "content": [
    {"type": "text", "text": "## Structural materials\n"},
    {"type": "text", "text": "| Cement | 10 | bag |"}
  ],
  "stop_reason": "end_turn",
  "stop_sequence": null,
  "usage": {"input_tokens": 12, "output_tokens": 9}
}`

func TestAnthropicInfer(t *testing.T) {
	var body map[string]interface{}
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		key = r.Header.Get("X-Api-Key")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(messageJSON))
	}))
	defer srv.Close()

	adapter, err := NewAnthropicAPIAdapter(Config{APIKey: "sk-ant-test", BaseURL: srv.URL})
	require.NoError(t, err)

	text, err := adapter.Infer(context.Background(), "system text", "user text",
		core.InferenceParams{Temperature: 0.3, MaxTokens: 2500})
	require.NoError(t, err)

	assert.Equal(t, "## Structural materials\n| Cement | 10 | bag |", text)
	assert.Equal(t, "sk-ant-test", key)
	assert.Equal(t, DefaultAnthropicModel, body["model"])
	assert.EqualValues(t, 2500, body["max_tokens"])
	assert.InDelta(t, 0.3, body["temperature"], 1e-9)
}

func TestAnthropicInferInvalidKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	adapter, err := NewAnthropicAPIAdapter(Config{APIKey: "sk-ant-bad", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = adapter.Infer(context.Background(), "s", "u", core.InferenceParams{})

	var inferenceErr *core.InferenceError
	require.True(t, errors.As(err, &inferenceErr))
	assert.Equal(t, core.KindAuth, inferenceErr.Kind)
	assert.Equal(t, "anthropic-api", inferenceErr.Provider)
}
