package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/cost-analyzer/internal/core"
)

const analysisText = "## Summary\n\n| Material | Qty | Total |\n|---|---|---|\n| Cement | 10 | 120 EUR |\n\n<script>alert(1)</script>\n"

func testReport() *Report {
	cfg := core.DefaultAnalysisConfig()
	cfg.Model = "gpt-4"
	return NewReport("estimate.xlsx", []string{"Materials", "Labor"}, cfg, &core.Analysis{
		Prompt:   &core.Prompt{Truncated: true},
		Text:     analysisText,
		Provider: "openai-api",
		Duration: 2 * time.Second,
	})
}

func TestNewAdapter(t *testing.T) {
	tests := []struct {
		format   string
		wantName string
		wantErr  bool
	}{
		{"", "text", false},
		{"text", "text", false},
		{"json", "json", false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			a, err := NewAdapter(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, a.Name())
		})
	}
}

func TestTextAdapterWritesResultUntouched(t *testing.T) {
	a := &TextAdapter{}
	assert.Equal(t, "construction_cost_analysis.txt", a.FileName())
	assert.Equal(t, "text/plain", a.ContentType())

	var buf bytes.Buffer
	require.NoError(t, a.Write(&buf, testReport()))
	assert.Equal(t, analysisText, buf.String())
}

func TestJSONAdapter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONAdapter{}).Write(&buf, testReport()))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "estimate.xlsx", got["file_name"])
	assert.Equal(t, "gpt-4", got["model"])
	assert.Equal(t, "French", got["region"])
	assert.Equal(t, true, got["truncated"])
	assert.Equal(t, analysisText, got["analysis"])
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	where, err := Save(&TextAdapter{}, testReport(), Config{Path: path})
	require.NoError(t, err)
	assert.Equal(t, path, where)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, analysisText, string(data))
}

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown(analysisText)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "<h2>Summary</h2>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>Cement</td>")
	assert.False(t, strings.Contains(out, "<script>"), "raw HTML must not pass through")
}
