package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dhabedank/cost-analyzer/internal/core"
)

const (
	// TextFileName is the download name of the analysis.
	TextFileName = "construction_cost_analysis.txt"

	// TextMIME is the content type of the download.
	TextMIME = "text/plain"
)

// Report is one finished analysis with the context it was produced in.
type Report struct {
	FileName    string        `json:"file_name"`
	Sheets      []string      `json:"sheets"`
	Provider    string        `json:"provider"`
	Model       string        `json:"model,omitempty"`
	Region      string        `json:"region"`
	Truncated   bool          `json:"truncated"`
	Duration    time.Duration `json:"duration_ns"`
	GeneratedAt time.Time     `json:"generated_at"`
	Analysis    string        `json:"analysis"`
}

// NewReport builds a Report from a finished analysis.
func NewReport(fileName string, sheets []string, cfg core.AnalysisConfig, a *core.Analysis) *Report {
	return &Report{
		FileName:    fileName,
		Sheets:      sheets,
		Provider:    a.Provider,
		Model:       cfg.Model,
		Region:      cfg.Region,
		Truncated:   a.Prompt != nil && a.Prompt.Truncated,
		Duration:    a.Duration,
		GeneratedAt: time.Now().UTC(),
		Analysis:    a.Text,
	}
}

// Adapter is the interface all output adapters must implement.
type Adapter interface {
	// Name returns the adapter identifier, also the --output-format value.
	Name() string

	// FileName is the default file the report is saved as.
	FileName() string

	// ContentType is the MIME type of the written bytes.
	ContentType() string

	// Write serializes report to w.
	Write(w io.Writer, report *Report) error
}

// Config configures where a report goes.
type Config struct {
	// Path of the output file. Empty uses the adapter's FileName.
	Path string

	// Stdout writes the report to standard output instead of a file.
	Stdout bool
}

// NewAdapter returns the adapter for format.
func NewAdapter(format string) (Adapter, error) {
	switch format {
	case "", "text", "txt":
		return &TextAdapter{}, nil
	case "json":
		return &JSONAdapter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (text, json)", format)
	}
}

// Save writes report through a according to config and returns where it went.
func Save(a Adapter, report *Report, config Config) (string, error) {
	if config.Stdout {
		return "stdout", a.Write(os.Stdout, report)
	}

	path := config.Path
	if path == "" {
		path = a.FileName()
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := a.Write(f, report); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
