package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONAdapter outputs the report with its metadata as JSON.
type JSONAdapter struct{}

func (a *JSONAdapter) Name() string        { return "json" }
func (a *JSONAdapter) FileName() string    { return "construction_cost_analysis.json" }
func (a *JSONAdapter) ContentType() string { return "application/json" }

func (a *JSONAdapter) Write(w io.Writer, report *Report) error {
	output, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	output = append(output, '\n')
	_, err = w.Write(output)
	return err
}
