package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/dhabedank/cost-analyzer/internal/core"
	"github.com/dhabedank/cost-analyzer/internal/tui"
)

var previewSheet string

// PreviewCmd shows what the analysis would read from a spreadsheet.
var PreviewCmd = &cobra.Command{
	Use:   "preview <spreadsheet>",
	Short: "Show the sheets and extracted text of a spreadsheet",
	Long: `Show the first rows of every sheet and the text extracted for the model.

Use --sheet to print one sheet in full.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	PreviewCmd.Flags().StringVar(&previewSheet, "sheet", "", "Print this sheet in full")
	PreviewCmd.Flags().BoolVar(&noHeader, "no-header", false, "Treat the first row of each sheet as data")
	addPreviewFlags(PreviewCmd)
	addConfigFlag(PreviewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read spreadsheet: %w", err)
	}

	cfg := core.DefaultAnalysisConfig()
	cfg.NoHeader = noHeader
	session := core.NewSession("preview", cfg, nil)
	defer session.Close()

	if err := session.Load(filepath.Base(args[0]), data); err != nil {
		return err
	}
	printLoadSummary(session)

	if previewSheet != "" {
		table, err := session.Preview(previewSheet, 0)
		if err != nil {
			return err
		}
		fmt.Println(tui.SheetStyle.Render(table.Sheet))
		fmt.Println(tui.RenderSheetTable(table))
		return nil
	}

	fmt.Println()
	fmt.Println(tui.TitleStyle.Render("Sheets overview"))
	for _, name := range session.Sheets() {
		table, err := session.Preview(name, previewRows)
		if err != nil {
			fmt.Printf("%s %v\n", tui.ErrorStyle.Render("✗"), err)
			continue
		}
		fmt.Println(tui.RenderSheetHeading(name, table.NumRows()))
		fmt.Println(tui.RenderSheetTable(table))
	}

	fmt.Println()
	fmt.Println(tui.TitleStyle.Render("Extracted text"))
	fmt.Println(tui.BoxStyle.Render(core.RawPreview(session.Document(), rawTextPreview)))
	return nil
}

// sheetErrorLines flattens the per-sheet errors of a load.
func sheetErrorLines(err error) []string {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return []string{err.Error()}
	}
	lines := make([]string, len(merr.Errors))
	for i, e := range merr.Errors {
		lines[i] = e.Error()
	}
	return lines
}
