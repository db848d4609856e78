package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dhabedank/cost-analyzer/internal/core"
	"github.com/dhabedank/cost-analyzer/internal/llm"
	"github.com/dhabedank/cost-analyzer/internal/output"
	"github.com/dhabedank/cost-analyzer/internal/tui"
)

var (
	apiKey       string
	outputFormat string
	outputPath   string
	toStdout     bool
	dryRun       bool
)

// AnalyzeCmd runs the whole pipeline on one spreadsheet.
var AnalyzeCmd = &cobra.Command{
	Use:   "analyze <spreadsheet>",
	Short: "Analyze a construction spreadsheet and price its materials",
	Long: `Analyze a construction spreadsheet (xlsx, xlsm, xls or csv) with an LLM.

Every sheet is flattened to text, the head of that text is appended to the
cost analysis instructions, and the model's answer is saved as
construction_cost_analysis.txt. The answer includes a material breakdown by
category, a summary table, the total project cost and the assumptions made
for missing prices.

The API key comes from --api-key, the provider's environment variable
(OPENAI_API_KEY / ANTHROPIC_API_KEY) or a masked prompt. It is never saved.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	addAnalysisFlags(AnalyzeCmd)
	AnalyzeCmd.Flags().StringVar(&apiKey, "api-key", "", "API key (default: provider environment variable, then prompt)")
	AnalyzeCmd.Flags().StringVar(&outputFormat, "output-format", "text", "Output format (text/json)")
	AnalyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: construction_cost_analysis.txt or .json)")
	AnalyzeCmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the result instead of writing a file")
	AnalyzeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the prompt and cost estimate without calling the model")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]

	// Load config file (flags override config file values)
	if err := loadConfig(cmd); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, llmCfg, err := buildConfigs()
	if err != nil {
		return err
	}

	outAdapter, err := output.NewAdapter(outputFormat)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read spreadsheet: %w", err)
	}

	session := core.NewSession("cli", cfg, llm.Factory(llmCfg))
	defer session.Close()

	name := filepath.Base(path)
	if err := session.Load(name, data); err != nil {
		return err
	}
	printLoadSummary(session)

	prompt, err := core.AssemblePrompt(session.Document(), cfg)
	if err != nil {
		return err
	}
	estimate := tui.EstimateRequest(cfg.Model, prompt.Chars(), cfg.MaxTokens)
	fmt.Fprintf(os.Stderr, "Request: %s  %s\n", tui.ModelStyle.Render(cfg.Model), estimate)
	if prompt.Truncated {
		fmt.Fprintf(os.Stderr, "%s Only the first %d %s of the spreadsheet text are sent; later rows are not analyzed.\n",
			tui.WarningStyle.Render("!"), cfg.MaxChars, cfg.TruncateUnit)
	}

	if dryRun {
		fmt.Println(tui.TitleStyle.Render("System prompt"))
		fmt.Println(prompt.System)
		fmt.Println()
		fmt.Println(tui.TitleStyle.Render("User prompt"))
		fmt.Println(prompt.User)
		return nil
	}

	credential, err := resolveCredential(llmCfg.Provider)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	analysis, err := runAnalysis(ctx, session, credential, cfg.Model, utf8.RuneCountInString(prompt.User))
	if err != nil {
		return err
	}

	report := output.NewReport(name, session.Sheets(), cfg, analysis)
	where, err := output.Save(outAdapter, report, output.Config{Path: outputPath, Stdout: toStdout})
	if err != nil {
		return err
	}
	if !toStdout {
		fmt.Fprintf(os.Stderr, "%s Analysis written to %s\n", tui.SuccessStyle.Render("✓"), where)
	}
	return nil
}

func printLoadSummary(session *core.Session) {
	sheets := session.Sheets()
	fmt.Fprintf(os.Stderr, "File: %s  Sheets: %d  Text: %d characters\n",
		tui.SheetStyle.Render(session.FileName()), len(sheets), utf8.RuneCountInString(session.Document()))

	for _, msg := range sheetErrorLines(session.SheetErrors()) {
		fmt.Fprintf(os.Stderr, "%s skipped %s\n", tui.WarningStyle.Render("!"), msg)
	}
}

// runAnalysis calls the model, with a spinner when attached to a terminal.
func runAnalysis(ctx context.Context, session *core.Session, credential, model string, inputChars int) (*core.Analysis, error) {
	var analysis *core.Analysis
	work := func(ctx context.Context) error {
		var err error
		analysis, err = session.Analyze(ctx, credential)
		return err
	}

	if isatty.IsTerminal(os.Stderr.Fd()) {
		err := tui.RunWithSpinner(ctx, "Analyzing costs", model, inputChars, work)
		if errors.Is(err, tui.ErrInterrupted) {
			return nil, fmt.Errorf("analysis %w", err)
		}
		if err != nil {
			return nil, err
		}
	} else {
		fmt.Fprintln(os.Stderr, tui.RenderStepStart("Analyzing costs", model, inputChars))
		start := time.Now()
		if err := work(ctx); err != nil {
			return nil, err
		}
		fmt.Fprintln(os.Stderr, tui.RenderStepComplete("Analyzing costs", time.Since(start), inputChars, utf8.RuneCountInString(analysis.Text), model))
	}
	return analysis, nil
}

// resolveCredential takes the key from --api-key, the environment, or a
// masked prompt when stdin is a terminal.
func resolveCredential(provider llm.Provider) (string, error) {
	if apiKey != "" {
		return apiKey, nil
	}
	if key := llm.APIKeyFromEnv(provider); key != "" {
		return key, nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return "", errNoCredential(provider)
	}

	key, err := tui.PromptSecret(fmt.Sprintf("%s API key", provider))
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", errNoCredential(provider)
	}
	return key, nil
}
