package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dhabedank/cost-analyzer/internal/llm"
	"github.com/dhabedank/cost-analyzer/internal/tui"
	"github.com/dhabedank/cost-analyzer/internal/web"
)

var (
	listenAddr  string
	maxUploadMB int
	maxSessions int
	logLevel    string
	logFile     string
	logJSON     bool
)

// ServeCmd runs the browser front end.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload and analysis page",
	Long: `Serve a web page to upload a construction spreadsheet, inspect its sheets
and the extracted text, run the cost analysis and download the result.

Each browser gets its own session. The API key is typed on the page for each
analysis; it is kept in memory for the duration of the request only.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	addAnalysisFlags(ServeCmd)
	addPreviewFlags(ServeCmd)
	f := ServeCmd.Flags()
	f.StringVar(&listenAddr, "listen", web.DefaultListen, "Address to listen on")
	f.IntVar(&maxUploadMB, "max-upload-mb", web.DefaultMaxUploadMB, "Largest accepted upload in MiB")
	f.IntVar(&maxSessions, "max-sessions", web.DefaultMaxSessions, "Sessions kept in memory before the oldest is dropped")
	f.StringVar(&logLevel, "log-level", "info", "Log level (debug/info/warn/error)")
	f.StringVar(&logFile, "log-file", "", "Write logs to this file, rotated (default: stderr)")
	f.BoolVar(&logJSON, "log-json", false, "Log as JSON")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, llmCfg, err := buildConfigs()
	if err != nil {
		return err
	}

	log, closer, err := web.NewLogger(web.LogConfig{Level: logLevel, File: logFile, JSON: logJSON})
	if err != nil {
		return err
	}
	defer closer.Close()

	srv, err := web.NewServer(web.Config{
		Listen:          listenAddr,
		MaxUploadBytes:  int64(maxUploadMB) << 20,
		MaxSessions:     maxSessions,
		PreviewRows:     previewRows,
		RawPreviewChars: rawTextPreview,
		Provider:        string(llmCfg.Provider),
		Analysis:        cfg,
	}, llm.Factory(llmCfg), log)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%s Serving on %s  provider %s  model %s\n",
		tui.SuccessStyle.Render("✓"),
		tui.SheetStyle.Render("http://"+listenAddr),
		llmCfg.Provider,
		tui.ModelStyle.Render(cfg.Model))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
