package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dhabedank/cost-analyzer/cmd"
	"github.com/dhabedank/cost-analyzer/internal/version"
)

var appVersion = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "cost-analyzer",
		Short:   "Estimate construction costs from spreadsheets with an LLM",
		Version: appVersion,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			if !isatty.IsTerminal(os.Stderr.Fd()) {
				return
			}
			if version.IsFirstRun() && c.Name() != "setup" {
				version.PrintFirstRunNotice()
			}
			version.PrintUpdateNotice(version.CheckForUpdate(appVersion))
		},
	}

	rootCmd.AddCommand(cmd.AnalyzeCmd, cmd.PreviewCmd, cmd.ServeCmd, cmd.SetupCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
