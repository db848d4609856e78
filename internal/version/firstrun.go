package version

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhabedank/cost-analyzer/internal/tui"
)

// ConfigFileName is the user configuration file in the home directory.
const ConfigFileName = ".cost-analyzer.yaml"

// IsFirstRun returns true if neither a user config nor the first-run
// marker exists.
func IsFirstRun() bool {
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	if _, err := os.Stat(filepath.Join(home, ConfigFileName)); err == nil {
		return false
	}
	if _, err := os.Stat(statePath(".initialized")); err == nil {
		return false
	}
	return true
}

// MarkInitialized creates the first-run marker.
func MarkInitialized() {
	marker := statePath(".initialized")
	if marker == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(marker), 0755); err != nil {
		return
	}
	_ = os.WriteFile(marker, []byte{}, 0644)
}

// PrintFirstRunNotice prints a welcome message for first-time users.
func PrintFirstRunNotice() {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "%s Welcome to cost-analyzer!\n", tui.TitleStyle.Render("*"))
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "  Quick start:")
	fmt.Fprintf(os.Stderr, "    1. Pick a provider and model: %s\n", tui.ModelStyle.Render("cost-analyzer setup"))
	fmt.Fprintf(os.Stderr, "    2. Check what will be sent:   %s\n", tui.ModelStyle.Render("cost-analyzer preview estimate.xlsx"))
	fmt.Fprintf(os.Stderr, "    3. Run the analysis:          %s\n", tui.ModelStyle.Render("cost-analyzer analyze estimate.xlsx"))
	fmt.Fprintf(os.Stderr, "    or open the web page:         %s\n", tui.ModelStyle.Render("cost-analyzer serve"))
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "  %s\n", tui.HelpStyle.Render("Your API key is read from the environment or asked for; it is never saved."))
	fmt.Fprintln(os.Stderr)

	MarkInitialized()
}
