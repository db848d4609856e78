package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/blang/semver"

	"github.com/dhabedank/cost-analyzer/internal/tui"
)

const (
	// GitHubRepo is the repository for version checks.
	GitHubRepo = "dhabedank/cost-analyzer"

	// CheckInterval is how often to check for updates (24 hours).
	CheckInterval = 24 * time.Hour

	stateDirName = ".cost-analyzer"
)

// GitHubRelease represents a GitHub release.
type GitHubRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// CheckResult holds the result of a version check.
type CheckResult struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// Checker looks up the latest release at most once per CheckInterval.
type Checker struct {
	ReleaseURL string
	MarkerPath string // touched after each check; empty disables throttling
	Client     *http.Client
}

// NewChecker returns a checker against the GitHub releases API.
func NewChecker() *Checker {
	return &Checker{
		ReleaseURL: fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", GitHubRepo),
		MarkerPath: statePath(".last-update-check"),
		Client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// CheckForUpdate checks if a newer version is available.
// Returns nil if the check is skipped, fails, or finds nothing newer.
func CheckForUpdate(currentVersion string) *CheckResult {
	return NewChecker().Check(context.Background(), currentVersion)
}

// Check compares currentVersion with the latest release.
func (c *Checker) Check(ctx context.Context, currentVersion string) *CheckResult {
	current, err := semver.ParseTolerant(currentVersion)
	if err != nil {
		return nil // dev builds
	}

	if c.shouldSkip() {
		return nil
	}
	c.markChecked()

	latest, err := c.fetchLatestRelease(ctx)
	if err != nil {
		return nil // Silently fail - don't block user
	}

	latestVersion, err := semver.ParseTolerant(latest.TagName)
	if err != nil || !latestVersion.GT(current) {
		return nil
	}

	return &CheckResult{
		CurrentVersion:  currentVersion,
		LatestVersion:   latest.TagName,
		UpdateAvailable: true,
		ReleaseURL:      latest.HTMLURL,
	}
}

// PrintUpdateNotice prints a notice if an update is available.
func PrintUpdateNotice(result *CheckResult) {
	if result == nil || !result.UpdateAvailable {
		return
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "%s A new version of cost-analyzer is available: %s (you have %s)\n",
		tui.WarningStyle.Render("!"),
		tui.SuccessStyle.Render(result.LatestVersion),
		result.CurrentVersion,
	)
	fmt.Fprintf(os.Stderr, "  Update: %s\n", tui.HelpStyle.Render("go install github.com/dhabedank/cost-analyzer@latest"))
	if result.ReleaseURL != "" {
		fmt.Fprintf(os.Stderr, "  Notes:  %s\n", tui.HelpStyle.Render(result.ReleaseURL))
	}
	fmt.Fprintln(os.Stderr)
}

func (c *Checker) fetchLatestRelease(ctx context.Context) (*GitHubRelease, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ReleaseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, err
	}
	return &release, nil
}

func (c *Checker) shouldSkip() bool {
	if c.MarkerPath == "" {
		return false
	}
	info, err := os.Stat(c.MarkerPath)
	if err != nil {
		return false // No marker, should check
	}
	return time.Since(info.ModTime()) < CheckInterval
}

func (c *Checker) markChecked() {
	if c.MarkerPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.MarkerPath), 0755); err != nil {
		return
	}
	now := time.Now()
	if err := os.Chtimes(c.MarkerPath, now, now); os.IsNotExist(err) {
		_ = os.WriteFile(c.MarkerPath, []byte{}, 0644)
	}
}

// statePath returns a file under ~/.cost-analyzer, or "" without a home dir.
func statePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, stateDirName, name)
}
