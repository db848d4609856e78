package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for TUI components.
var (
	ColorPrimary   = lipgloss.Color("#e67e22") // Safety orange
	ColorSecondary = lipgloss.Color("#16a085") // Teal
	ColorMuted     = lipgloss.Color("#95a5a6") // Concrete gray
	ColorWarning   = lipgloss.Color("#f1c40f") // Yellow
	ColorError     = lipgloss.Color("#e74c3c") // Red
	ColorInfo      = lipgloss.Color("#3498db") // Blue
	ColorSuccess   = lipgloss.Color("#2ecc71") // Green
)

// Text styles for consistent formatting.
var (
	// TitleStyle for main headings.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle for section headings.
	SubtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// SelectedStyle for the active wizard step.
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// UnselectedStyle for pending wizard steps.
	UnselectedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	// ModelStyle for displaying model names.
	ModelStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	// CostStyle for displaying costs.
	CostStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	// SheetStyle for sheet names.
	SheetStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)
)

// Table styles for sheet previews.
var (
	TableBorderStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				Padding(0, 1)

	TableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// BoxStyle for bordered containers such as the raw text preview.
var BoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorMuted).
	Padding(0, 1)
