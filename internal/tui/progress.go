package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrInterrupted is returned when the user aborts an interactive step.
var ErrInterrupted = errors.New("interrupted")

type workDoneMsg struct{ err error }

// AnalysisProgress is a Bubble Tea model showing a spinner while the model
// call runs.
type AnalysisProgress struct {
	spinner    spinner.Model
	step       string
	model      string
	inputChars int
	start      time.Time

	work        func() error
	done        bool
	err         error
	interrupted bool
}

// NewAnalysisProgress creates a progress display around work.
func NewAnalysisProgress(step, model string, inputChars int, work func() error) *AnalysisProgress {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return &AnalysisProgress{
		spinner:    s,
		step:       step,
		model:      model,
		inputChars: inputChars,
		start:      time.Now(),
		work:       work,
	}
}

// Init implements tea.Model.
func (p *AnalysisProgress) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, func() tea.Msg {
		return workDoneMsg{err: p.work()}
	})
}

// Update implements tea.Model.
func (p *AnalysisProgress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			p.interrupted = true
			return p, tea.Quit
		}

	case workDoneMsg:
		p.done = true
		p.err = msg.err
		return p, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	}

	return p, nil
}

// View implements tea.Model.
func (p *AnalysisProgress) View() string {
	if p.done || p.interrupted {
		return ""
	}
	elapsed := time.Since(p.start).Truncate(time.Second)
	return fmt.Sprintf("%s %s  %s  %s  ~%s input\n",
		p.spinner.View(),
		SheetStyle.Render(p.step),
		ModelStyle.Render(p.model),
		HelpStyle.Render(elapsed.String()),
		FormatTokens(EstimateTokens(p.inputChars)),
	)
}

// Err returns the work's error, or ErrInterrupted if the user quit first.
func (p *AnalysisProgress) Err() error {
	if p.interrupted {
		return ErrInterrupted
	}
	return p.err
}

// RunWithSpinner runs work under a spinner. Quitting the spinner cancels
// the context passed to work.
func RunWithSpinner(ctx context.Context, step, model string, inputChars int, work func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := NewAnalysisProgress(step, model, inputChars, func() error { return work(ctx) })
	if _, err := tea.NewProgram(p, tea.WithOutput(os.Stderr)).Run(); err != nil {
		return fmt.Errorf("progress display failed: %w", err)
	}
	return p.Err()
}

// RenderStepStart returns a line announcing a step (non-interactive mode).
func RenderStepStart(step, model string, inputChars int) string {
	return fmt.Sprintf("%s %s  %s  ~%s input tokens",
		SpinnerStyle.Render("→"),
		SheetStyle.Render(step),
		ModelStyle.Render(model),
		FormatTokens(EstimateTokens(inputChars)),
	)
}

// RenderStepComplete returns a line for a finished step (non-interactive mode).
func RenderStepComplete(step string, duration time.Duration, inputChars, outputChars int, model string) string {
	inputTokens := EstimateTokens(inputChars)
	outputTokens := EstimateTokens(outputChars)

	return fmt.Sprintf("%s %s  %s  ~%s tokens  %s",
		SuccessStyle.Render("✓"),
		SheetStyle.Render(step),
		HelpStyle.Render(duration.Truncate(time.Second).String()),
		FormatTokens(inputTokens+outputTokens),
		CostStyle.Render(FormatCost(EstimateCost(model, inputTokens, outputTokens))),
	)
}
