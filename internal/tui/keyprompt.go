package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// keyPrompt reads a secret with masked echo.
type keyPrompt struct {
	label     string
	input     textinput.Model
	submitted bool
	cancelled bool
}

func newKeyPrompt(label string) *keyPrompt {
	ti := textinput.New()
	ti.Placeholder = "sk-..."
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 256
	ti.Width = 48
	ti.Focus()

	return &keyPrompt{label: label, input: ti}
}

func (m *keyPrompt) Init() tea.Cmd {
	return textinput.Blink
}

func (m *keyPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *keyPrompt) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	return fmt.Sprintf("%s\n%s\n%s\n",
		TitleStyle.Render(m.label),
		m.input.View(),
		HelpStyle.Render("enter: confirm • esc: cancel"),
	)
}

// value is the entered secret, trimmed.
func (m *keyPrompt) value() string {
	return strings.TrimSpace(m.input.Value())
}

// PromptSecret asks for a secret on the terminal without echoing it.
// The value is returned to the caller only; it is not stored anywhere.
func PromptSecret(label string) (string, error) {
	m := newKeyPrompt(label)
	if _, err := tea.NewProgram(m, tea.WithOutput(os.Stderr)).Run(); err != nil {
		return "", fmt.Errorf("key prompt failed: %w", err)
	}
	if m.cancelled {
		return "", ErrInterrupted
	}
	return m.value(), nil
}
