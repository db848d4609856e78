package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dhabedank/cost-analyzer/internal/llm"
	"github.com/dhabedank/cost-analyzer/internal/tui"
)

var resetConfig bool

// SetupCmd represents the setup command.
var SetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	Long: `Configure cost-analyzer with an interactive wizard.

This wizard helps you select:
- Provider: the inference API (OpenAI or Anthropic)
- Model: the model that writes the cost analysis

Configuration is saved to ~/.cost-analyzer.yaml. API keys are not saved;
set OPENAI_API_KEY / ANTHROPIC_API_KEY or pass --api-key instead.`,
	RunE: runSetup,
}

func init() {
	SetupCmd.Flags().BoolVar(&resetConfig, "reset", false, "Reset configuration to defaults")
}

func runSetup(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Handle reset
	if resetConfig {
		if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove config: %w", err)
		}
		fmt.Println(tui.SuccessStyle.Render("✓") + " Configuration reset to defaults")
		fmt.Printf("  Removed: %s\n", configPath)
		return nil
	}

	p := tea.NewProgram(newSetupModel())
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	finalModel := m.(setupModel)
	if finalModel.cancelled {
		fmt.Println("Setup cancelled")
		return nil
	}

	// Keep whatever else the file already holds
	config := &configFileData{}
	if _, err := os.Stat(configPath); err == nil {
		if config, err = readConfigFile(configPath); err != nil {
			return err
		}
	}
	config.Provider = string(finalModel.provider)
	config.Model = finalModel.model

	if err := saveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println(tui.SuccessStyle.Render("✓") + " Configuration saved to " + configPath)
	fmt.Println()
	fmt.Printf("  Provider: %s\n", tui.ModelStyle.Render(config.Provider))
	fmt.Printf("  Model:    %s\n", tui.ModelStyle.Render(config.Model))
	if llm.APIKeyFromEnv(finalModel.provider) == "" {
		fmt.Println()
		fmt.Printf("  %s Set %s or pass --api-key when analyzing.\n",
			tui.WarningStyle.Render("!"), llm.APIKeyEnv(finalModel.provider))
	}

	return nil
}

func getConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ConfigFileName
	}
	return filepath.Join(home, ConfigFileName)
}

func saveConfig(path string, config *configFileData) error {
	if config == nil {
		return errors.New("no configuration to save")
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Bubble Tea model for the setup wizard

const (
	stepProvider = iota
	stepModel
)

type setupModel struct {
	step      int
	providers list.Model
	models    list.Model
	provider  llm.Provider
	model     string
	cancelled bool
	width     int
	height    int
}

type providerItem struct {
	provider llm.Provider
}

func (p providerItem) Title() string { return string(p.provider) }
func (p providerItem) Description() string {
	return fmt.Sprintf("key from %s, default model %s", llm.APIKeyEnv(p.provider), llm.DefaultModel(p.provider))
}
func (p providerItem) FilterValue() string { return string(p.provider) }

type modelItem struct {
	info llm.ModelInfo
}

func (m modelItem) Title() string       { return m.info.Name }
func (m modelItem) Description() string { return m.info.Description }
func (m modelItem) FilterValue() string { return m.info.Name }

func newDelegate() list.DefaultDelegate {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("#e67e22"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(lipgloss.Color("#95a5a6"))
	return delegate
}

func newList(items []list.Item, title string) list.Model {
	l := list.New(items, newDelegate(), 60, 14)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = tui.TitleStyle
	return l
}

func newSetupModel() setupModel {
	providers := llm.Providers()
	items := make([]list.Item, len(providers))
	for i, p := range providers {
		items[i] = providerItem{provider: p}
	}

	return setupModel{
		step:      stepProvider,
		providers: newList(items, "Select Provider"),
	}
}

// modelList builds the model step for the chosen provider.
func modelList(p llm.Provider, width, height int) list.Model {
	models := llm.ModelsFor(p)
	items := make([]list.Item, len(models))
	for i, m := range models {
		items[i] = modelItem{info: m}
	}
	l := newList(items, fmt.Sprintf("Select %s Model", p))
	if width > 0 {
		l.SetWidth(width)
		l.SetHeight(height - 4)
	}
	return l
}

func (m setupModel) Init() tea.Cmd {
	return nil
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.providers.SetWidth(msg.Width)
		m.providers.SetHeight(msg.Height - 4)
		if m.step == stepModel {
			m.models.SetWidth(msg.Width)
			m.models.SetHeight(msg.Height - 4)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			if m.step == stepProvider {
				if item, ok := m.providers.SelectedItem().(providerItem); ok {
					m.provider = item.provider
					m.models = modelList(item.provider, m.width, m.height)
					m.step = stepModel
				}
				return m, nil
			}
			if item, ok := m.models.SelectedItem().(modelItem); ok {
				m.model = item.info.ID
				return m, tea.Quit
			}
			return m, nil

		case "left", "h":
			if m.step == stepModel {
				m.step = stepProvider
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.step == stepProvider {
		m.providers, cmd = m.providers.Update(msg)
	} else {
		m.models, cmd = m.models.Update(msg)
	}
	return m, cmd
}

func (m setupModel) View() string {
	if m.cancelled {
		return ""
	}

	// Progress indicator
	steps := []string{"Provider", "Model"}
	progress := "\n  "
	for i, s := range steps {
		if i == m.step {
			progress += tui.SelectedStyle.Render(fmt.Sprintf("[%s]", s))
		} else if i < m.step {
			progress += tui.SuccessStyle.Render(fmt.Sprintf("✓ %s", s))
		} else {
			progress += tui.UnselectedStyle.Render(fmt.Sprintf("○ %s", s))
		}
		if i < len(steps)-1 {
			progress += " → "
		}
	}
	progress += "\n\n"

	help := tui.HelpStyle.Render("\n  ↑/↓: navigate • enter: select • ←: back • q: quit")

	if m.step == stepProvider {
		return progress + m.providers.View() + help
	}
	return progress + m.models.View() + help
}
