package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dhabedank/cost-analyzer/internal/core"
	"github.com/dhabedank/cost-analyzer/internal/llm"
)

// ConfigFileName is looked up in the working directory, then in the home directory.
const ConfigFileName = ".cost-analyzer.yaml"

// Analysis flags shared by analyze, preview and serve.
var (
	configFile     string
	llmProvider    string
	llmModel       string
	llmBaseURL     string
	temperature    float64
	maxTokens      int
	maxChars       int
	truncateUnit   string
	priceRegion    string
	noHeader       bool
	requestTimeout time.Duration
	previewRows    int
	rawTextPreview int
)

// configFileData is the YAML config file. It has no API key field: keys
// are never read from or written to disk.
type configFileData struct {
	Provider       string        `yaml:"provider,omitempty"`
	Model          string        `yaml:"model,omitempty"`
	BaseURL        string        `yaml:"base_url,omitempty"`
	Temperature    *float64      `yaml:"temperature,omitempty"`
	MaxTokens      int           `yaml:"max_tokens,omitempty"`
	MaxChars       int           `yaml:"max_chars,omitempty"`
	TruncateUnit   string        `yaml:"truncate_unit,omitempty"`
	Region         string        `yaml:"region,omitempty"`
	NoHeader       bool          `yaml:"no_header,omitempty"`
	Timeout        time.Duration `yaml:"timeout,omitempty"`
	PreviewRows    int           `yaml:"preview_rows,omitempty"`
	RawTextPreview int           `yaml:"raw_text_preview,omitempty"`

	// serve
	Listen      string `yaml:"listen,omitempty"`
	MaxUploadMB int    `yaml:"max_upload_mb,omitempty"`
	MaxSessions int    `yaml:"max_sessions,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
	LogFile     string `yaml:"log_file,omitempty"`
}

func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "Config file (default: "+ConfigFileName+")")
}

func addAnalysisFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&llmProvider, "provider", "p", string(llm.ProviderOpenAI), "Inference provider (openai/anthropic)")
	f.StringVarP(&llmModel, "model", "m", "", "Model to use (default: gpt-4 for openai, claude-sonnet-4 for anthropic)")
	f.StringVar(&llmBaseURL, "base-url", "", "Override the provider API endpoint")
	f.Float64Var(&temperature, "temperature", core.DefaultTemperature, "Sampling temperature")
	f.IntVar(&maxTokens, "max-tokens", core.DefaultMaxTokens, "Maximum tokens in the answer")
	f.IntVar(&maxChars, "max-chars", core.DefaultMaxChars, "Spreadsheet text sent to the model (characters, or tokens with --truncate tokens)")
	f.StringVar(&truncateUnit, "truncate", string(core.TruncateChars), "Truncation unit for --max-chars (chars/tokens)")
	f.StringVar(&priceRegion, "region", core.DefaultRegion, "Market whose prices fill gaps in the data")
	f.BoolVar(&noHeader, "no-header", false, "Treat the first row of each sheet as data")
	f.DurationVar(&requestTimeout, "timeout", 0, "Abort the model call after this long (0: no limit)")
	addConfigFlag(cmd)
}

func addPreviewFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&previewRows, "rows", core.DefaultPreviewRows, "Rows shown per sheet in the overview")
	cmd.Flags().IntVar(&rawTextPreview, "raw-chars", core.DefaultRawPreviewChars, "Characters of extracted text shown")
}

// findConfigFile returns the config file to load, or "" when there is none.
func findConfigFile() string {
	if configFile != "" {
		return configFile
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if home, err := os.UserHomeDir(); err == nil {
		homePath := filepath.Join(home, ConfigFileName)
		if _, err := os.Stat(homePath); err == nil {
			return homePath
		}
	}
	return ""
}

func readConfigFile(path string) (*configFileData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg configFileData
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	var keys map[string]interface{}
	if err := yaml.Unmarshal(data, &keys); err == nil {
		if _, ok := keys["api_key"]; ok {
			return nil, &core.ConfigError{Field: "api_key", Message: "API keys are not read from config files; use --api-key or the provider's environment variable"}
		}
	}
	return &cfg, nil
}

// loadConfig applies the config file to flags the user did not set.
func loadConfig(cmd *cobra.Command) error {
	path := findConfigFile()
	if path == "" {
		return nil // No config file, use defaults
	}

	cfg, err := readConfigFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Loaded config from: %s\n", path)

	applyConfig(cmd, cfg)
	return nil
}

func applyConfig(cmd *cobra.Command, cfg *configFileData) {
	unset := func(name string) bool {
		flag := cmd.Flags().Lookup(name)
		return flag != nil && !flag.Changed
	}

	if unset("provider") && cfg.Provider != "" {
		llmProvider = cfg.Provider
	}
	if unset("model") && cfg.Model != "" {
		llmModel = cfg.Model
	}
	if unset("base-url") && cfg.BaseURL != "" {
		llmBaseURL = cfg.BaseURL
	}
	if unset("temperature") && cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if unset("max-tokens") && cfg.MaxTokens > 0 {
		maxTokens = cfg.MaxTokens
	}
	if unset("max-chars") && cfg.MaxChars > 0 {
		maxChars = cfg.MaxChars
	}
	if unset("truncate") && cfg.TruncateUnit != "" {
		truncateUnit = cfg.TruncateUnit
	}
	if unset("region") && cfg.Region != "" {
		priceRegion = cfg.Region
	}
	if unset("no-header") && cfg.NoHeader {
		noHeader = true
	}
	if unset("timeout") && cfg.Timeout > 0 {
		requestTimeout = cfg.Timeout
	}
	if unset("rows") && cfg.PreviewRows > 0 {
		previewRows = cfg.PreviewRows
	}
	if unset("raw-chars") && cfg.RawTextPreview > 0 {
		rawTextPreview = cfg.RawTextPreview
	}

	if unset("listen") && cfg.Listen != "" {
		listenAddr = cfg.Listen
	}
	if unset("max-upload-mb") && cfg.MaxUploadMB > 0 {
		maxUploadMB = cfg.MaxUploadMB
	}
	if unset("max-sessions") && cfg.MaxSessions > 0 {
		maxSessions = cfg.MaxSessions
	}
	if unset("log-level") && cfg.LogLevel != "" {
		logLevel = cfg.LogLevel
	}
	if unset("log-file") && cfg.LogFile != "" {
		logFile = cfg.LogFile
	}
}

// buildConfigs turns the flag values into pipeline and adapter settings.
func buildConfigs() (core.AnalysisConfig, llm.Config, error) {
	provider, err := llm.ParseProvider(llmProvider)
	if err != nil {
		return core.AnalysisConfig{}, llm.Config{}, &core.ConfigError{Field: "provider", Message: err.Error()}
	}

	model := llmModel
	if model == "" {
		model = llm.DefaultModel(provider)
	}

	cfg := core.AnalysisConfig{
		Model:        model,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
		MaxChars:     maxChars,
		TruncateUnit: core.TruncateUnit(truncateUnit),
		Region:       priceRegion,
		NoHeader:     noHeader,
		Timeout:      requestTimeout,
	}
	if err := cfg.Validate(); err != nil {
		return core.AnalysisConfig{}, llm.Config{}, err
	}

	return cfg, llm.Config{Provider: provider, Model: model, BaseURL: llmBaseURL}, nil
}

// errNoCredential explains where an API key can come from.
func errNoCredential(provider llm.Provider) error {
	return fmt.Errorf("%w: pass --api-key or set %s", core.ErrMissingCredential, llm.APIKeyEnv(provider))
}
