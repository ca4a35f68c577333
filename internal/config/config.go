package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for its config file.
const DefaultPath = ".tagexport/config.yaml"

// Config holds all tagexport configuration.
type Config struct {
	// Browser process and page settings
	Browser BrowserConfig `yaml:"browser"`

	// Console flow: URLs, selectors, waits
	Console ConsoleConfig `yaml:"console"`

	// Report output
	Export ExportConfig `yaml:"export"`

	// Run ledger
	History HistoryConfig `yaml:"history"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// BrowserConfig configures the Chrome instance.
type BrowserConfig struct {
	DebuggerURL       string   `yaml:"debugger_url"` // attach instead of launching
	ChromeBin         string   `yaml:"chrome_bin"`
	Flags             []string `yaml:"flags"`
	Headless          bool     `yaml:"headless"`
	ViewportWidth     int      `yaml:"viewport_width"`
	ViewportHeight    int      `yaml:"viewport_height"`
	NavigationTimeout string   `yaml:"navigation_timeout"`
	ActionTimeout     string   `yaml:"action_timeout"`
	DownloadTimeout   string   `yaml:"download_timeout"`
}

// ConsoleConfig configures the Tag Editor flow.
type ConsoleConfig struct {
	SignInURL        string `yaml:"sign_in_url"`
	DropdownSelector string `yaml:"dropdown_selector"`
	// StrictReadiness aborts when the export button is still disabled after
	// the results wait instead of exporting anyway.
	StrictReadiness bool           `yaml:"strict_readiness"`
	Timeouts        TimeoutsConfig `yaml:"timeouts"`
}

// TimeoutsConfig holds the flow's wait windows as duration strings.
type TimeoutsConfig struct {
	StepPause     string `yaml:"step_pause"`
	MFAProbe      string `yaml:"mfa_probe"`
	Dropdown      string `yaml:"dropdown"`
	FeatureSearch string `yaml:"feature_search"`
	ResultsReady  string `yaml:"results_ready"`
	ExportMenu    string `yaml:"export_menu"`
	NetworkIdle   string `yaml:"network_idle"`
}

// ExportConfig configures where reports go.
type ExportConfig struct {
	OutputDir   string `yaml:"output_dir"`
	DownloadDir string `yaml:"download_dir"` // empty = temporary dir per run
}

// HistoryConfig configures the SQLite run ledger.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:          false,
			ViewportWidth:     1920,
			ViewportHeight:    1080,
			NavigationTimeout: "30s",
			ActionTimeout:     "30s",
			DownloadTimeout:   "5m",
		},

		Console: ConsoleConfig{
			SignInURL:        "https://signin.aws.amazon.com/",
			DropdownSelector: ".awsui_dropdown_qwoo0_1n520_149[aria-hidden='false']",
			StrictReadiness:  false,
			Timeouts: TimeoutsConfig{
				StepPause:     "1s",
				MFAProbe:      "2s",
				Dropdown:      "30s",
				FeatureSearch: "10s",
				ResultsReady:  "5m",
				ExportMenu:    "60s",
				NetworkIdle:   "30s",
			},
		},

		Export: ExportConfig{
			OutputDir: "tags_services_account",
		},

		History: HistoryConfig{
			Enabled: true,
			Path:    ".tagexport/history.db",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TAGEXPORT_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = b
		}
	}
	if v := os.Getenv("TAGEXPORT_CHROME_BIN"); v != "" {
		c.Browser.ChromeBin = v
	}
	if v := os.Getenv("TAGEXPORT_DEBUGGER_URL"); v != "" {
		c.Browser.DebuggerURL = v
	}
	if v := os.Getenv("TAGEXPORT_OUTPUT_DIR"); v != "" {
		c.Export.OutputDir = v
	}
	if v := os.Getenv("TAGEXPORT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("TAGEXPORT_STRICT_READINESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Console.StrictReadiness = b
		}
	}
	if v := os.Getenv("TAGEXPORT_HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
}

// parseDuration parses s, falling back to def when s is empty or invalid.
func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// GetNavigationTimeout returns the page navigation timeout.
func (c *BrowserConfig) GetNavigationTimeout() time.Duration {
	return parseDuration(c.NavigationTimeout, 30*time.Second)
}

// GetActionTimeout returns how long clicks and fills wait for an element.
func (c *BrowserConfig) GetActionTimeout() time.Duration {
	return parseDuration(c.ActionTimeout, 30*time.Second)
}

// GetDownloadTimeout returns the export download timeout.
func (c *BrowserConfig) GetDownloadTimeout() time.Duration {
	return parseDuration(c.DownloadTimeout, 5*time.Minute)
}

func (t *TimeoutsConfig) GetStepPause() time.Duration {
	return parseDuration(t.StepPause, time.Second)
}

func (t *TimeoutsConfig) GetMFAProbe() time.Duration {
	return parseDuration(t.MFAProbe, 2*time.Second)
}

func (t *TimeoutsConfig) GetDropdown() time.Duration {
	return parseDuration(t.Dropdown, 30*time.Second)
}

func (t *TimeoutsConfig) GetFeatureSearch() time.Duration {
	return parseDuration(t.FeatureSearch, 10*time.Second)
}

func (t *TimeoutsConfig) GetResultsReady() time.Duration {
	return parseDuration(t.ResultsReady, 5*time.Minute)
}

func (t *TimeoutsConfig) GetExportMenu() time.Duration {
	return parseDuration(t.ExportMenu, 60*time.Second)
}

func (t *TimeoutsConfig) GetNetworkIdle() time.Duration {
	return parseDuration(t.NetworkIdle, 30*time.Second)
}

// Validate checks the configuration for values that would break a run.
func (c *Config) Validate() error {
	var errs []error
	durations := []struct{ key, value string }{
		{"browser.navigation_timeout", c.Browser.NavigationTimeout},
		{"browser.action_timeout", c.Browser.ActionTimeout},
		{"browser.download_timeout", c.Browser.DownloadTimeout},
		{"console.timeouts.step_pause", c.Console.Timeouts.StepPause},
		{"console.timeouts.mfa_probe", c.Console.Timeouts.MFAProbe},
		{"console.timeouts.dropdown", c.Console.Timeouts.Dropdown},
		{"console.timeouts.feature_search", c.Console.Timeouts.FeatureSearch},
		{"console.timeouts.results_ready", c.Console.Timeouts.ResultsReady},
		{"console.timeouts.export_menu", c.Console.Timeouts.ExportMenu},
		{"console.timeouts.network_idle", c.Console.Timeouts.NetworkIdle},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		if v, err := time.ParseDuration(d.value); err != nil || v < 0 {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", d.key, d.value))
		}
	}
	if c.Export.OutputDir == "" {
		errs = append(errs, errors.New("export.output_dir is required"))
	}
	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, errors.New("history.path is required when history is enabled"))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
