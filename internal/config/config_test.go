package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Export.OutputDir != "tags_services_account" {
		t.Errorf("expected OutputDir=tags_services_account, got %s", cfg.Export.OutputDir)
	}
	if cfg.Console.StrictReadiness {
		t.Error("expected permissive readiness by default")
	}
	if got := cfg.Console.Timeouts.GetResultsReady(); got != 5*time.Minute {
		t.Errorf("expected ResultsReady=5m, got %s", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("TAGEXPORT_OUTPUT_DIR", "")
	t.Setenv("TAGEXPORT_HEADLESS", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Browser.Headless = true
	cfg.Export.OutputDir = "reports"
	cfg.Console.Timeouts.ResultsReady = "10m"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !loaded.Browser.Headless {
		t.Error("expected Headless=true")
	}
	if loaded.Export.OutputDir != "reports" {
		t.Errorf("expected OutputDir=reports, got %s", loaded.Export.OutputDir)
	}
	if got := loaded.Console.Timeouts.GetResultsReady(); got != 10*time.Minute {
		t.Errorf("expected ResultsReady=10m, got %s", got)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("TAGEXPORT_OUTPUT_DIR", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Export.OutputDir != "tags_services_account" {
		t.Errorf("expected default OutputDir, got %s", cfg.Export.OutputDir)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("console:\n  strict_readiness: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Console.StrictReadiness {
		t.Error("expected StrictReadiness=true")
	}
	if cfg.Console.Timeouts.Dropdown != "30s" {
		t.Errorf("expected default dropdown timeout, got %q", cfg.Console.Timeouts.Dropdown)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("console: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Console.Timeouts.ResultsReady = "soon"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for bad duration")
	}

	cfg = DefaultConfig()
	cfg.Export.OutputDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty output dir")
	}

	cfg = DefaultConfig()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown log level")
	}
}

func TestDurationFallbacks(t *testing.T) {
	var tc TimeoutsConfig
	if got := tc.GetMFAProbe(); got != 2*time.Second {
		t.Errorf("expected 2s fallback, got %s", got)
	}
	tc.ExportMenu = "garbage"
	if got := tc.GetExportMenu(); got != 60*time.Second {
		t.Errorf("expected 60s fallback, got %s", got)
	}
	var bc BrowserConfig
	if got := bc.GetDownloadTimeout(); got != 5*time.Minute {
		t.Errorf("expected 5m fallback, got %s", got)
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	c := LoggingConfig{}
	if !c.IsCategoryEnabled("browser") {
		t.Error("expected all categories enabled without filter")
	}
	c.Categories = map[string]bool{"browser": false}
	if c.IsCategoryEnabled("browser") {
		t.Error("expected browser disabled")
	}
	if !c.IsCategoryEnabled("session") {
		t.Error("expected unlisted category enabled")
	}
}

func TestConfig_ValidateOrderIsStable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Browser.NavigationTimeout = "x"
	cfg.Console.Timeouts.StepPause = "y"
	cfg.Console.Timeouts.NetworkIdle = "z"
	cfg.Export.OutputDir = ""

	want := "browser.navigation_timeout: invalid duration \"x\"\n" +
		"console.timeouts.step_pause: invalid duration \"y\"\n" +
		"console.timeouts.network_idle: invalid duration \"z\"\n" +
		"export.output_dir is required"
	for i := 0; i < 20; i++ {
		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected validation error")
		}
		if err.Error() != want {
			t.Fatalf("unexpected error text:\n%s", err.Error())
		}
	}
}
