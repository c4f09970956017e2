package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configKeys = []string{
	"ENABLE_FILE_LOGGING", "ABORT_KEY", "WINDOW_SWITCH_TIMEOUT_MS",
	"DEFAULT_TIMEOUT_MS", "DIALOG_TITLE", "ENABLE_TRAY", ConfigPathEnvVar,
}

// clearEnv unsets every configuration key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENABLE_FILE_LOGGING", "true")
	t.Setenv("ABORT_KEY", "RCTRL")
	t.Setenv("WINDOW_SWITCH_TIMEOUT_MS", "750")
	t.Setenv("DIALOG_TITLE", "macro")

	cfg, err := LoadWithOptions(LoadOptions{})
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if !cfg.EnableFileLogging {
		t.Errorf("Expected EnableFileLogging to be true, got %v", cfg.EnableFileLogging)
	}
	if cfg.AbortKey != "RCTRL" {
		t.Errorf("Expected AbortKey to be 'RCTRL', got '%s'", cfg.AbortKey)
	}
	if cfg.SwitchTimeout != 750*time.Millisecond {
		t.Errorf("Expected SwitchTimeout to be 750ms, got %v", cfg.SwitchTimeout)
	}
	if cfg.DefaultTimeout != DefaultPollingTimeout {
		t.Errorf("Expected DefaultTimeout to be %v, got %v", DefaultPollingTimeout, cfg.DefaultTimeout)
	}
	if cfg.DialogTitle != "macro" {
		t.Errorf("Expected DialogTitle to be 'macro', got '%s'", cfg.DialogTitle)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("WINDOW_SWITCH_TIMEOUT_MS", "-5")
	t.Setenv("ENABLE_TRAY", "yes")

	cfg, err := LoadWithOptions(LoadOptions{})
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.AbortKey != DefaultAbortKey {
		t.Errorf("Expected AbortKey to be %q, got %q", DefaultAbortKey, cfg.AbortKey)
	}
	if cfg.SwitchTimeout != DefaultSwitchTimeout {
		t.Errorf("Expected SwitchTimeout to fall back to %v, got %v", DefaultSwitchTimeout, cfg.SwitchTimeout)
	}
	if cfg.EnableTray {
		t.Error("Expected an unparsable ENABLE_TRAY to leave the tray off")
	}
	if cfg.DialogTitle != DefaultDialogTitle {
		t.Errorf("Expected DialogTitle to be %q, got %q", DefaultDialogTitle, cfg.DialogTitle)
	}
}

func TestLoadWithOptions(t *testing.T) {
	clearEnv(t)
	envPath := filepath.Join(t.TempDir(), "kmmacro.env")
	content := "ABORT_KEY=RALT\nDEFAULT_TIMEOUT_MS=5000\nENABLE_TRAY=false\n"
	if err := os.WriteFile(envPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithOptions(LoadOptions{EnvPathOverride: envPath, EnableTray: true, Verbose: true})
	if err != nil {
		t.Fatalf("LoadWithOptions returned %v", err)
	}
	if cfg.EnvPath != envPath {
		t.Errorf("Expected EnvPath %q, got %q", envPath, cfg.EnvPath)
	}
	if cfg.AbortKey != "RALT" {
		t.Errorf("Expected AbortKey from the env file, got %q", cfg.AbortKey)
	}
	if cfg.DefaultTimeout != 5*time.Second {
		t.Errorf("Expected DefaultTimeout 5s, got %v", cfg.DefaultTimeout)
	}
	if !cfg.EnableTray || !cfg.Verbose {
		t.Errorf("Expected flag overrides to win, got tray=%v verbose=%v", cfg.EnableTray, cfg.Verbose)
	}

	cfg, err = LoadWithOptions(LoadOptions{EnvPathOverride: envPath, AbortKeyOverride: "lwin"})
	if err != nil {
		t.Fatalf("LoadWithOptions returned %v", err)
	}
	if cfg.AbortKey != "lwin" {
		t.Errorf("Expected AbortKeyOverride to win, got %q", cfg.AbortKey)
	}
}

func TestLoadMissingOverride(t *testing.T) {
	clearEnv(t)
	if _, err := LoadWithOptions(LoadOptions{EnvPathOverride: filepath.Join(t.TempDir(), "missing.env")}); err == nil {
		t.Error("Expected error for a missing explicit config file")
	}
}
