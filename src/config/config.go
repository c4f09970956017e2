package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ConfigPathEnvVar names a .env file used when none sits next to the
	// executable.
	ConfigPathEnvVar = "KMMACRO_CONFIG"

	DefaultAbortKey       = "LSHIFT"
	DefaultDialogTitle    = "kmmacro"
	DefaultSwitchTimeout  = 500 * time.Millisecond
	DefaultPollingTimeout = 2 * time.Second
)

// LoadOptions carries command line overrides. Zero values leave the
// environment's setting in place.
type LoadOptions struct {
	EnvPathOverride  string
	AbortKeyOverride string
	EnableTray       bool
	Verbose          bool
}

type Config struct {
	EnvPath           string
	EnableFileLogging bool
	Verbose           bool
	AbortKey          string
	SwitchTimeout     time.Duration
	DefaultTimeout    time.Duration
	DialogTitle       string
	EnableTray        bool
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) an explicit path from the command line
	// 2) .env in the application (executable) directory
	// 3) the file named by KMMACRO_CONFIG
	envPath := strings.TrimSpace(opts.EnvPathOverride)
	if envPath == "" {
		envPath = resolveEnvPath()
	}
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		EnvPath:           envPath,
		EnableFileLogging: getEnvBool("ENABLE_FILE_LOGGING"),
		Verbose:           opts.Verbose,
		AbortKey:          getEnvWithDefault("ABORT_KEY", DefaultAbortKey),
		SwitchTimeout:     getEnvMillis("WINDOW_SWITCH_TIMEOUT_MS", DefaultSwitchTimeout),
		DefaultTimeout:    getEnvMillis("DEFAULT_TIMEOUT_MS", DefaultPollingTimeout),
		DialogTitle:       getEnvWithDefault("DIALOG_TITLE", DefaultDialogTitle),
		EnableTray:        opts.EnableTray || getEnvBool("ENABLE_TRAY"),
	}
	if override := strings.TrimSpace(opts.AbortKeyOverride); override != "" {
		cfg.AbortKey = override
	}
	return cfg, nil
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}

// getEnvMillis reads a positive millisecond count, falling back to
// defaultValue on anything else.
func getEnvMillis(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return defaultValue
}
