// Package config loads termtap configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (TERMTAP_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .termtap.yaml in current directory
//  2. ~/.config/termtap/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all termtap configuration.
type Config struct {
	// Session log and metadata locations. Empty LogDir means auto-detect
	// (project-local .termtap/logs or ~/.termtap/logs).
	LogDir string `yaml:"log_dir"`
	DBPath string `yaml:"db_path"`

	// Multiplexer selection ("tmux"; empty means auto-detect).
	Mux string `yaml:"mux"`

	// Wait engine tuning. Go duration strings, e.g. "500ms", "30s".
	PollInterval    string `yaml:"poll_interval"`
	DefaultTimeout  string `yaml:"default_timeout"`
	InteractiveWait string `yaml:"interactive_wait"`

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// Parsed durations (not from YAML, set after loading)
	PollIntervalDuration    time.Duration `yaml:"-"`
	DefaultTimeoutDuration  time.Duration `yaml:"-"`
	InteractiveWaitDuration time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		PollInterval:    "500ms",
		DefaultTimeout:  "30s",
		InteractiveWait: "5s",
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	mergeEnv(cfg)

	var err error
	cfg.PollIntervalDuration, err = time.ParseDuration(cfg.PollInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid poll interval %q: %w", cfg.PollInterval, err)
	}
	cfg.DefaultTimeoutDuration, err = time.ParseDuration(cfg.DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid default timeout %q: %w", cfg.DefaultTimeout, err)
	}
	cfg.InteractiveWaitDuration, err = time.ParseDuration(cfg.InteractiveWait)
	if err != nil {
		return nil, fmt.Errorf("invalid interactive wait %q: %w", cfg.InteractiveWait, err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	if data, err := os.ReadFile(".termtap.yaml"); err == nil {
		return ".termtap.yaml", data, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "termtap", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.LogDir != "" {
		cfg.LogDir = file.LogDir
	}
	if file.DBPath != "" {
		cfg.DBPath = file.DBPath
	}
	if file.Mux != "" {
		cfg.Mux = file.Mux
	}
	if file.PollInterval != "" {
		cfg.PollInterval = file.PollInterval
	}
	if file.DefaultTimeout != "" {
		cfg.DefaultTimeout = file.DefaultTimeout
	}
	if file.InteractiveWait != "" {
		cfg.InteractiveWait = file.InteractiveWait
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("TERMTAP_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("TERMTAP_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TERMTAP_MUX"); v != "" {
		cfg.Mux = v
	}
	if v := os.Getenv("TERMTAP_POLL_INTERVAL"); v != "" {
		cfg.PollInterval = v
	}
	if v := os.Getenv("TERMTAP_DEFAULT_TIMEOUT"); v != "" {
		cfg.DefaultTimeout = v
	}
	if v := os.Getenv("TERMTAP_INTERACTIVE_WAIT"); v != "" {
		cfg.InteractiveWait = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}
}
