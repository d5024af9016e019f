package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable the loader reads so host state never
// leaks into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TERMTAP_LOG_DIR", "TERMTAP_DB_PATH", "TERMTAP_MUX",
		"TERMTAP_POLL_INTERVAL", "TERMTAP_DEFAULT_TIMEOUT", "TERMTAP_INTERACTIVE_WAIT",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_HEADERS",
	} {
		t.Setenv(key, "")
	}
	// Isolate from any real ~/.config/termtap/config.yaml.
	t.Setenv("HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollIntervalDuration != 500*time.Millisecond {
		t.Errorf("poll interval: got %v, want 500ms", cfg.PollIntervalDuration)
	}
	if cfg.DefaultTimeoutDuration != 30*time.Second {
		t.Errorf("default timeout: got %v, want 30s", cfg.DefaultTimeoutDuration)
	}
	if cfg.InteractiveWaitDuration != 5*time.Second {
		t.Errorf("interactive wait: got %v, want 5s", cfg.InteractiveWaitDuration)
	}
	if cfg.ConfigFile != "" {
		t.Errorf("no config file expected, got %q", cfg.ConfigFile)
	}
}

func TestLoad_FileValues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
log_dir: /var/log/termtap
mux: tmux
poll_interval: 250ms
default_timeout: 2m
`
	if err := os.WriteFile(filepath.Join(dir, ".termtap.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogDir != "/var/log/termtap" {
		t.Errorf("log_dir: got %q", cfg.LogDir)
	}
	if cfg.Mux != "tmux" {
		t.Errorf("mux: got %q", cfg.Mux)
	}
	if cfg.PollIntervalDuration != 250*time.Millisecond {
		t.Errorf("poll interval: got %v, want 250ms", cfg.PollIntervalDuration)
	}
	if cfg.DefaultTimeoutDuration != 2*time.Minute {
		t.Errorf("default timeout: got %v, want 2m", cfg.DefaultTimeoutDuration)
	}
	// Values absent from the file keep their defaults.
	if cfg.InteractiveWaitDuration != 5*time.Second {
		t.Errorf("interactive wait: got %v, want default 5s", cfg.InteractiveWaitDuration)
	}
	if cfg.ConfigFile != ".termtap.yaml" {
		t.Errorf("config file: got %q", cfg.ConfigFile)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "poll_interval: 250ms\nlog_dir: /from/file\n"
	if err := os.WriteFile(filepath.Join(dir, ".termtap.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TERMTAP_POLL_INTERVAL", "1s")
	t.Setenv("TERMTAP_LOG_DIR", "/from/env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollIntervalDuration != time.Second {
		t.Errorf("poll interval: got %v, want 1s (env wins)", cfg.PollIntervalDuration)
	}
	if cfg.LogDir != "/from/env" {
		t.Errorf("log_dir: got %q, want /from/env", cfg.LogDir)
	}
}

func TestLoad_OTELFromStandardEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://collector.example.com:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OTELEndpoint != "https://collector.example.com:4318" {
		t.Errorf("otel endpoint: got %q", cfg.OTELEndpoint)
	}
	if cfg.OTELHeaders != "x-api-key=secret" {
		t.Errorf("otel headers: got %q", cfg.OTELHeaders)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("TERMTAP_POLL_INTERVAL", "fast")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".termtap.yaml"), []byte("log_dir: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
