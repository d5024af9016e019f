package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/termtap/termtap/internal/config"
	"github.com/termtap/termtap/internal/engine"
	"github.com/termtap/termtap/internal/meta"
	"github.com/termtap/termtap/internal/mux"
	telem "github.com/termtap/termtap/internal/otel"
	"github.com/termtap/termtap/internal/seglog"
)

var (
	// Global flags.
	flagMux    string
	flagLogDir string
	flagDBPath string
)

var rootCmd = &cobra.Command{
	Use:   "termtap",
	Short: "Drive long-running terminal sessions from a stateless CLI",
	Long: `termtap lets an automated agent run commands in persistent tmux sessions
without blocking forever and without flooding its context with raw output.

Each command writes a unique marker to the session's log before executing,
so capture can isolate exactly one command's output. Large output is triaged:
error idioms (tracebacks, compiler errors, test failures) are extracted with
context, everything else falls back to first/last lines. Waiting is governed
by the session's task type (oneshot, background, watcher, interactive).

The CLI itself is stateless; all state lives in the session log files and a
small metadata database, so any invocation can resume a previous one's wait.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Failures are emitted as JSON error
// records on stdout so programmatic callers always get a parseable
// response, with enough state to decide whether to retry or wait again.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		emitJSON(map[string]any{
			"status":  "error",
			"message": err.Error(),
		})
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagMux, "mux", envOrDefault("TERMTAP_MUX", ""), "terminal multiplexer: tmux (default: auto-detect)")
	rootCmd.PersistentFlags().StringVar(&flagLogDir, "log-dir", "", "directory for session logs (default: auto-detect)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "path to the session metadata database")
}

// buildEngine assembles the engine and its collaborators from config and
// flags. The returned cleanup closes the metadata store and flushes
// telemetry; callers defer it.
func buildEngine(ctx context.Context) (*engine.Engine, *config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	m, err := getMultiplexer(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	logDir := flagLogDir
	if logDir == "" {
		logDir = cfg.LogDir
	}
	logs, err := seglog.NewStore(seglog.ResolveDir(logDir))
	if err != nil {
		return nil, nil, nil, err
	}

	dbPath := flagDBPath
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	if dbPath == "" {
		dbPath = meta.DefaultPath(logs.Dir())
	}
	store, err := meta.Open(ctx, dbPath)
	if err != nil {
		return nil, nil, nil, err
	}

	telem.Version = Version
	tel, err := telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: otel init failed: %v\n", err)
	}

	eng := engine.New(m, logs, store, metricsOf(tel), cfg.PollIntervalDuration, cfg.InteractiveWaitDuration)
	cleanup := func() {
		if tel != nil {
			tel.Shutdown(ctx)
		}
		_ = store.Close()
	}
	return eng, cfg, cleanup, nil
}

func metricsOf(tel *telem.Telemetry) *telem.Metrics {
	if tel == nil {
		return nil
	}
	return tel.Metrics
}

// getMultiplexer returns the configured or auto-detected multiplexer.
func getMultiplexer(cfg *config.Config) (mux.Multiplexer, error) {
	name := flagMux
	if name == "" {
		name = cfg.Mux
	}
	if name != "" {
		return mux.FromName(name)
	}
	return mux.Detect()
}

// emitJSON prints an indented JSON record on stdout.
func emitJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "warning: encode response: %v\n", err)
	}
}

// paneTarget builds a tmux target from session plus optional window/pane
// overrides. A bare session name resolves to its active pane.
func paneTarget(session, window string, pane int) string {
	if window == "" {
		return session
	}
	return fmt.Sprintf("%s:%s.%d", session, window, pane)
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
