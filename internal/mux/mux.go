// Package mux provides an abstraction over terminal multiplexers (tmux,
// zellij). It is pure transport: sessions are created and killed, keys are
// sent, pane content is captured, and pane output is piped to log files.
// Nothing in this package interprets what a command's output means.
package mux

import (
	"context"
	"errors"

	"github.com/termtap/termtap/internal/model"
)

// ErrSessionNotFound is returned when a session name does not resolve to a
// live multiplexer session.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoServer is returned when the multiplexer has no running server.
var ErrNoServer = errors.New("no multiplexer server running")

// Multiplexer abstracts the terminal multiplexer operations termtap needs.
// Implementations exist for tmux and (future) zellij.
type Multiplexer interface {
	// Name returns the multiplexer name (e.g., "tmux").
	Name() string

	// ListSessions returns all sessions.
	ListSessions(ctx context.Context) ([]model.SessionInfo, error)

	// HasSession reports whether a session with the given name exists.
	HasSession(ctx context.Context, name string) (bool, error)

	// NewSession creates a detached session with the given name.
	NewSession(ctx context.Context, name string) error

	// KillSession destroys a session and its panes.
	KillSession(ctx context.Context, name string) error

	// SendKeys types a command into the target pane, followed by Enter.
	// Target may be "session" or "session:window.pane".
	SendKeys(ctx context.Context, target, keys string) error

	// CapturePane returns the target pane's currently visible buffer as
	// lines. startLine/endLine select a history range when non-nil; the
	// zero range captures the visible screen.
	CapturePane(ctx context.Context, target string, startLine, endLine *int) ([]string, error)

	// PipePane starts (enable=true) or stops appending the target pane's
	// output to the given file. Enabling is idempotent.
	PipePane(ctx context.Context, target, logFile string, enable bool) error

	// CurrentCommand returns the name of the foreground process in the
	// target pane (e.g., "bash", "npm").
	CurrentCommand(ctx context.Context, target string) (string, error)
}
