package mux

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/termtap/termtap/internal/model"
)

// Tmux implements the Multiplexer interface for tmux.
type Tmux struct{}

// NewTmux creates a new tmux multiplexer.
func NewTmux() *Tmux {
	return &Tmux{}
}

// Name returns "tmux".
func (t *Tmux) Name() string {
	return "tmux"
}

// ListSessions returns all tmux sessions with window counts and creation time.
func (t *Tmux) ListSessions(ctx context.Context) ([]model.SessionInfo, error) {
	format := "#{session_name}\t#{session_windows}\t#{session_created}\t#{session_attached}"
	out, err := t.run(ctx, "list-sessions", "-F", format)
	if err != nil {
		if isNoServer(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("tmux list-sessions: %w", err)
	}

	var sessions []model.SessionInfo
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 4)
		if len(parts) != 4 {
			continue
		}
		windows, _ := strconv.Atoi(parts[1])
		created, _ := strconv.ParseInt(parts[2], 10, 64)
		attached, _ := strconv.Atoi(parts[3])
		info := model.SessionInfo{
			Name:     parts[0],
			Windows:  windows,
			Attached: attached > 0,
		}
		if created > 0 {
			info.Created = time.Unix(created, 0).UTC()
		}
		sessions = append(sessions, info)
	}
	return sessions, nil
}

// HasSession reports whether the named session exists.
func (t *Tmux) HasSession(ctx context.Context, name string) (bool, error) {
	// "=" prefix forces an exact match instead of tmux's prefix matching.
	_, err := t.run(ctx, "has-session", "-t", "="+name)
	if err == nil {
		return true, nil
	}
	if isNoServer(err) || isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("tmux has-session: %w", err)
}

// NewSession creates a detached session.
func (t *Tmux) NewSession(ctx context.Context, name string) error {
	if _, err := t.run(ctx, "new-session", "-d", "-s", name); err != nil {
		return fmt.Errorf("tmux new-session %q: %w", name, err)
	}
	return nil
}

// KillSession destroys a session.
func (t *Tmux) KillSession(ctx context.Context, name string) error {
	if _, err := t.run(ctx, "kill-session", "-t", "="+name); err != nil {
		if isNotFound(err) || isNoServer(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("tmux kill-session %q: %w", name, err)
	}
	return nil
}

// SendKeys types a command into the target pane and presses Enter.
func (t *Tmux) SendKeys(ctx context.Context, target, keys string) error {
	// -l sends the keys literally so command text is never interpreted as
	// tmux key names; Enter is sent as a separate keypress.
	if _, err := t.run(ctx, "send-keys", "-t", target, "-l", keys); err != nil {
		if isNotFound(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("tmux send-keys -t %s: %w", target, err)
	}
	if _, err := t.run(ctx, "send-keys", "-t", target, "Enter"); err != nil {
		return fmt.Errorf("tmux send-keys Enter -t %s: %w", target, err)
	}
	return nil
}

// CapturePane captures the target pane's buffer as lines.
// Uses -p (stdout) and -J (joined, unwraps lines). A history range is
// selected with -S/-E when startLine/endLine are provided.
func (t *Tmux) CapturePane(ctx context.Context, target string, startLine, endLine *int) ([]string, error) {
	args := []string{"capture-pane", "-t", target, "-p", "-J"}
	if startLine != nil {
		args = append(args, "-S", strconv.Itoa(*startLine))
	}
	if endLine != nil {
		args = append(args, "-E", strconv.Itoa(*endLine))
	}
	out, err := t.run(ctx, args...)
	if err != nil {
		if isNotFound(err) || isNoServer(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("tmux capture-pane -t %s: %w", target, err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	return lines, nil
}

// PipePane toggles output piping for the target pane. Enabling uses -o so
// repeated calls do not flip the pipe off, and appends via cat so prior log
// content is never rewritten.
func (t *Tmux) PipePane(ctx context.Context, target, logFile string, enable bool) error {
	args := []string{"pipe-pane", "-t", target}
	if enable {
		args = append(args, "-o", fmt.Sprintf("cat >> %s", shellQuote(logFile)))
	}
	if _, err := t.run(ctx, args...); err != nil {
		if isNotFound(err) || isNoServer(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("tmux pipe-pane -t %s: %w", target, err)
	}
	return nil
}

// CurrentCommand returns the foreground process name of the target pane.
func (t *Tmux) CurrentCommand(ctx context.Context, target string) (string, error) {
	out, err := t.run(ctx, "display-message", "-p", "-t", target, "#{pane_current_command}")
	if err != nil {
		if isNotFound(err) || isNoServer(err) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("tmux display-message -t %s: %w", target, err)
	}
	return strings.TrimSpace(out), nil
}

// run executes a tmux command and returns its stdout.
func (t *Tmux) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "tmux", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%w: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}

// isNotFound matches tmux's stderr for a missing session or pane.
func isNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "can't find session") ||
		strings.Contains(msg, "can't find pane") ||
		strings.Contains(msg, "can't find window") ||
		strings.Contains(msg, "session not found")
}

// isNoServer matches tmux's stderr when no server is running.
func isNoServer(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no server running") ||
		strings.Contains(msg, "error connecting to")
}

// shellQuote wraps a path in single quotes for the pipe-pane shell command.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
