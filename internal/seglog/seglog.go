// Package seglog manages the per-session append-only log files and the
// marker lines that isolate one command's output within them.
//
// A marker is a unique random token written to the log immediately before
// a command is sent to the pane. Everything the pane appends after the
// marker is that command's segment. The log is never truncated or
// rewritten; re-reading a segment never consumes it.
package seglog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// markerPrefix demarcates the start of one command's output. The token that
// follows is collision-resistant, so marker lines are distinguishable from
// command output with overwhelming probability.
const markerPrefix = "===TERMTAP-CMD-START==="

var (
	// ErrNoLogFile means the session has no log file yet.
	ErrNoLogFile = errors.New("log file does not exist")
	// ErrMarkerNotFound means the log exists but the marker line is absent.
	ErrMarkerNotFound = errors.New("marker not found in log")
)

var ansiEscape = regexp.MustCompile(`\x1B(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

// Store locates and writes session log files under a single directory.
type Store struct {
	dir string
}

// NewStore creates a segment store rooted at dir, creating it if needed.
// On permission failure it falls back to a world-writable temp directory
// rather than failing the invocation.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if !errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		dir = filepath.Join(os.TempDir(), "termtap-logs")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create fallback log dir: %w", err)
		}
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory holding the session logs.
func (s *Store) Dir() string {
	return s.dir
}

// LogPath returns the log file path for a session name.
func (s *Store) LogPath(session string) string {
	safe := strings.NewReplacer(" ", "_", "/", "_").Replace(session)
	return filepath.Join(s.dir, safe+".log")
}

// BeginSegment generates a fresh marker token and appends its marker line
// to the session's log. It is safe to call while a previous command is
// still producing output: the new marker simply becomes the most recent.
// The write is flushed before returning, so no output from the upcoming
// command can precede its own marker in the log.
func (s *Store) BeginSegment(session, command string) (string, error) {
	markerID := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	line := fmt.Sprintf("\n%s %s %d %s\n", markerPrefix, markerID, time.Now().Unix(), command)

	path := s.LogPath(session)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open log %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return "", fmt.Errorf("write marker: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("sync log: %w", err)
	}
	return markerID, nil
}

// ReadSegment returns every line appended strictly after the last marker
// line carrying markerID, with ANSI escapes stripped. The log is only
// read, never mutated.
func (s *Store) ReadSegment(session, markerID string) ([]string, error) {
	path := s.LogPath(session)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoLogFile
		}
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	defer f.Close()

	marker := markerPrefix + " " + markerID
	var segment []string
	found := false

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.Contains(line, marker) {
			// Last occurrence wins: reset and start a fresh segment.
			found = true
			segment = segment[:0]
			continue
		}
		if found {
			segment = append(segment, StripANSI(strings.TrimRight(line, "\r")))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan log %s: %w", path, err)
	}
	if !found {
		return nil, ErrMarkerNotFound
	}
	return segment, nil
}

// Remove deletes a session's log file. Missing files are not an error.
func (s *Store) Remove(session string) error {
	err := os.Remove(s.LogPath(session))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove log: %w", err)
	}
	return nil
}

// StripANSI removes ANSI escape sequences from a line. Pane output piped
// through tmux keeps color and cursor codes; segments are returned clean.
func StripANSI(line string) string {
	return ansiEscape.ReplaceAllString(line, "")
}
