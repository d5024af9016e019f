// Package model defines the shared types of the termtap CLI: task types,
// capture results, and session descriptions. These map directly to the
// JSON records printed on stdout.
package model

import (
	"fmt"
	"time"
)

// TaskType governs the wait/poll policy for a session. It is a closed
// four-value enumeration; anything else is a validation error.
type TaskType string

const (
	// TaskOneshot models a command that runs to completion. Wait polls
	// until the shell prompt returns or the timeout expires.
	TaskOneshot TaskType = "oneshot"
	// TaskBackground models an indefinite process (server, daemon).
	// Wait never blocks on it.
	TaskBackground TaskType = "background"
	// TaskWatcher models a file watcher or similar restart loop.
	// Treated like background for waiting purposes.
	TaskWatcher TaskType = "watcher"
	// TaskInteractive models a REPL or TUI the user should attach to.
	// Wait polls briefly, then hands off.
	TaskInteractive TaskType = "interactive"
)

// TaskTypes lists every valid task type, in the order shown to users.
var TaskTypes = []TaskType{TaskInteractive, TaskBackground, TaskWatcher, TaskOneshot}

// ParseTaskType validates a task type string. The empty string is not a
// valid task type; callers that want a default apply TaskOneshot themselves.
func ParseTaskType(s string) (TaskType, error) {
	switch TaskType(s) {
	case TaskOneshot, TaskBackground, TaskWatcher, TaskInteractive:
		return TaskType(s), nil
	}
	return "", fmt.Errorf("invalid task type %q (must be one of: interactive, background, watcher, oneshot)", s)
}

// Statuses reported in CaptureResult.Status.
const (
	StatusSuccess   = "success"
	StatusCompleted = "completed"
	StatusTimeout   = "timeout"
	StatusRunning   = "running"
	StatusError     = "error"
)

// Extraction method tags. They tell the caller how Output was derived so
// it can weight its trust accordingly.
const (
	MethodFull        = "full"
	MethodFirstLast   = "first_last"
	MethodCapturePane = "capture_pane"

	// error extraction methods are "error_extraction_" + classifier kind
	MethodErrorPrefix = "error_extraction_"
)

// CaptureResult is the externally visible outcome of reading a session's
// output, shared by the capture and wait commands.
type CaptureResult struct {
	Status      string `json:"status"`
	SessionName string `json:"session_name,omitempty"`
	MarkerID    string `json:"marker_id,omitempty"`
	LogFile     string `json:"log_file,omitempty"`

	// Output is the (possibly reduced) ordered sequence of text lines.
	Output []string `json:"output"`
	// LineCount is the total number of lines available since the marker,
	// not just those returned. Always >= len(Output).
	LineCount int `json:"line_count"`
	// ExtractionMethod identifies how Output was derived.
	ExtractionMethod string `json:"extraction_method"`
	// Truncated is true exactly when len(Output) < LineCount.
	Truncated bool `json:"truncated"`
	// ForcedFull marks that full output was explicitly requested despite size.
	ForcedFull bool `json:"forced_full,omitempty"`

	Message string `json:"message,omitempty"`

	// Wait-only fields.
	ElapsedTime float64  `json:"elapsed_time,omitempty"`
	TimedOut    bool     `json:"timed_out,omitempty"`
	TaskType    TaskType `json:"task_type,omitempty"`
}

// CreateResult reports the outcome of a create/attach operation.
type CreateResult struct {
	Status      string   `json:"status"`
	Action      string   `json:"action"` // "created" or "attached"
	SessionName string   `json:"session_name"`
	TaskType    TaskType `json:"task_type,omitempty"`
	Description string   `json:"description,omitempty"`
	Message     string   `json:"message,omitempty"`
}

// ExecResult reports a dispatched command and the marker that isolates
// its output in the session log.
type ExecResult struct {
	Status      string `json:"status"`
	SessionName string `json:"session_name"`
	MarkerID    string `json:"marker_id"`
	LogFile     string `json:"log_file"`
	Message     string `json:"message,omitempty"`
}

// KillResult reports a session teardown.
type KillResult struct {
	Status      string `json:"status"`
	SessionName string `json:"session_name"`
	LogRemoved  bool   `json:"log_removed"`
	Message     string `json:"message,omitempty"`
}

// SessionInfo describes one session for list/watch output.
type SessionInfo struct {
	Name        string    `json:"name"`
	Windows     int       `json:"windows"`
	Created     time.Time `json:"created,omitempty"`
	Attached    bool      `json:"attached"`
	TaskType    TaskType  `json:"task_type,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Metadata is the per-session record read by the wait engine.
type Metadata struct {
	SessionName string    `json:"session_name"`
	TaskType    TaskType  `json:"task_type"`
	Description string    `json:"description,omitempty"`
	LastMarker  string    `json:"last_marker,omitempty"`
	LogPath     string    `json:"log_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
