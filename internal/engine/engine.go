// Package engine composes the multiplexer, the segment log, the metadata
// store, and the extraction triage into the operations the CLI exposes:
// create, exec, capture, wait, kill, list.
//
// The engine holds no state of its own between invocations. Everything
// that must survive a process exit — the marker of the command in flight,
// the session's task type, the output itself — lives in the log file and
// the metadata record, so any later invocation can pick up where a
// previous one stopped.
//
// One logical command in flight per session at a time is assumed; two
// concurrent exec calls against the same session are not guaranteed to
// interleave safely. This is a documented constraint, not a race to
// engineer around.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/termtap/termtap/internal/extract"
	"github.com/termtap/termtap/internal/meta"
	"github.com/termtap/termtap/internal/model"
	"github.com/termtap/termtap/internal/mux"
	ttotel "github.com/termtap/termtap/internal/otel"
	"github.com/termtap/termtap/internal/seglog"
)

var tracer = otel.Tracer("termtap")

// ErrSessionNotFound is surfaced when an operation names a session the
// multiplexer does not know.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionGone marks a pane that disappeared mid-operation: a terminal
// condition distinct from timeout, never conflated with "still running".
var ErrSessionGone = errors.New("session no longer alive")

// Engine wires the collaborators together.
type Engine struct {
	Mux     mux.Multiplexer
	Logs    *seglog.Store
	Meta    *meta.Store
	Triage  *extract.Triage
	Metrics *ttotel.Metrics

	// PollInterval is the sleep between completion checks.
	PollInterval time.Duration
	// InteractiveWait bounds the deliberately partial wait applied to
	// interactive sessions, independent of the caller's timeout.
	InteractiveWait time.Duration

	waitPolicies map[model.TaskType]waitFunc
}

// New creates an engine. Metrics may be nil.
func New(m mux.Multiplexer, logs *seglog.Store, metaStore *meta.Store, metrics *ttotel.Metrics, pollInterval, interactiveWait time.Duration) *Engine {
	e := &Engine{
		Mux:             m,
		Logs:            logs,
		Meta:            metaStore,
		Triage:          extract.New(),
		Metrics:         metrics,
		PollInterval:    pollInterval,
		InteractiveWait: interactiveWait,
	}
	// Closed four-variant dispatch table; adding a task type without a
	// policy entry fails loudly in tests rather than silently blocking.
	e.waitPolicies = map[model.TaskType]waitFunc{
		model.TaskOneshot:     e.waitOneshot,
		model.TaskBackground:  e.waitDetached,
		model.TaskWatcher:     e.waitDetached,
		model.TaskInteractive: e.waitInteractive,
	}
	return e
}

// Create attaches to an existing session or creates a new detached one.
// Empty names get a generated "agent-" name. Metadata is written only on
// creation and only when a task type or description was supplied.
func (e *Engine) Create(ctx context.Context, name string, taskType model.TaskType, description string) (model.CreateResult, error) {
	action := "created"
	if name != "" {
		exists, err := e.Mux.HasSession(ctx, name)
		if err != nil {
			return model.CreateResult{}, err
		}
		if exists {
			action = "attached"
		}
	} else {
		name = "agent-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	}

	if action == "created" {
		if err := e.Mux.NewSession(ctx, name); err != nil {
			return model.CreateResult{}, err
		}
		if taskType != "" || description != "" {
			if taskType == "" {
				taskType = model.TaskOneshot
			}
			if err := e.Meta.Set(ctx, name, taskType, description); err != nil {
				return model.CreateResult{}, err
			}
		}
	}

	return model.CreateResult{
		Status:      model.StatusSuccess,
		Action:      action,
		SessionName: name,
		TaskType:    taskType,
		Description: description,
		Message:     fmt.Sprintf("%s session %q (attach with: tmux attach -t %s)", action, name, name),
	}, nil
}

// Execute sends a command to the session's pane behind a fresh marker.
// The marker is written and synced to the log before the keys are sent,
// so no output from the command can precede its own marker.
func (e *Engine) Execute(ctx context.Context, session, target, command string) (model.ExecResult, error) {
	ctx, span := tracer.Start(ctx, "execute")
	defer span.End()

	exists, err := e.Mux.HasSession(ctx, session)
	if err != nil {
		return model.ExecResult{}, err
	}
	if !exists {
		return model.ExecResult{}, fmt.Errorf("%w: %q", ErrSessionNotFound, session)
	}
	if target == "" {
		target = session
	}

	logPath := e.Logs.LogPath(session)
	if err := e.Mux.PipePane(ctx, target, logPath, true); err != nil {
		return model.ExecResult{}, fmt.Errorf("enable pane logging: %w", err)
	}

	markerID, err := e.Logs.BeginSegment(session, command)
	if err != nil {
		return model.ExecResult{}, err
	}
	if err := e.Meta.SetLastMarker(ctx, session, markerID, logPath); err != nil {
		return model.ExecResult{}, err
	}

	if err := e.Mux.SendKeys(ctx, target, command); err != nil {
		if errors.Is(err, mux.ErrSessionNotFound) {
			return model.ExecResult{}, fmt.Errorf("%w: %q", ErrSessionNotFound, session)
		}
		return model.ExecResult{}, err
	}

	span.SetAttributes(attribute.String("session", session))
	return model.ExecResult{
		Status:      model.StatusSuccess,
		SessionName: session,
		MarkerID:    markerID,
		LogFile:     logPath,
		Message:     "command sent",
	}, nil
}

// Kill tears a session down: pane logging off, metadata removed, log file
// removed unless kept, session destroyed.
func (e *Engine) Kill(ctx context.Context, session string, keepLog bool) (model.KillResult, error) {
	exists, err := e.Mux.HasSession(ctx, session)
	if err != nil {
		return model.KillResult{}, err
	}
	if !exists {
		return model.KillResult{}, fmt.Errorf("%w: %q", ErrSessionNotFound, session)
	}

	// Best effort: the pipe dies with the session anyway.
	_ = e.Mux.PipePane(ctx, session, "", false)

	removed := false
	if !keepLog {
		if err := e.Logs.Remove(session); err == nil {
			removed = true
		}
	}
	if err := e.Meta.Delete(ctx, session); err != nil {
		return model.KillResult{}, err
	}
	if err := e.Mux.KillSession(ctx, session); err != nil && !errors.Is(err, mux.ErrSessionNotFound) {
		return model.KillResult{}, err
	}

	return model.KillResult{
		Status:      model.StatusSuccess,
		SessionName: session,
		LogRemoved:  removed,
		Message:     fmt.Sprintf("session %q killed", session),
	}, nil
}

// List returns all live sessions joined with their metadata records.
func (e *Engine) List(ctx context.Context) ([]model.SessionInfo, error) {
	sessions, err := e.Mux.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	records, err := e.Meta.List(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]model.Metadata, len(records))
	for _, r := range records {
		byName[r.SessionName] = r
	}
	for i := range sessions {
		if md, ok := byName[sessions[i].Name]; ok {
			sessions[i].TaskType = md.TaskType
			sessions[i].Description = md.Description
		}
	}
	return sessions, nil
}
