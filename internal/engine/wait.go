package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/termtap/termtap/internal/meta"
	"github.com/termtap/termtap/internal/model"
	"github.com/termtap/termtap/internal/mux"
)

// WaitOpts control one wait invocation.
type WaitOpts struct {
	// Target overrides the pane; empty means the session's active pane.
	Target string
	// Timeout bounds the polling loop. Reaching it never kills or alters
	// the command; it only stops this invocation from polling.
	Timeout time.Duration
	// RespectMetadata selects the task-type policy. When false, the
	// session is treated as oneshot unconditionally.
	RespectMetadata bool
}

// waitFunc is one task-type policy in the dispatch table.
type waitFunc func(ctx context.Context, session, target string, md model.Metadata, opts WaitOpts) (model.CaptureResult, error)

// Wait blocks (or deliberately does not) until the session's current
// command completes, according to the session's task type:
//
//	oneshot      poll until the shell prompt returns or the timeout expires
//	background   return immediately with current output; completion is not
//	watcher      a meaningful concept for indefinite processes
//	interactive  poll briefly, then hand off to the user
//
// A timeout is resumable: the marker is not regenerated, so calling Wait
// again observes the same command's segment and may then complete.
func (e *Engine) Wait(ctx context.Context, session string, opts WaitOpts) (model.CaptureResult, error) {
	ctx, span := tracer.Start(ctx, "wait")
	defer span.End()
	span.SetAttributes(attribute.String("session", session))

	exists, err := e.Mux.HasSession(ctx, session)
	if err != nil {
		return model.CaptureResult{}, err
	}
	if !exists {
		return model.CaptureResult{}, fmt.Errorf("%w: %q", ErrSessionNotFound, session)
	}
	target := opts.Target
	if target == "" {
		target = session
	}

	md := model.Metadata{TaskType: model.TaskOneshot}
	if opts.RespectMetadata {
		if rec, err := e.Meta.Get(ctx, session); err == nil {
			md = rec
			if md.TaskType == "" {
				md.TaskType = model.TaskOneshot
			}
		} else if !errors.Is(err, meta.ErrNotFound) {
			return model.CaptureResult{}, err
		}
	}

	policy, ok := e.waitPolicies[md.TaskType]
	if !ok {
		return model.CaptureResult{}, fmt.Errorf("no wait policy for task type %q", md.TaskType)
	}
	result, err := policy(ctx, session, target, md, opts)
	if err != nil {
		return model.CaptureResult{}, err
	}
	span.SetAttributes(attribute.String("wait.outcome", result.Status))
	return result, nil
}

// waitDetached serves background and watcher tasks: no polling, current
// output captured as-is. Blocking on an indefinite process would hang
// forever.
func (e *Engine) waitDetached(ctx context.Context, session, target string, md model.Metadata, _ WaitOpts) (model.CaptureResult, error) {
	result, err := e.Capture(ctx, session, CaptureOpts{Target: target})
	if err != nil {
		return model.CaptureResult{}, err
	}
	result.Status = model.StatusRunning
	result.TaskType = md.TaskType
	result.TimedOut = false
	result.Message = fmt.Sprintf("task type %q — not waiting for completion", md.TaskType)
	e.Metrics.RecordWait(ctx, "running", 0)
	return result, nil
}

// waitInteractive polls for a short bounded duration — deliberately
// partial, distinct from and typically shorter than the caller's timeout —
// then tells the user to attach.
func (e *Engine) waitInteractive(ctx context.Context, session, target string, md model.Metadata, opts WaitOpts) (model.CaptureResult, error) {
	bound := e.InteractiveWait
	if opts.Timeout > 0 && opts.Timeout < bound {
		bound = opts.Timeout
	}

	start := time.Now()
	outcome, err := e.poll(ctx, target, start.Add(bound))
	if err != nil {
		return model.CaptureResult{}, err
	}
	elapsed := roundSeconds(time.Since(start))

	switch outcome {
	case pollCompleted:
		return e.completedResult(ctx, session, target, md, opts, elapsed)
	case pollDead:
		return e.deadResult(ctx, session, elapsed), nil
	default:
		result, err := e.Capture(ctx, session, CaptureOpts{Target: target})
		if err != nil {
			return model.CaptureResult{}, err
		}
		result.Status = model.StatusRunning
		result.TaskType = md.TaskType
		result.ElapsedTime = elapsed
		result.Message = fmt.Sprintf("interactive session — attach with: tmux attach -t %s", session)
		e.Metrics.RecordWait(ctx, "running", elapsed)
		return result, nil
	}
}

// waitOneshot polls until the pane's foreground process returns to an
// idle shell prompt, the deadline passes, or the pane disappears.
func (e *Engine) waitOneshot(ctx context.Context, session, target string, md model.Metadata, opts WaitOpts) (model.CaptureResult, error) {
	start := time.Now()
	outcome, err := e.poll(ctx, target, start.Add(opts.Timeout))
	if err != nil {
		return model.CaptureResult{}, err
	}
	elapsed := roundSeconds(time.Since(start))

	switch outcome {
	case pollCompleted:
		return e.completedResult(ctx, session, target, md, opts, elapsed)
	case pollDead:
		return e.deadResult(ctx, session, elapsed), nil
	default: // deadline reached; the command keeps running untouched
		result, err := e.Capture(ctx, session, CaptureOpts{Target: target})
		if err != nil {
			return model.CaptureResult{}, err
		}
		result.Status = model.StatusTimeout
		result.TimedOut = true
		result.ElapsedTime = elapsed
		if opts.RespectMetadata {
			result.TaskType = md.TaskType
		}
		result.Message = fmt.Sprintf("command still running after %.0fs — call wait again to resume waiting on the same command", opts.Timeout.Seconds())
		e.Metrics.RecordWait(ctx, "timeout", elapsed)
		return result, nil
	}
}

type pollOutcome int

const (
	pollTimedOut pollOutcome = iota
	pollCompleted
	pollDead
)

// poll re-checks the completion predicate at the configured interval
// until it holds, the deadline passes, or the pane disappears. The check
// runs once immediately so an already-finished command returns without
// sleeping.
func (e *Engine) poll(ctx context.Context, target string, deadline time.Time) (pollOutcome, error) {
	for {
		idle, err := e.paneIdle(ctx, target)
		if err != nil {
			if errors.Is(err, mux.ErrSessionNotFound) {
				return pollDead, nil
			}
			return 0, err
		}
		if idle {
			return pollCompleted, nil
		}
		if !time.Now().Add(e.PollInterval).Before(deadline) {
			return pollTimedOut, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(e.PollInterval):
		}
	}
}

// completedResult triages the full segment and stamps the wait fields.
// TaskType is reported only when metadata was consulted.
func (e *Engine) completedResult(ctx context.Context, session, target string, md model.Metadata, opts WaitOpts, elapsed float64) (model.CaptureResult, error) {
	result, err := e.Capture(ctx, session, CaptureOpts{Target: target})
	if err != nil {
		return model.CaptureResult{}, err
	}
	result.Status = model.StatusCompleted
	if opts.RespectMetadata {
		result.TaskType = md.TaskType
	}
	result.ElapsedTime = elapsed
	result.TimedOut = false
	if result.Message == "" {
		result.Message = fmt.Sprintf("command completed in %.2fs", elapsed)
	}
	e.Metrics.RecordWait(ctx, "completed", elapsed)
	return result, nil
}

// deadResult reports a pane that vanished mid-poll. Not a timeout.
func (e *Engine) deadResult(ctx context.Context, session string, elapsed float64) model.CaptureResult {
	e.Metrics.RecordWait(ctx, "dead", elapsed)
	return model.CaptureResult{
		Status:      model.StatusError,
		SessionName: session,
		Output:      []string{},
		ElapsedTime: elapsed,
		Message:     fmt.Sprintf("session %q is no longer alive", session),
	}
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
