package engine

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/termtap/termtap/internal/extract"
	"github.com/termtap/termtap/internal/meta"
	"github.com/termtap/termtap/internal/model"
	"github.com/termtap/termtap/internal/mux"
	"github.com/termtap/termtap/internal/seglog"
)

// CaptureOpts control one capture invocation.
type CaptureOpts struct {
	// Target overrides the pane ("session:window.pane"); empty means the
	// session's active pane.
	Target string
	// ForceFull bypasses triage and returns every segment line.
	ForceFull bool
	// StartLine/EndLine select a literal pane history range. Setting
	// either bypasses the segment log and triage entirely.
	StartLine *int
	EndLine   *int
}

// Capture reads the output produced since the session's most recent
// marker and triages it. When no log or marker exists — or when a literal
// line range is requested — it degrades to a snapshot of the pane's
// visible buffer, tagged capture_pane so the caller can weight its trust
// accordingly. Re-capturing never consumes or deletes prior output.
func (e *Engine) Capture(ctx context.Context, session string, opts CaptureOpts) (model.CaptureResult, error) {
	ctx, span := tracer.Start(ctx, "capture")
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

	// Explicit line range: the caller asked for exactly these lines.
	if opts.StartLine != nil || opts.EndLine != nil {
		return e.capturePaneSnapshot(ctx, session, target, opts.StartLine, opts.EndLine)
	}

	md, err := e.Meta.Get(ctx, session)
	if err != nil && !errors.Is(err, meta.ErrNotFound) {
		return model.CaptureResult{}, err
	}
	if errors.Is(err, meta.ErrNotFound) || md.LastMarker == "" {
		return e.capturePaneSnapshot(ctx, session, target, nil, nil)
	}

	lines, err := e.Logs.ReadSegment(session, md.LastMarker)
	if err != nil {
		if errors.Is(err, seglog.ErrNoLogFile) || errors.Is(err, seglog.ErrMarkerNotFound) {
			return e.capturePaneSnapshot(ctx, session, target, nil, nil)
		}
		return model.CaptureResult{}, err
	}

	res := e.Triage.Extract(lines, extract.Options{ForceFull: opts.ForceFull})
	e.Metrics.RecordCapture(ctx, res.Method, res.LineCount)

	return model.CaptureResult{
		Status:           model.StatusSuccess,
		SessionName:      session,
		MarkerID:         md.LastMarker,
		LogFile:          e.Logs.LogPath(session),
		Output:           res.Output,
		LineCount:        res.LineCount,
		ExtractionMethod: res.Method,
		Truncated:        res.Truncated,
		ForcedFull:       res.ForcedFull,
		Message:          res.Message,
	}, nil
}

// capturePaneSnapshot is the best-effort fallback: the pane's visible
// buffer (or a literal history range), no triage applied.
func (e *Engine) capturePaneSnapshot(ctx context.Context, session, target string, start, end *int) (model.CaptureResult, error) {
	lines, err := e.Mux.CapturePane(ctx, target, start, end)
	if err != nil {
		if errors.Is(err, mux.ErrSessionNotFound) {
			return model.CaptureResult{}, fmt.Errorf("%w: %q", ErrSessionGone, session)
		}
		return model.CaptureResult{}, err
	}
	for i := range lines {
		lines[i] = seglog.StripANSI(lines[i])
	}
	e.Metrics.RecordCapture(ctx, model.MethodCapturePane, len(lines))

	return model.CaptureResult{
		Status:           model.StatusSuccess,
		SessionName:      session,
		Output:           lines,
		LineCount:        len(lines),
		ExtractionMethod: model.MethodCapturePane,
		Truncated:        false,
	}, nil
}
