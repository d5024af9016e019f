package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "termtap"

// Metrics holds all OTEL metric instruments for termtap.
// All instruments are safe for concurrent use and no-ops when no
// MeterProvider is registered.
type Metrics struct {
	// Captures counts segment captures, partitioned by extraction method.
	Captures metric.Int64Counter
	// Waits counts wait invocations, partitioned by outcome
	// (completed, timeout, running, dead).
	Waits metric.Int64Counter
	// WaitDuration records how long wait invocations blocked.
	WaitDuration metric.Float64Histogram
	// SegmentLines records captured segment sizes before triage.
	SegmentLines metric.Int64Histogram
}

// NewMetrics creates all metric instruments. Safe to call unconditionally.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Captures, err = meter.Int64Counter("captures.total",
		metric.WithDescription("Total segment captures partitioned by extraction method"))
	if err != nil {
		return nil, err
	}

	m.Waits, err = meter.Int64Counter("waits.total",
		metric.WithDescription("Total wait invocations partitioned by outcome"))
	if err != nil {
		return nil, err
	}

	m.WaitDuration, err = meter.Float64Histogram("wait.duration",
		metric.WithDescription("Wall-clock time spent polling per wait invocation"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.SegmentLines, err = meter.Int64Histogram("segment.lines",
		metric.WithDescription("Captured segment size in lines before extraction"),
		metric.WithUnit("{line}"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCapture records one capture with its extraction method and the
// full segment size.
func (m *Metrics) RecordCapture(ctx context.Context, method string, segmentLines int) {
	if m == nil {
		return
	}
	m.Captures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("extraction.method", method),
	))
	m.SegmentLines.Record(ctx, int64(segmentLines))
}

// RecordWait records one wait invocation with its outcome and duration.
func (m *Metrics) RecordWait(ctx context.Context, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Waits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("wait.outcome", outcome),
	))
	m.WaitDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("wait.outcome", outcome),
	))
}
