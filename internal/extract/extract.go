// Package extract decides how much of a command's output is worth
// returning. Small segments pass through untouched; large ones are reduced
// either to their error window (when the classifier finds one) or to their
// first and last lines. The trade is recall for context economy: whenever
// something actionable exists it surfaces regardless of where it sits,
// while the first/last fallback covers the common "build started … build
// finished" shape whose meaningful confirmation is at either edge.
package extract

import (
	"fmt"

	"github.com/termtap/termtap/internal/classify"
	"github.com/termtap/termtap/internal/model"
)

// FullThreshold is the segment size at or below which output is returned
// in full; small output costs little context and needs no heuristics.
const FullThreshold = 20

// EdgeLines is the number of lines taken from each end in the first/last
// fallback.
const EdgeLines = 10

// Options control a single extraction.
type Options struct {
	// ForceFull bypasses all triage and returns every line.
	ForceFull bool
}

// Result is the uniform outcome of a triage pass.
type Result struct {
	Output     []string
	LineCount  int
	Method     string
	Truncated  bool
	ForcedFull bool
	Message    string
}

// Triage applies the extraction decision procedure to a segment.
type Triage struct {
	classifier *classify.Classifier
}

// New creates a triage backed by the default classifier cascade.
func New() *Triage {
	return &Triage{classifier: classify.New()}
}

// Extract reduces a segment per the triage rules. The invariant
// Truncated == (len(Output) < LineCount) holds on every path.
func (t *Triage) Extract(lines []string, opts Options) Result {
	total := len(lines)

	if opts.ForceFull {
		return Result{
			Output:     lines,
			LineCount:  total,
			Method:     model.MethodFull,
			Truncated:  false,
			ForcedFull: true,
			Message:    fmt.Sprintf("full output forced (%d lines)", total),
		}
	}

	if total <= FullThreshold {
		return Result{
			Output:    lines,
			LineCount: total,
			Method:    model.MethodFull,
			Truncated: false,
		}
	}

	if w := t.classifier.Classify(lines); w != nil {
		return Result{
			Output:    w.Lines,
			LineCount: total,
			Method:    model.MethodErrorPrefix + w.Kind,
			Truncated: len(w.Lines) < total,
			Message:   fmt.Sprintf("output has %d lines, showing %d relevant lines", total, len(w.Lines)),
		}
	}

	// No error idiom anywhere: keep the edges, drop the middle.
	output := make([]string, 0, 2*EdgeLines)
	output = append(output, lines[:EdgeLines]...)
	output = append(output, lines[total-EdgeLines:]...)
	return Result{
		Output:    output,
		LineCount: total,
		Method:    model.MethodFirstLast,
		Truncated: true,
		Message:   fmt.Sprintf("output has %d lines, showing first and last %d", total, EdgeLines),
	}
}
