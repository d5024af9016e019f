// Package classify locates the semantically important slice of a large
// command output. A fixed-priority cascade of recognizers is tried in
// order and the first match wins: failure signatures are more actionable
// than generic success text, so structured idioms (tracebacks, compiler
// errors, test reports) outrank the loose "error anywhere" match.
//
// Each recognizer is pure — lines in, window out — so they can be unit
// tested independently. No match is a legitimate negative result, not an
// error; the extraction triage falls back to first/last lines.
package classify


// Budget caps the number of lines any recognizer may return. Beyond this,
// a window stops being a context-economical extraction.
const Budget = 60

// Window is the extracted region for one recognized error idiom.
type Window struct {
	// Kind identifies the recognizer that matched, e.g. "python_traceback".
	Kind string
	// Lines is the extracted slice, deduplicated, original order preserved.
	Lines []string
}

// Recognizer matches one error idiom and extracts its window.
type Recognizer interface {
	// Kind returns the idiom identifier used in extraction method tags.
	Kind() string

	// Find examines the segment and returns the matched window, or nil if
	// this idiom is not present.
	Find(lines []string) *Window
}

// Classifier tries recognizers in priority order.
type Classifier struct {
	recognizers []Recognizer
}

// New creates a classifier with the default recognizer cascade:
// Python traceback, compiler/build error, test failure, generic error.
func New() *Classifier {
	return &Classifier{
		recognizers: []Recognizer{
			&TracebackRecognizer{},
			&CompileErrorRecognizer{},
			&TestFailureRecognizer{},
			&GenericErrorRecognizer{},
		},
	}
}

// Classify returns the first recognizer's window, or nil when no error
// idiom is present in the segment.
func (c *Classifier) Classify(lines []string) *Window {
	for _, r := range c.recognizers {
		if w := r.Find(lines); w != nil {
			return w
		}
	}
	return nil
}

// lineRange is a half-open [start, end) index range into the segment.
type lineRange struct {
	start, end int
}

// expand widens a range by before/after lines, clipped to [0, n).
func (r lineRange) expand(before, after, n int) lineRange {
	r.start -= before
	r.end += after
	if r.start < 0 {
		r.start = 0
	}
	if r.end > n {
		r.end = n
	}
	return r
}

// mergeRanges merges overlapping or adjacent ranges, preserving order.
// Input must be sorted by start, which all recognizers produce naturally.
func mergeRanges(ranges []lineRange) []lineRange {
	if len(ranges) == 0 {
		return nil
	}
	merged := []lineRange{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// collect materializes ranges into lines, deduplicating while preserving
// order, and trimming to the budget.
func collect(lines []string, ranges []lineRange) []string {
	seen := make(map[int]bool)
	var out []string
	for _, r := range mergeRanges(ranges) {
		for i := r.start; i < r.end; i++ {
			if seen[i] {
				continue
			}
			seen[i] = true
			out = append(out, lines[i])
			if len(out) >= Budget {
				return out
			}
		}
	}
	return out
}
