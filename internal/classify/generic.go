package classify

import "regexp"

// GenericErrorRecognizer is the last-resort idiom: a case-insensitive
// error/exception/fatal/panic word anywhere in the segment. The window is
// ±5 lines around each hit, with overlapping windows merged and the whole
// extraction capped at the budget.
//
// The word-boundary requirement keeps identifiers like "error_code" or
// "stderr" from triggering a match; it is a precision/recall trade-off
// tuned toward fewer false positives on benign log fields.
type GenericErrorRecognizer struct{}

var genericErrorWord = regexp.MustCompile(`(?i)\b(error|exception|fatal|panic)\b`)

// genericContext is the number of lines kept on each side of a hit.
const genericContext = 5

func (r *GenericErrorRecognizer) Kind() string { return "generic_error" }

func (r *GenericErrorRecognizer) Find(lines []string) *Window {
	var ranges []lineRange
	for i, line := range lines {
		if genericErrorWord.MatchString(line) {
			ranges = append(ranges, lineRange{start: i, end: i + 1}.expand(genericContext, genericContext, len(lines)))
		}
	}
	if len(ranges) == 0 {
		return nil
	}
	return &Window{Kind: r.Kind(), Lines: collect(lines, ranges)}
}
