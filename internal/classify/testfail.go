package classify

import (
	"regexp"
	"strings"
)

// TestFailureRecognizer matches test-runner failure reports: pytest's
// "FAILED", assertion errors, and Go's "--- FAIL" / "FAIL:" markers.
//
// The window is each failing test line plus the assertion or diff detail
// immediately following it, capped so a run with hundreds of failures
// still fits the extraction budget.
type TestFailureRecognizer struct{}

var testFailureLine = regexp.MustCompile(`FAILED|AssertionError|--- FAIL|\bFAIL:`)

// detailFollowCap bounds how many detail lines are kept after each
// failing-test line.
const detailFollowCap = 5

func (r *TestFailureRecognizer) Kind() string { return "test_failure" }

func (r *TestFailureRecognizer) Find(lines []string) *Window {
	var ranges []lineRange
	for i, line := range lines {
		if !testFailureLine.MatchString(line) {
			continue
		}
		end := i + 1
		for end < len(lines) && end-i <= detailFollowCap && isFailureDetail(lines[end]) {
			end++
		}
		ranges = append(ranges, lineRange{start: i, end: end})
	}
	if len(ranges) == 0 {
		return nil
	}
	return &Window{Kind: r.Kind(), Lines: collect(lines, ranges)}
}

// isFailureDetail accepts the lines test runners print under a failure:
// indented assertion output, pytest's "E ..." lines, and unified-diff
// style +/- lines.
func isFailureDetail(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	if startsWithSpace(line) {
		return true
	}
	switch line[0] {
	case 'E', '+', '-', '>':
		return true
	}
	return strings.HasPrefix(line, "assert") || strings.HasPrefix(line, "Expected")
}
