package classify

import (
	"regexp"
	"strings"
)

// TracebackRecognizer matches the Python traceback idiom: the
// "Traceback (most recent call last):" header, a stack of
// `File "...", line N` frames, and a trailing exception type/message line.
//
// The window is the full traceback block plus up to 5 lines of leading
// context, and always includes the final exception line — that line names
// the actual failure and dropping it would make the extraction useless.
type TracebackRecognizer struct{}

const tracebackHeader = "Traceback (most recent call last)"

var frameLine = regexp.MustCompile(`^\s+File "[^"]*", line \d+`)

func (r *TracebackRecognizer) Kind() string { return "python_traceback" }

func (r *TracebackRecognizer) Find(lines []string) *Window {
	// Use the last traceback in the segment: with chained or repeated
	// failures, the final one is what the command actually died on.
	header := -1
	for i, line := range lines {
		if strings.Contains(line, tracebackHeader) {
			header = i
		}
	}
	if header < 0 {
		return nil
	}

	// The block runs through the indented frames and source echoes until
	// the first column-0 line, which is the exception line itself.
	end := header + 1
	exception := -1
	for end < len(lines) {
		line := lines[end]
		if strings.TrimSpace(line) == "" || frameLine.MatchString(line) || startsWithSpace(line) {
			end++
			continue
		}
		exception = end
		break
	}
	if exception < 0 {
		// Truncated traceback with no exception line; still worth showing.
		exception = end - 1
	}

	// Include the exception line plus any indented continuation of a
	// multi-line message.
	end = exception + 1
	for end < len(lines) && end-exception <= 3 && startsWithSpace(lines[end]) && strings.TrimSpace(lines[end]) != "" {
		end++
	}

	block := lineRange{start: header, end: end}.expand(5, 0, len(lines))
	if end-block.start <= Budget {
		return &Window{Kind: r.Kind(), Lines: collect(lines, []lineRange{block})}
	}

	// Deep frame stacks overflow the budget. The exception line and its
	// continuation must survive, so reserve the tail first and spend the
	// remaining budget on the top of the stack, dropping middle frames.
	tail := lineRange{start: exception, end: end}
	headEnd := block.start + Budget - (tail.end - tail.start)
	if headEnd < block.start {
		headEnd = block.start
	}
	head := lineRange{start: block.start, end: headEnd}
	return &Window{Kind: r.Kind(), Lines: collect(lines, []lineRange{head, tail})}
}

func startsWithSpace(line string) bool {
	return len(line) > 0 && (line[0] == ' ' || line[0] == '\t')
}
