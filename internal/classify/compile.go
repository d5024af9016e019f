package classify

import "regexp"

// CompileErrorRecognizer matches compiler/linker/build-tool error lines:
// gcc/clang/rustc style "path:line: error: ...", bare "Error" diagnostics,
// and make's non-zero exit marker "*** Error N".
//
// The window is every contiguous block of matching lines plus 3 lines of
// context before and after each block — compilers print the offending
// source and caret hints adjacent to the diagnostic.
type CompileErrorRecognizer struct{}

var compileErrorLine = regexp.MustCompile(`error:|\bError\b|\*\*\* Error \d+`)

func (r *CompileErrorRecognizer) Kind() string { return "compilation_error" }

func (r *CompileErrorRecognizer) Find(lines []string) *Window {
	var ranges []lineRange
	i := 0
	for i < len(lines) {
		if !compileErrorLine.MatchString(lines[i]) {
			i++
			continue
		}
		block := lineRange{start: i, end: i + 1}
		for block.end < len(lines) && compileErrorLine.MatchString(lines[block.end]) {
			block.end++
		}
		ranges = append(ranges, block.expand(3, 3, len(lines)))
		i = block.end
	}
	if len(ranges) == 0 {
		return nil
	}
	return &Window{Kind: r.Kind(), Lines: collect(lines, ranges)}
}
